package pipeline

import "context"

// DefaultName is the registry name resolved for any stage that has not been
// explicitly activated.
const DefaultName = "default"

// Config names the active function for each preprocessing stage, in pipeline
// order: standardize, then tokenize, then normalize.
type Config struct {
	Standardizer string
	Tokenizer    string
	Normalizer   string
}

// Default returns the configuration with every stage set to DefaultName.
func Default() Config {
	return Config{
		Standardizer: DefaultName,
		Tokenizer:    DefaultName,
		Normalizer:   DefaultName,
	}
}

// filled replaces empty stage names with DefaultName.
func (c Config) filled() Config {
	if c.Standardizer == "" {
		c.Standardizer = DefaultName
	}
	if c.Tokenizer == "" {
		c.Tokenizer = DefaultName
	}
	if c.Normalizer == "" {
		c.Normalizer = DefaultName
	}
	return c
}

// TokenizerKey is the cache key prefix for stage-2 derivations: a tokenized
// form depends on the standardizer and tokenizer but never the normalizer.
type TokenizerKey struct {
	Standardizer string
	Tokenizer    string
}

// StandardizerKey returns the cache key for stage-1 derivations.
func (c Config) StandardizerKey() string {
	return c.Standardizer
}

// TokenizerKey returns the cache key for stage-2 derivations.
func (c Config) TokenizerKey() TokenizerKey {
	return TokenizerKey{Standardizer: c.Standardizer, Tokenizer: c.Tokenizer}
}

type ctxKey struct{}

// With returns a context carrying cfg as the active pipeline configuration.
// Empty stage names fall back to DefaultName. The previous configuration is
// untouched: callers that keep the parent context keep the parent
// configuration, so activation is scoped and exception-safe by construction.
func With(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg.filled())
}

// Active returns the pipeline configuration carried by ctx, or Default when
// none has been activated.
func Active(ctx context.Context) Config {
	if cfg, ok := ctx.Value(ctxKey{}).(Config); ok {
		return cfg
	}
	return Default()
}
