package textmodel

import (
	"context"
	"errors"
	"strings"
	"sync"

	"speechscore/internal/pipeline"
)

// ErrNoRegistry is returned when a derived form is requested on a text (or
// one of its tokens) that was never attached to a pipeline registry. It is a
// different failure from an unknown pipeline name (pipeline.UnknownNameError).
var ErrNoRegistry = errors.New("no pipeline registry reachable: text is not bound to one")

// Kind tags what role a text plays in an example.
type Kind string

const (
	KindRef     Kind = "ref"
	KindHyp     Kind = "hyp"
	KindKeyword Kind = "keyword"
)

// Text is a raw string with lazily derived, configuration-keyed forms: the
// standardized string (stage 1) and the token list (stage 2). Each derived
// form is computed at most once per cache key; first writes are serialized
// by the text's mutex.
type Text struct {
	raw  string
	kind Kind
	reg  *pipeline.Registry

	mu           sync.Mutex
	standardized map[string]string
	tokens       map[pipeline.TokenizerKey]*TokenList
}

// NewText returns an unbound text. Derived forms are unavailable until Bind.
func NewText(raw string, kind Kind) *Text {
	return &Text{
		raw:          raw,
		kind:         kind,
		standardized: map[string]string{},
		tokens:       map[pipeline.TokenizerKey]*TokenList{},
	}
}

func (t *Text) Raw() string { return t.raw }

func (t *Text) Kind() Kind { return t.kind }

// Bind attaches the text to the registry it resolves pipeline names from.
// Binding is single-assignment: rebinding is an error.
func (t *Text) Bind(reg *pipeline.Registry) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.reg != nil {
		return errors.New("text is already bound to a registry")
	}
	t.reg = reg
	return nil
}

// Standardized returns the text rewritten by the active standardizer, cached
// per standardizer name.
func (t *Text) Standardized(ctx context.Context) (string, error) {
	cfg := pipeline.Active(ctx)
	key := cfg.StandardizerKey()

	t.mu.Lock()
	defer t.mu.Unlock()
	if got, ok := t.standardized[key]; ok {
		return got, nil
	}
	if t.reg == nil {
		return "", ErrNoRegistry
	}
	fn, err := t.reg.Standardizer(cfg.Standardizer)
	if err != nil {
		return "", err
	}
	got := fn(t.raw)
	t.standardized[key] = got
	return got, nil
}

// Tokens returns the token list produced by the active tokenizer over the
// standardized text, cached per (standardizer, tokenizer) prefix.
func (t *Text) Tokens(ctx context.Context) (*TokenList, error) {
	std, err := t.Standardized(ctx)
	if err != nil {
		return nil, err
	}

	cfg := pipeline.Active(ctx)
	key := cfg.TokenizerKey()

	t.mu.Lock()
	defer t.mu.Unlock()
	if got, ok := t.tokens[key]; ok {
		return got, nil
	}
	fn, err := t.reg.Tokenizer(cfg.Tokenizer)
	if err != nil {
		return nil, err
	}
	spans := fn(std)
	toks := make([]*Token, len(spans))
	for i, s := range spans {
		toks[i] = &Token{
			Raw:   std[s.Start:s.End],
			Start: s.Start,
			End:   s.End,
			Index: i,
			src:   t,
		}
	}
	list := NewTokenList(toks)
	t.tokens[key] = list
	return list, nil
}

// Joined re-joins token text, inserting a single space only across gaps in
// the standardized text so that directly adjacent tokens stay fused.
func (t *Text) Joined(ctx context.Context, normalized bool) (string, error) {
	toks, err := t.Tokens(ctx)
	if err != nil {
		return "", err
	}
	return joinTokens(ctx, toks.Tokens(), normalized)
}

func joinTokens(ctx context.Context, toks []*Token, normalized bool) (string, error) {
	var b strings.Builder
	prevEnd := 0
	for _, tok := range toks {
		text := tok.Raw
		if normalized {
			var err error
			text, err = tok.Normalized(ctx)
			if err != nil {
				return "", err
			}
		}
		if tok.Start > prevEnd && b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(text)
		prevEnd = tok.End
	}
	return strings.TrimSpace(b.String()), nil
}
