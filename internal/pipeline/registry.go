package pipeline

import "fmt"

// Span is a half-open character range [Start, End) into the text a tokenizer
// was applied to.
type Span struct {
	Start int
	End   int
}

// StandardizeFunc rewrites a whole text before tokenization.
type StandardizeFunc func(text string) string

// TokenizeFunc splits a standardized text into token spans, in reading order.
type TokenizeFunc func(text string) []Span

// NormalizeFunc rewrites a single token's text for comparison purposes.
type NormalizeFunc func(token string) string

// UnknownNameError reports a pipeline name that is not registered for its
// stage. It is distinct from the not-attached-to-a-registry condition so
// callers can tell a typo from a wiring bug.
type UnknownNameError struct {
	Stage string
	Name  string
}

func (e *UnknownNameError) Error() string {
	return fmt.Sprintf("%s %q not found in registry", e.Stage, e.Name)
}

// Registry holds the named functions for each pipeline stage. A Registry is
// populated up front and read-only afterwards; lookups need no locking.
type Registry struct {
	standardizers map[string]StandardizeFunc
	tokenizers    map[string]TokenizeFunc
	normalizers   map[string]NormalizeFunc
}

// NewRegistry returns a registry pre-populated with the built-in stage
// functions (see funcs.go).
func NewRegistry() *Registry {
	r := &Registry{
		standardizers: map[string]StandardizeFunc{},
		tokenizers:    map[string]TokenizeFunc{},
		normalizers:   map[string]NormalizeFunc{},
	}
	registerBuiltins(r)
	return r
}

func (r *Registry) RegisterStandardizer(name string, fn StandardizeFunc) {
	r.standardizers[name] = fn
}

func (r *Registry) RegisterTokenizer(name string, fn TokenizeFunc) {
	r.tokenizers[name] = fn
}

func (r *Registry) RegisterNormalizer(name string, fn NormalizeFunc) {
	r.normalizers[name] = fn
}

// Standardizer resolves a standardizer by name.
func (r *Registry) Standardizer(name string) (StandardizeFunc, error) {
	fn, ok := r.standardizers[name]
	if !ok {
		return nil, &UnknownNameError{Stage: "standardizer", Name: name}
	}
	return fn, nil
}

// Tokenizer resolves a tokenizer by name.
func (r *Registry) Tokenizer(name string) (TokenizeFunc, error) {
	fn, ok := r.tokenizers[name]
	if !ok {
		return nil, &UnknownNameError{Stage: "tokenizer", Name: name}
	}
	return fn, nil
}

// Normalizer resolves a normalizer by name.
func (r *Registry) Normalizer(name string) (NormalizeFunc, error) {
	fn, ok := r.normalizers[name]
	if !ok {
		return nil, &UnknownNameError{Stage: "normalizer", Name: name}
	}
	return fn, nil
}
