package pipeline

import (
	"context"
	"errors"
	"testing"
)

func TestActiveDefaultsWhenUnset(t *testing.T) {
	cfg := Active(context.Background())
	if cfg != Default() {
		t.Fatalf("expected default config, got %+v", cfg)
	}
}

func TestWithScopesConfiguration(t *testing.T) {
	outer := context.Background()
	inner := With(outer, Config{Normalizer: "identity"})

	got := Active(inner)
	if got.Normalizer != "identity" {
		t.Fatalf("expected identity normalizer, got %q", got.Normalizer)
	}
	if got.Standardizer != DefaultName || got.Tokenizer != DefaultName {
		t.Fatalf("expected unset stages to default, got %+v", got)
	}

	// The parent context never observes the inner activation.
	if Active(outer) != Default() {
		t.Fatal("outer context leaked an activated configuration")
	}
}

func TestWithNestedActivations(t *testing.T) {
	ctx := With(context.Background(), Config{Normalizer: "lowercase"})
	nested := With(ctx, Config{Normalizer: "identity"})

	if Active(nested).Normalizer != "identity" {
		t.Fatal("nested activation not visible")
	}
	if Active(ctx).Normalizer != "lowercase" {
		t.Fatal("nested activation overwrote the enclosing one")
	}
}

func TestRegistryUnknownName(t *testing.T) {
	r := NewRegistry()
	_, err := r.Normalizer("no-such-pipeline")
	if err == nil {
		t.Fatal("expected error for unknown normalizer")
	}
	var unknown *UnknownNameError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownNameError, got %T", err)
	}
	if unknown.Stage != "normalizer" || unknown.Name != "no-such-pipeline" {
		t.Fatalf("unexpected error fields: %+v", unknown)
	}
}

func TestBuiltinTokenizers(t *testing.T) {
	spans := Whitespace("the quick  brown")
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(spans))
	}
	if spans[0] != (Span{Start: 0, End: 3}) {
		t.Fatalf("unexpected first span: %+v", spans[0])
	}

	text := "don't stop, believing!"
	spans = Words(text)
	if len(spans) != 3 {
		t.Fatalf("expected 3 word spans, got %d", len(spans))
	}
	if got := text[spans[0].Start:spans[0].End]; got != "don't" {
		t.Fatalf("expected contraction kept whole, got %q", got)
	}
	if got := text[spans[1].Start:spans[1].End]; got != "stop" {
		t.Fatalf("expected punctuation excluded, got %q", got)
	}
}

func TestBuiltinNormalizers(t *testing.T) {
	if got := LowercaseStripped(`"Hello,"`); got != "hello" {
		t.Fatalf("expected hello, got %q", got)
	}
	if got := LowercaseStripped("AT&T"); got != "at&t" {
		t.Fatalf("expected ampersand kept, got %q", got)
	}
	if got := StripEdgePunctuation("100%"); got != "100%" {
		t.Fatalf("expected percent kept, got %q", got)
	}
	if got := FoldDiacritics("café"); got != "cafe" {
		t.Fatalf("expected diacritics folded, got %q", got)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	if got := CollapseWhitespace("  a\t b\n\nc "); got != "a b c" {
		t.Fatalf("expected collapsed text, got %q", got)
	}
}
