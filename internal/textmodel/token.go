package textmodel

import (
	"context"
	"fmt"
	"sync"

	"speechscore/internal/pipeline"
)

// Token is one contiguous slice of a standardized text. Raw always equals
// the owning text's slice [Start, End). Tokens are created by Text.Tokens and
// immutable afterwards; only the per-configuration normalized cache mutates.
type Token struct {
	Raw   string
	Start int
	End   int
	Index int

	src *Text

	mu         sync.Mutex
	normalized map[pipeline.Config]string
}

// Equal reports structural equality on (Raw, Start, End). Index is
// deliberately excluded: the same token can appear at different positions in
// sliced lists.
func (t *Token) Equal(o *Token) bool {
	if o == nil {
		return false
	}
	return t.Raw == o.Raw && t.Start == o.Start && t.End == o.End
}

// Normalized returns the token text rewritten by the active normalizer. The
// result is cached per full stage prefix (standardizer, tokenizer,
// normalizer): later stages can never affect earlier derivations, but a
// token's identity already depends on the first two stages, so the full
// triple keys the cache.
func (t *Token) Normalized(ctx context.Context) (string, error) {
	cfg := pipeline.Active(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	if got, ok := t.normalized[cfg]; ok {
		return got, nil
	}

	if t.src == nil || t.src.reg == nil {
		return "", ErrNoRegistry
	}
	fn, err := t.src.reg.Normalizer(cfg.Normalizer)
	if err != nil {
		return "", err
	}
	got := fn(t.Raw)
	if t.normalized == nil {
		t.normalized = map[pipeline.Config]string{}
	}
	t.normalized[cfg] = got
	return got, nil
}

// InContext returns the token with up to width characters of surrounding
// standardized text, with ellipses marking truncation.
func (t *Token) InContext(ctx context.Context, width int) (string, error) {
	if t.src == nil {
		return "", fmt.Errorf("token has no source text")
	}
	std, err := t.src.Standardized(ctx)
	if err != nil {
		return "", err
	}
	start := t.Start - width
	if start < 0 {
		start = 0
	}
	end := t.End + width
	if end > len(std) {
		end = len(std)
	}
	out := std[start:end]
	if start > 0 {
		out = "..." + out
	}
	if end < len(std) {
		out = out + "..."
	}
	return out, nil
}

func (t *Token) String() string {
	return fmt.Sprintf("Token(%q)", t.Raw)
}
