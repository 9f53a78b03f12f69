// Package keyword locates contiguous multi-token phrases inside token
// sequences.
package keyword

import (
	"context"
	"sort"
	"sync"

	"speechscore/internal/pipeline"
	"speechscore/internal/textmodel"
)

// Keyword is a phrase that can locate its own token sequence inside a
// haystack token list. It carries a Text so the phrase goes through the same
// standardize/tokenize/normalize pipeline as the texts it is searched in.
type Keyword struct {
	text *textmodel.Text

	mu    sync.Mutex
	found map[cacheKey][]*textmodel.TokenList
}

type cacheKey struct {
	cfg        pipeline.Config
	normalized bool
}

// New returns a keyword for the given phrase. Bind it to the same registry
// as the texts it will be searched in.
func New(raw string) *Keyword {
	return &Keyword{text: textmodel.NewText(raw, textmodel.KindKeyword)}
}

func (k *Keyword) Raw() string { return k.text.Raw() }

func (k *Keyword) Bind(reg *pipeline.Registry) error { return k.text.Bind(reg) }

// Text exposes the underlying text, e.g. for token-level inspection.
func (k *Keyword) Text() *textmodel.Text { return k.text }

// FindIn returns every contiguous occurrence of the keyword's tokens in
// haystack, as token slices sorted by start position. Comparison uses
// normalized token text when normalized is true, raw text otherwise. An
// empty keyword has no occurrences by definition.
func (k *Keyword) FindIn(ctx context.Context, haystack *textmodel.TokenList, normalized bool) ([]*textmodel.TokenList, error) {
	kwToks, err := k.text.Tokens(ctx)
	if err != nil {
		return nil, err
	}
	texts := kwToks.Raw()
	if normalized {
		texts, err = kwToks.Normalized(ctx)
		if err != nil {
			return nil, err
		}
	}
	return findRun(ctx, texts, haystack, normalized)
}

// FindInCached is FindIn memoized per active pipeline configuration. It is
// meant for the common case of repeatedly searching one fixed haystack (an
// example's reference tokens); passing a different haystack under the same
// configuration returns the first haystack's cached result.
func (k *Keyword) FindInCached(ctx context.Context, haystack *textmodel.TokenList, normalized bool) ([]*textmodel.TokenList, error) {
	key := cacheKey{cfg: pipeline.Active(ctx), normalized: normalized}

	k.mu.Lock()
	cached, ok := k.found[key]
	k.mu.Unlock()
	if ok {
		return cached, nil
	}

	got, err := k.FindIn(ctx, haystack, normalized)
	if err != nil {
		return nil, err
	}
	k.mu.Lock()
	if k.found == nil {
		k.found = map[cacheKey][]*textmodel.TokenList{}
	}
	k.found[key] = got
	k.mu.Unlock()
	return got, nil
}

// findRun seeds candidate start positions with the first token's positions
// and intersects with the offset-shifted positions of each later token,
// bailing out the moment no candidate survives.
func findRun(ctx context.Context, texts []string, haystack *textmodel.TokenList, normalized bool) ([]*textmodel.TokenList, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	seed, err := haystack.Indices(ctx, texts[0], normalized)
	if err != nil {
		return nil, err
	}
	candidates := make(map[int]struct{}, len(seed))
	for p := range seed {
		candidates[p] = struct{}{}
	}

	for offset := 1; offset < len(texts); offset++ {
		if len(candidates) == 0 {
			return nil, nil
		}
		positions, err := haystack.Indices(ctx, texts[offset], normalized)
		if err != nil {
			return nil, err
		}
		next := make(map[int]struct{})
		for p := range positions {
			if _, ok := candidates[p-offset]; ok {
				next[p-offset] = struct{}{}
			}
		}
		candidates = next
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	starts := make([]int, 0, len(candidates))
	for p := range candidates {
		starts = append(starts, p)
	}
	sort.Ints(starts)

	out := make([]*textmodel.TokenList, len(starts))
	for i, s := range starts {
		out[i] = haystack.Slice(s, s+len(texts))
	}
	return out, nil
}
