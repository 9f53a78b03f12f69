package keyword

import (
	"context"
	"testing"

	"speechscore/internal/pipeline"
	"speechscore/internal/textmodel"
)

func setup(t *testing.T, haystack, phrase string) (context.Context, *textmodel.TokenList, *Keyword) {
	t.Helper()
	reg := pipeline.NewRegistry()

	text := textmodel.NewText(haystack, textmodel.KindRef)
	if err := text.Bind(reg); err != nil {
		t.Fatalf("bind haystack: %v", err)
	}
	kw := New(phrase)
	if err := kw.Bind(reg); err != nil {
		t.Fatalf("bind keyword: %v", err)
	}

	ctx := pipeline.With(context.Background(), pipeline.Default())
	toks, err := text.Tokens(ctx)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	return ctx, toks, kw
}

func starts(hits []*textmodel.TokenList) []int {
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.At(0).Index
	}
	return out
}

func TestFindMultiTokenRun(t *testing.T) {
	ctx, toks, kw := setup(t, "the quick brown fox", "quick brown")

	hits, err := kw.FindIn(ctx, toks, false)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(hits))
	}
	hit := hits[0]
	if hit.Len() != 2 || hit.At(0).Raw != "quick" || hit.At(1).Raw != "brown" {
		t.Fatalf("unexpected occurrence tokens: %v", hit.Raw())
	}
	// The slice keeps the haystack's own tokens, original indexes included.
	if hit.At(0).Index != 1 || hit.At(1).Index != 2 {
		t.Fatalf("occurrence lost original indexes: %d, %d", hit.At(0).Index, hit.At(1).Index)
	}
}

func TestFindSingleTokenAllPositions(t *testing.T) {
	ctx, toks, kw := setup(t, "the quick the brown the", "the")

	hits, err := kw.FindIn(ctx, toks, false)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	got := starts(hits)
	want := []int{0, 2, 4}
	if len(got) != len(want) {
		t.Fatalf("expected starts %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected starts %v, got %v", want, got)
		}
	}
}

func TestFindPartialRunIsNoMatch(t *testing.T) {
	// Both words occur, but never adjacently in order.
	ctx, toks, kw := setup(t, "brown fox quick dog", "quick brown")

	hits, err := kw.FindIn(ctx, toks, false)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no occurrences, got %d", len(hits))
	}
}

func TestFindAbsentIsEmptyNotError(t *testing.T) {
	ctx, toks, kw := setup(t, "alpha beta gamma", "delta")

	hits, err := kw.FindIn(ctx, toks, false)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no occurrences, got %d", len(hits))
	}
}

func TestFindEmptyKeyword(t *testing.T) {
	ctx, toks, kw := setup(t, "alpha beta", "")

	hits, err := kw.FindIn(ctx, toks, false)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("empty keyword must have no occurrences, got %d", len(hits))
	}
}

func TestFindNormalizedMatchesAcrossCase(t *testing.T) {
	ctx, toks, kw := setup(t, "please say The word", "THE")

	raw, err := kw.FindIn(ctx, toks, false)
	if err != nil {
		t.Fatalf("raw find: %v", err)
	}
	if len(raw) != 0 {
		t.Fatalf("raw comparison must not match across case, got %d hits", len(raw))
	}

	norm, err := kw.FindIn(ctx, toks, true)
	if err != nil {
		t.Fatalf("normalized find: %v", err)
	}
	if len(norm) != 1 || norm[0].At(0).Raw != "The" {
		t.Fatalf("expected one normalized occurrence of %q, got %v", "The", norm)
	}
}

func TestFindMatchedSlicesCompareEqual(t *testing.T) {
	ctx, toks, kw := setup(t, "one two three two three", "two three")

	hits, err := kw.FindIn(ctx, toks, true)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(hits))
	}
	kwTexts, err := kw.Text().Tokens(ctx)
	if err != nil {
		t.Fatalf("keyword tokens: %v", err)
	}
	want, err := kwTexts.Normalized(ctx)
	if err != nil {
		t.Fatalf("keyword normalized: %v", err)
	}
	for _, hit := range hits {
		got, err := hit.Normalized(ctx)
		if err != nil {
			t.Fatalf("hit normalized: %v", err)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("occurrence %v does not match keyword %v", got, want)
			}
		}
	}
}

func TestFindInCached(t *testing.T) {
	ctx, toks, kw := setup(t, "the quick brown fox", "quick brown")

	first, err := kw.FindInCached(ctx, toks, true)
	if err != nil {
		t.Fatalf("first find: %v", err)
	}
	second, err := kw.FindInCached(ctx, toks, true)
	if err != nil {
		t.Fatalf("second find: %v", err)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected 1 occurrence from both calls, got %d and %d", len(first), len(second))
	}
	// Cache hit returns the very same slices.
	if second[0] != first[0] {
		t.Fatal("expected cached result to be reused")
	}

	// A different mode is a different cache entry, not a stale hit.
	rawHits, err := kw.FindInCached(ctx, toks, false)
	if err != nil {
		t.Fatalf("raw find: %v", err)
	}
	if len(rawHits) != 1 {
		t.Fatalf("expected 1 raw occurrence, got %d", len(rawHits))
	}
}
