package textmodel

import (
	"context"
	"fmt"
	"sync"

	"speechscore/internal/pipeline"
)

// TokenList is an ordered list of tokens with lazily built lookup structures:
// char-offset maps and text→positions indexes. Slicing shares the underlying
// tokens but not the caches.
type TokenList struct {
	toks []*Token

	mu       sync.Mutex
	startIdx map[int]int
	endIdx   map[int]int
	rawIdx   map[string]map[int]struct{}
	normIdx  map[pipeline.Config]map[string]map[int]struct{}
}

func NewTokenList(toks []*Token) *TokenList {
	return &TokenList{toks: toks}
}

func (l *TokenList) Len() int { return len(l.toks) }

func (l *TokenList) At(i int) *Token { return l.toks[i] }

// Tokens returns the backing slice. Callers must not mutate it.
func (l *TokenList) Tokens() []*Token { return l.toks }

// Slice returns the sub-list [i, j). The tokens keep their original Index.
func (l *TokenList) Slice(i, j int) *TokenList {
	return NewTokenList(l.toks[i:j])
}

// Raw returns the raw token strings.
func (l *TokenList) Raw() []string {
	out := make([]string, len(l.toks))
	for i, t := range l.toks {
		out[i] = t.Raw
	}
	return out
}

// Normalized returns the token strings under the active normalizer.
func (l *TokenList) Normalized(ctx context.Context) ([]string, error) {
	out := make([]string, len(l.toks))
	for i, t := range l.toks {
		n, err := t.Normalized(ctx)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func (l *TokenList) ensureOffsetIndex() {
	if l.startIdx != nil {
		return
	}
	l.startIdx = make(map[int]int, len(l.toks))
	l.endIdx = make(map[int]int, len(l.toks))
	for i, t := range l.toks {
		l.startIdx[t.Start] = i
		l.endIdx[t.End] = i
	}
}

// StartIndexToToken returns the token starting at the given character offset,
// or nil when no token starts there.
func (l *TokenList) StartIndexToToken(off int) *Token {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureOffsetIndex()
	if i, ok := l.startIdx[off]; ok {
		return l.toks[i]
	}
	return nil
}

// EndIndexToToken returns the token ending at the given character offset, or
// nil when no token ends there.
func (l *TokenList) EndIndexToToken(off int) *Token {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureOffsetIndex()
	if i, ok := l.endIdx[off]; ok {
		return l.toks[i]
	}
	return nil
}

// Indices returns every list position whose token text equals text, under
// raw or normalized comparison. The returned set is shared and read-only.
func (l *TokenList) Indices(ctx context.Context, text string, normalized bool) (map[int]struct{}, error) {
	if !normalized {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.rawIdx == nil {
			l.rawIdx = map[string]map[int]struct{}{}
			for i, t := range l.toks {
				addIndex(l.rawIdx, t.Raw, i)
			}
		}
		return l.rawIdx[text], nil
	}

	cfg := pipeline.Active(ctx)
	l.mu.Lock()
	idx, ok := l.normIdx[cfg]
	l.mu.Unlock()
	if !ok {
		// Normalize outside the list lock: each token takes its own lock.
		idx = map[string]map[int]struct{}{}
		for i, t := range l.toks {
			n, err := t.Normalized(ctx)
			if err != nil {
				return nil, err
			}
			addIndex(idx, n, i)
		}
		l.mu.Lock()
		if l.normIdx == nil {
			l.normIdx = map[pipeline.Config]map[string]map[int]struct{}{}
		}
		if existing, ok := l.normIdx[cfg]; ok {
			idx = existing
		} else {
			l.normIdx[cfg] = idx
		}
		l.mu.Unlock()
	}
	return idx[text], nil
}

func addIndex(idx map[string]map[int]struct{}, text string, i int) {
	set, ok := idx[text]
	if !ok {
		set = map[int]struct{}{}
		idx[text] = set
	}
	set[i] = struct{}{}
}

// NGrams returns the space-joined n-grams of the list.
func (l *TokenList) NGrams(ctx context.Context, n int, normalized bool) ([]string, error) {
	if n < 1 {
		return nil, fmt.Errorf("ngram size must be positive, got %d", n)
	}
	texts := l.Raw()
	if normalized {
		var err error
		texts, err = l.Normalized(ctx)
		if err != nil {
			return nil, err
		}
	}
	if n == 1 {
		return texts, nil
	}
	if len(texts) < n {
		return nil, nil
	}
	out := make([]string, 0, len(texts)-n+1)
	for i := 0; i+n <= len(texts); i++ {
		gram := texts[i]
		for _, t := range texts[i+1 : i+n] {
			gram += " " + t
		}
		out = append(out, gram)
	}
	return out, nil
}
