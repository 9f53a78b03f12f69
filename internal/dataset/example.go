// Package dataset groups reference/hypothesis pairs, gives them a shared
// pipeline registry, and evaluates them concurrently.
package dataset

import (
	"context"
	"strings"
	"sync"

	"speechscore/internal/align"
	"speechscore/internal/editdist"
	"speechscore/internal/keyword"
	"speechscore/internal/pipeline"
	"speechscore/internal/textmodel"
)

// Example is one reference/hypothesis pair plus its keyword vocabularies.
// Texts resolve pipeline names through the dataset's registry once the
// example is added to one. Alignments are computed per pipeline
// configuration and frozen.
type Example struct {
	ID string

	ref *textmodel.Text
	hyp *textmodel.Text

	mu         sync.Mutex
	reg        *pipeline.Registry
	keywords   map[string][]*keyword.Keyword
	alignments map[pipeline.Config]*align.Alignment
}

func NewExample(id, ref, hyp string) *Example {
	return &Example{
		ID:         id,
		ref:        textmodel.NewText(ref, textmodel.KindRef),
		hyp:        textmodel.NewText(hyp, textmodel.KindHyp),
		keywords:   map[string][]*keyword.Keyword{},
		alignments: map[pipeline.Config]*align.Alignment{},
	}
}

func (e *Example) Ref() *textmodel.Text { return e.ref }

func (e *Example) Hyp() *textmodel.Text { return e.hyp }

// bind wires the example's texts and keywords to the dataset's registry.
func (e *Example) bind(reg *pipeline.Registry) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ref.Bind(reg); err != nil {
		return err
	}
	if err := e.hyp.Bind(reg); err != nil {
		return err
	}
	for _, kws := range e.keywords {
		for _, kw := range kws {
			if err := kw.Bind(reg); err != nil {
				return err
			}
		}
	}
	e.reg = reg
	return nil
}

// AddKeywords adds phrases to the named vocabulary. Phrases that do not
// occur in the reference (case-insensitively) cannot ever be recalled and
// are dropped; the count of phrases actually added is returned.
func (e *Example) AddKeywords(vocab string, phrases ...string) (int, error) {
	refLower := strings.ToLower(e.ref.Raw())

	e.mu.Lock()
	defer e.mu.Unlock()
	added := 0
	for _, p := range phrases {
		if p == "" || !strings.Contains(refLower, strings.ToLower(p)) {
			continue
		}
		kw := keyword.New(p)
		if e.reg != nil {
			if err := kw.Bind(e.reg); err != nil {
				return added, err
			}
		}
		e.keywords[vocab] = append(e.keywords[vocab], kw)
		added++
	}
	return added, nil
}

// Keywords returns the named vocabulary. Callers must not mutate the slice.
func (e *Example) Keywords(vocab string) []*keyword.Keyword {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.keywords[vocab]
}

// Vocabularies returns the vocabulary names present on the example.
func (e *Example) Vocabularies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.keywords))
	for name := range e.keywords {
		out = append(out, name)
	}
	return out
}

// Alignment returns the total alignment of hypothesis against reference
// under the active pipeline configuration, computing and freezing it on
// first use. Both texts are normalized token-wise before the edit script is
// computed, so "Fox" aligns to "fox" as a match under the default pipeline.
func (e *Example) Alignment(ctx context.Context) (*align.Alignment, error) {
	cfg := pipeline.Active(ctx)

	e.mu.Lock()
	cached, ok := e.alignments[cfg]
	e.mu.Unlock()
	if ok {
		return cached, nil
	}

	refToks, err := e.ref.Tokens(ctx)
	if err != nil {
		return nil, err
	}
	hypToks, err := e.hyp.Tokens(ctx)
	if err != nil {
		return nil, err
	}
	refNorm, err := refToks.Normalized(ctx)
	if err != nil {
		return nil, err
	}
	hypNorm, err := hypToks.Normalized(ctx)
	if err != nil {
		return nil, err
	}

	a, err := align.Build(refToks.Tokens(), hypToks.Tokens(), refNorm, hypNorm,
		editdist.EditOps(refNorm, hypNorm))
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if prior, ok := e.alignments[cfg]; ok {
		a = prior
	} else {
		e.alignments[cfg] = a
	}
	e.mu.Unlock()
	return a, nil
}
