// Package metrics computes word, character and keyword error rates over
// examples and whole datasets.
package metrics

import (
	"context"
	"fmt"
	"sync"

	"speechscore/internal/align"
	"speechscore/internal/dataset"
	"speechscore/internal/editdist"
)

// Score is an error count over a denominator. Rate is 0 when the
// denominator is empty.
type Score struct {
	Errors int
	Total  int
}

func (s Score) Rate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Errors) / float64(s.Total)
}

func (s Score) String() string {
	return fmt.Sprintf("%d/%d (%.4f)", s.Errors, s.Total, s.Rate())
}

func (s *Score) add(o Score) {
	s.Errors += o.Errors
	s.Total += o.Total
}

// Word scores the example's alignment at token granularity: edits over
// reference length. Insertions into an empty reference still count as
// errors, against a zero denominator.
func Word(ctx context.Context, ex *dataset.Example) (Score, error) {
	a, err := ex.Alignment(ctx)
	if err != nil {
		return Score{}, err
	}
	refLen := a.NumMatches() + a.NumSubstitutions() + a.NumDeletions()
	return Score{Errors: a.NumEdits(), Total: refLen}, nil
}

// Char scores the example at character granularity over the normalized,
// re-joined texts.
func Char(ctx context.Context, ex *dataset.Example) (Score, error) {
	ref, err := ex.Ref().Joined(ctx, true)
	if err != nil {
		return Score{}, err
	}
	hyp, err := ex.Hyp().Joined(ctx, true)
	if err != nil {
		return Score{}, err
	}
	return Score{
		Errors: editdist.DistanceRunes([]rune(ref), []rune(hyp)),
		Total:  len([]rune(ref)),
	}, nil
}

// Keywords scores the named vocabulary: each reference occurrence of each
// keyword counts once, and it is correct only when every alignment op over
// its reference token range is a match. An insert inside the range corrupts
// the occurrence and fails it too.
func Keywords(ctx context.Context, ex *dataset.Example, vocab string) (Score, error) {
	a, err := ex.Alignment(ctx)
	if err != nil {
		return Score{}, err
	}
	refToks, err := ex.Ref().Tokens(ctx)
	if err != nil {
		return Score{}, err
	}

	var s Score
	for _, kw := range ex.Keywords(vocab) {
		hits, err := kw.FindInCached(ctx, refToks, true)
		if err != nil {
			return Score{}, fmt.Errorf("locate keyword %q: %w", kw.Raw(), err)
		}
		for _, hit := range hits {
			s.Total++
			ok, err := occurrenceIntact(a, hit.At(0).Index, hit.At(hit.Len()-1).Index)
			if err != nil {
				// The occurrence came from the reference's own tokens, so a
				// range failure means the alignment is inconsistent with it.
				return Score{}, fmt.Errorf("keyword %q at ref index %d: %w",
					kw.Raw(), hit.At(0).Index, err)
			}
			if !ok {
				s.Errors++
			}
		}
	}
	return s, nil
}

func occurrenceIntact(a *align.Alignment, first, last int) (bool, error) {
	ops, err := a.OpsFromRefRange(first, last)
	if err != nil {
		return false, err
	}
	for _, op := range ops {
		if op.Kind() != align.KindMatch {
			return false, nil
		}
	}
	return true, nil
}

// Report aggregates scores across a dataset run. Rates are micro-averaged:
// error and denominator counts are summed before dividing.
type Report struct {
	Examples int
	Word     Score
	Char     Score
	Keyword  Score
}

func (r Report) WER() float64  { return r.Word.Rate() }
func (r Report) CER() float64  { return r.Char.Rate() }
func (r Report) KWER() float64 { return r.Keyword.Rate() }

// EvaluateDataset scores every example concurrently and aggregates. vocab
// names the keyword vocabulary to score; examples without it contribute
// zero occurrences.
func EvaluateDataset(ctx context.Context, d *dataset.Dataset, workers int, vocab string) (Report, []error) {
	var mu sync.Mutex
	var report Report

	errs := d.Evaluate(ctx, workers, func(ctx context.Context, ex *dataset.Example) error {
		word, err := Word(ctx, ex)
		if err != nil {
			return err
		}
		char, err := Char(ctx, ex)
		if err != nil {
			return err
		}
		kw, err := Keywords(ctx, ex, vocab)
		if err != nil {
			return err
		}

		mu.Lock()
		report.Examples++
		report.Word.add(word)
		report.Char.add(char)
		report.Keyword.add(kw)
		mu.Unlock()
		return nil
	})
	return report, errs
}
