package metrics

import (
	"context"
	"testing"

	"speechscore/internal/dataset"
)

func example(t *testing.T, ref, hyp string, keywords ...string) *dataset.Example {
	t.Helper()
	ex := dataset.NewExample("ex", ref, hyp)
	if len(keywords) > 0 {
		if _, err := ex.AddKeywords("test", keywords...); err != nil {
			t.Fatalf("add keywords: %v", err)
		}
	}
	if err := dataset.New(nil).Add(ex); err != nil {
		t.Fatalf("add example: %v", err)
	}
	return ex
}

func TestWord(t *testing.T) {
	ex := example(t, "the quick brown fox", "the quick brown dog")

	s, err := Word(context.Background(), ex)
	if err != nil {
		t.Fatalf("word: %v", err)
	}
	if s.Errors != 1 || s.Total != 4 {
		t.Fatalf("expected 1/4, got %v", s)
	}
	if s.Rate() != 0.25 {
		t.Fatalf("expected rate 0.25, got %f", s.Rate())
	}
}

func TestWordInsertionAgainstShortRef(t *testing.T) {
	ex := example(t, "alpha beta", "alpha gamma beta")

	s, err := Word(context.Background(), ex)
	if err != nil {
		t.Fatalf("word: %v", err)
	}
	// The inserted word counts as an error but never inflates the reference
	// length.
	if s.Errors != 1 || s.Total != 2 {
		t.Fatalf("expected 1/2, got %v", s)
	}
}

func TestChar(t *testing.T) {
	ex := example(t, "cat", "cab")

	s, err := Char(context.Background(), ex)
	if err != nil {
		t.Fatalf("char: %v", err)
	}
	if s.Errors != 1 || s.Total != 3 {
		t.Fatalf("expected 1/3, got %v", s)
	}
}

func TestCharNormalizesBeforeCounting(t *testing.T) {
	ex := example(t, "Cat!", "cat")

	s, err := Char(context.Background(), ex)
	if err != nil {
		t.Fatalf("char: %v", err)
	}
	if s.Errors != 0 || s.Total != 3 {
		t.Fatalf("expected 0/3 after normalization, got %v", s)
	}
}

func TestKeywordsIntact(t *testing.T) {
	ex := example(t, "the quick brown fox jumps", "the quick brown fox jumps", "quick brown")

	s, err := Keywords(context.Background(), ex, "test")
	if err != nil {
		t.Fatalf("keywords: %v", err)
	}
	if s.Errors != 0 || s.Total != 1 {
		t.Fatalf("expected 0/1, got %v", s)
	}
}

func TestKeywordsSubstitutionFailsOccurrence(t *testing.T) {
	ex := example(t, "the quick brown fox jumps", "the quack brown fox jumps", "quick brown")

	s, err := Keywords(context.Background(), ex, "test")
	if err != nil {
		t.Fatalf("keywords: %v", err)
	}
	if s.Errors != 1 || s.Total != 1 {
		t.Fatalf("expected 1/1, got %v", s)
	}
}

func TestKeywordsInsertionInsideRunFailsOccurrence(t *testing.T) {
	ex := example(t, "quick brown", "quick red brown", "quick brown")

	s, err := Keywords(context.Background(), ex, "test")
	if err != nil {
		t.Fatalf("keywords: %v", err)
	}
	if s.Errors != 1 || s.Total != 1 {
		t.Fatalf("expected the interleaved insert to fail the occurrence, got %v", s)
	}
}

func TestKeywordsCountEveryOccurrence(t *testing.T) {
	ex := example(t, "fox and fox again", "fox and box again", "fox")

	s, err := Keywords(context.Background(), ex, "test")
	if err != nil {
		t.Fatalf("keywords: %v", err)
	}
	if s.Total != 2 || s.Errors != 1 {
		t.Fatalf("expected 1/2, got %v", s)
	}
}

func TestKeywordsMissingVocabulary(t *testing.T) {
	ex := example(t, "a b", "a b")

	s, err := Keywords(context.Background(), ex, "no-such-vocab")
	if err != nil {
		t.Fatalf("keywords: %v", err)
	}
	if s.Total != 0 || s.Rate() != 0 {
		t.Fatalf("expected empty score, got %v", s)
	}
}

func TestEvaluateDataset(t *testing.T) {
	d := dataset.New(nil)
	exes := []*dataset.Example{
		dataset.NewExample("a", "the quick brown fox", "the quick brown dog"),
		dataset.NewExample("b", "hello world", "hello world"),
	}
	if _, err := exes[0].AddKeywords("test", "fox"); err != nil {
		t.Fatalf("add keywords: %v", err)
	}
	for _, ex := range exes {
		if err := d.Add(ex); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	report, errs := EvaluateDataset(context.Background(), d, 2, "test")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if report.Examples != 2 {
		t.Fatalf("expected 2 examples, got %d", report.Examples)
	}
	if report.Word.Errors != 1 || report.Word.Total != 6 {
		t.Fatalf("unexpected word score: %v", report.Word)
	}
	// "fox" aligned to "dog" is the one keyword miss.
	if report.Keyword.Errors != 1 || report.Keyword.Total != 1 {
		t.Fatalf("unexpected keyword score: %v", report.Keyword)
	}
	if report.WER() != 1.0/6.0 {
		t.Fatalf("unexpected WER %f", report.WER())
	}
}
