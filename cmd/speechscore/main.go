package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"speechscore/internal/dataset"
	"speechscore/internal/db"
	"speechscore/internal/ingest"
	"speechscore/internal/metrics"
	"speechscore/internal/pipeline"
	"speechscore/internal/workspace"
)

func main() {
	var (
		datasetPath  = flag.String("dataset", "", "CSV dataset with reference/hypothesis columns")
		refPath      = flag.String("ref", "", "reference transcript file (.txt/.pdf/.docx)")
		hypPath      = flag.String("hyp", "", "hypothesis transcript file (.txt/.pdf/.docx)")
		wsPath       = flag.String("workspace", "", "workspace directory (default: ~/SpeechScore)")
		standardizer = flag.String("standardizer", "", "standardizer name (overrides settings)")
		tokenizer    = flag.String("tokenizer", "", "tokenizer name (overrides settings)")
		normalizer   = flag.String("normalizer", "", "normalizer name (overrides settings)")
		workers      = flag.Int("workers", -1, "evaluation workers (overrides settings; 0 = NumCPU)")
		vocab        = flag.String("vocab", pipeline.DefaultName, "keyword vocabulary to score")
		persist      = flag.Bool("persist", false, "store the run in the workspace database")
	)
	flag.Parse()

	root, err := ensureWorkspace(*wsPath)
	if err != nil {
		log.Fatalf("workspace initialization failed: %v", err)
	}
	settings, err := workspace.LoadSettings(workspace.SettingsPath(root))
	if err != nil {
		log.Fatalf("load settings: %v", err)
	}

	cfg := pipeline.Config{
		Standardizer: pick(*standardizer, settings.Standardizer),
		Tokenizer:    pick(*tokenizer, settings.Tokenizer),
		Normalizer:   pick(*normalizer, settings.Normalizer),
	}
	poolSize := settings.Workers
	if *workers >= 0 {
		poolSize = *workers
	}
	ctx := pipeline.With(context.Background(), cfg)

	d, err := loadDataset(*datasetPath, *refPath, *hypPath)
	if err != nil {
		log.Fatalf("load dataset: %v", err)
	}
	if d.Len() == 0 {
		log.Fatal("dataset is empty")
	}

	report, errs := metrics.EvaluateDataset(ctx, d, poolSize, *vocab)
	for _, err := range errs {
		log.Printf("evaluation error: %v", err)
	}

	cfg = pipeline.Active(ctx)
	fmt.Printf("examples: %d\n", report.Examples)
	fmt.Printf("pipeline: %s/%s/%s\n", cfg.Standardizer, cfg.Tokenizer, cfg.Normalizer)
	fmt.Printf("WER:  %s\n", report.Word)
	fmt.Printf("CER:  %s\n", report.Char)
	fmt.Printf("KWER: %s\n", report.Keyword)

	if *persist {
		results, err := collectResults(ctx, d, *vocab)
		if err != nil {
			log.Fatalf("collect results: %v", err)
		}
		runID, err := db.PersistRun(workspace.RunDBPath(root), cfg, report, results)
		if err != nil {
			log.Fatalf("persist run: %v", err)
		}
		fmt.Printf("run %d stored in %s\n", runID, workspace.RunDBPath(root))
	}
}

func ensureWorkspace(path string) (string, error) {
	if path != "" {
		return workspace.EnsureAt(path)
	}
	return workspace.EnsureDefault()
}

func pick(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}

func loadDataset(csvPath, refPath, hypPath string) (*dataset.Dataset, error) {
	switch {
	case csvPath != "":
		return dataset.LoadCSVFile(csvPath, nil)
	case refPath != "" && hypPath != "":
		ref, err := ingest.ReadTranscript(refPath)
		if err != nil {
			return nil, err
		}
		hyp, err := ingest.ReadTranscript(hypPath)
		if err != nil {
			return nil, err
		}
		d := dataset.New(nil)
		if err := d.Add(dataset.NewExample(ref.Name, ref.Text, hyp.Text)); err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("either -dataset or both -ref and -hyp are required")
	}
}

// collectResults re-scores per example; the alignments are already cached
// from the aggregate pass, so this is cheap.
func collectResults(ctx context.Context, d *dataset.Dataset, vocab string) ([]db.ExampleResult, error) {
	out := make([]db.ExampleResult, 0, d.Len())
	for _, ex := range d.Examples() {
		word, err := metrics.Word(ctx, ex)
		if err != nil {
			return nil, err
		}
		char, err := metrics.Char(ctx, ex)
		if err != nil {
			return nil, err
		}
		kw, err := metrics.Keywords(ctx, ex, vocab)
		if err != nil {
			return nil, err
		}
		out = append(out, db.ExampleResult{ExampleID: ex.ID, Word: word, Char: char, Keyword: kw})
	}
	return out, nil
}
