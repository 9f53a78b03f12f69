package db

import (
	"database/sql"
	"fmt"
	"time"

	"speechscore/internal/metrics"
	"speechscore/internal/pipeline"
)

// ExampleResult is one example's scores within a run.
type ExampleResult struct {
	ExampleID string
	Word      metrics.Score
	Char      metrics.Score
	Keyword   metrics.Score
}

// PersistRun stores one evaluation run and its per-example results, and
// returns the new run id.
func PersistRun(dbPath string, cfg pipeline.Config, report metrics.Report, results []ExampleResult) (int64, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	tx, err := conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs(created_at, standardizer, tokenizer, normalizer, examples, wer, cer, kwer) VALUES(?,?,?,?,?,?,?,?)`,
		time.Now().UTC().Format(time.RFC3339),
		cfg.Standardizer,
		cfg.Tokenizer,
		cfg.Normalizer,
		report.Examples,
		report.WER(),
		report.CER(),
		report.KWER(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run last insert id: %w", err)
	}

	for _, r := range results {
		if _, err := tx.Exec(
			`INSERT INTO results(run_id, example_id, word_errors, word_total, char_errors, char_total, keyword_errors, keyword_total) VALUES(?,?,?,?,?,?,?,?)`,
			runID,
			r.ExampleID,
			r.Word.Errors,
			r.Word.Total,
			r.Char.Errors,
			r.Char.Total,
			r.Keyword.Errors,
			r.Keyword.Total,
		); err != nil {
			return 0, fmt.Errorf("insert result for %q: %w", r.ExampleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return runID, nil
}

// RunSummary is one persisted run as listed by ListRuns.
type RunSummary struct {
	ID        int64
	CreatedAt string
	Config    pipeline.Config
	Examples  int
	WER       float64
	CER       float64
	KWER      float64
}

// ListRuns returns persisted runs, newest first.
func ListRuns(dbPath string) ([]RunSummary, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.Query(`SELECT id, created_at, standardizer, tokenizer, normalizer, examples, wer, cer, kwer FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Config.Standardizer, &r.Config.Tokenizer, &r.Config.Normalizer, &r.Examples, &r.WER, &r.CER, &r.KWER); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func CountRows(dbPath, table string) (int, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	return countRowsConn(conn, table)
}

func countRowsConn(conn *sql.DB, table string) (int, error) {
	row := conn.QueryRow(`SELECT COUNT(*) FROM ` + table)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("scan count: %w", err)
	}
	return count, nil
}
