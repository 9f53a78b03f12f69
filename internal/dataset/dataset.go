package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"speechscore/internal/pipeline"
)

// Dataset owns a pipeline registry and the examples bound to it.
type Dataset struct {
	reg *pipeline.Registry

	mu       sync.Mutex
	examples []*Example
}

// New returns an empty dataset. A nil registry gets the built-in one.
func New(reg *pipeline.Registry) *Dataset {
	if reg == nil {
		reg = pipeline.NewRegistry()
	}
	return &Dataset{reg: reg}
}

func (d *Dataset) Registry() *pipeline.Registry { return d.reg }

// Add binds the example's texts to the dataset registry and appends it.
// An example can belong to at most one dataset.
func (d *Dataset) Add(ex *Example) error {
	if err := ex.bind(d.reg); err != nil {
		return fmt.Errorf("add example %q: %w", ex.ID, err)
	}
	d.mu.Lock()
	d.examples = append(d.examples, ex)
	d.mu.Unlock()
	return nil
}

func (d *Dataset) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.examples)
}

func (d *Dataset) At(i int) *Example {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.examples[i]
}

// Examples returns a snapshot of the example list.
func (d *Dataset) Examples() []*Example {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Example, len(d.examples))
	copy(out, d.examples)
	return out
}

// EvalFunc is applied to one example during Evaluate.
type EvalFunc func(ctx context.Context, ex *Example) error

// Evaluate applies fn to every example using a fixed pool of workers and
// returns the errors that occurred, in completion order. workers <= 0 means
// one worker per CPU.
func (d *Dataset) Evaluate(ctx context.Context, workers int, fn EvalFunc) []error {
	examples := d.Examples()
	if len(examples) == 0 || fn == nil {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers < 1 {
			workers = 1
		}
	}

	jobs := make(chan *Example)
	errs := make(chan error, len(examples))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ex := range jobs {
				if err := fn(ctx, ex); err != nil {
					errs <- fmt.Errorf("example %q: %w", ex.ID, err)
				}
			}
		}()
	}

	for _, ex := range examples {
		jobs <- ex
	}
	close(jobs)
	wg.Wait()
	close(errs)

	out := make([]error, 0, len(errs))
	for err := range errs {
		out = append(out, err)
	}
	return out
}

// CSV column names. reference and hypothesis are required; id and keywords
// (semicolon-separated, stored under the "default" vocabulary) are optional.
const (
	colID         = "id"
	colReference  = "reference"
	colHypothesis = "hypothesis"
	colKeywords   = "keywords"
)

// LoadCSV reads a header-driven CSV dataset.
func LoadCSV(r io.Reader, reg *pipeline.Registry) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	refCol, ok := cols[colReference]
	if !ok {
		return nil, fmt.Errorf("csv header missing %q column", colReference)
	}
	hypCol, ok := cols[colHypothesis]
	if !ok {
		return nil, fmt.Errorf("csv header missing %q column", colHypothesis)
	}

	d := New(reg)
	row := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", row+2, err)
		}
		row++

		id := fmt.Sprintf("row-%d", row)
		if idCol, ok := cols[colID]; ok && record[idCol] != "" {
			id = record[idCol]
		}
		ex := NewExample(id, record[refCol], record[hypCol])
		if kwCol, ok := cols[colKeywords]; ok && record[kwCol] != "" {
			phrases := strings.Split(record[kwCol], ";")
			for i := range phrases {
				phrases[i] = strings.TrimSpace(phrases[i])
			}
			if _, err := ex.AddKeywords(pipeline.DefaultName, phrases...); err != nil {
				return nil, fmt.Errorf("example %q keywords: %w", id, err)
			}
		}
		if err := d.Add(ex); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// LoadCSVFile is LoadCSV over a file path.
func LoadCSVFile(path string, reg *pipeline.Registry) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()
	return LoadCSV(f, reg)
}
