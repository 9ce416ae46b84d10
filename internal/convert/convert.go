package convert

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/crossframe-dev/reroute/internal/analyzer"
	"github.com/crossframe-dev/reroute/internal/config"
	"github.com/crossframe-dev/reroute/internal/parser"
	"github.com/crossframe-dev/reroute/internal/rewrite"
)

// batchSize caps how many files are transformed with overlapping
// execution; batches themselves run strictly sequentially.
const batchSize = 5

// SourceFile is one input module: its project-relative path and raw
// content.
type SourceFile struct {
	Path    string
	Content []byte
}

// FileMapping records where one converted module lands under the target
// layout.
type FileMapping struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
	Code   string `json:"-"`
}

// FileError is one isolated per-file failure.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// BatchResult aggregates one conversion run. ModifiedCount always equals
// len(TransformedFiles), and TransformationRate is 0 when no files were
// given.
type BatchResult struct {
	TransformedFiles   []FileMapping
	ModifiedCount      int
	TransformationRate float64
	Details            []string
	Errors             []FileError
}

// BatchFatalError wraps a failure outside per-file isolation: the
// batching loop itself faulted and remaining batches were abandoned.
type BatchFatalError struct {
	Err error
}

func (e *BatchFatalError) Error() string {
	return fmt.Sprintf("batch conversion aborted: %v", e.Err)
}

func (e *BatchFatalError) Unwrap() error {
	return e.Err
}

// ProgressReporter receives per-file progress during a batch run. All
// callbacks fire on the control goroutine.
type ProgressReporter interface {
	OnBatchStart(totalFiles int)
	OnFileDone(path string)
	OnBatchComplete(result *BatchResult)
}

type noopReporter struct{}

func (noopReporter) OnBatchStart(int)             {}
func (noopReporter) OnFileDone(string)            {}
func (noopReporter) OnBatchComplete(*BatchResult) {}

// Converter runs batch conversions. The parse cache is shared across
// runs, so watch-mode reconversions of unchanged files skip the parse.
type Converter struct {
	opts     config.ConversionOptions
	parser   *parser.Parser
	ignored  ignoreMatcher
	reporter ProgressReporter
}

// New creates a batch converter for one options snapshot.
func New(opts config.ConversionOptions, ignorePatterns []string) (*Converter, error) {
	return NewWithReporter(opts, ignorePatterns, nil)
}

// NewWithReporter creates a batch converter with a progress reporter. A
// nil reporter disables progress reporting.
func NewWithReporter(opts config.ConversionOptions, ignorePatterns []string, reporter ProgressReporter) (*Converter, error) {
	p, err := parser.New()
	if err != nil {
		return nil, err
	}
	matcher, err := newIgnoreMatcher(ignorePatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid ignore pattern: %w", err)
	}
	if reporter == nil {
		reporter = noopReporter{}
	}
	return &Converter{opts: opts, parser: p, ignored: matcher, reporter: reporter}, nil
}

// ConvertFiles is the orchestrator entry point for external callers that
// need no converter reuse.
func ConvertFiles(ctx context.Context, files []SourceFile, opts config.ConversionOptions) (*BatchResult, error) {
	c, err := New(opts, nil)
	if err != nil {
		return nil, &BatchFatalError{Err: err}
	}
	return c.Files(ctx, files)
}

// fileOutcome is the private result of one file task. Tasks never touch
// shared state; the control goroutine aggregates outcomes after each
// batch settles.
type fileOutcome struct {
	file      SourceFile
	class     Classification
	result    rewrite.TransformResult
	err       error
	attempted bool
}

// Files converts the given files in order, isolating per-file failures.
// The returned error is non-nil only for a *BatchFatalError; every
// per-file failure is reported through BatchResult.Errors instead.
func (c *Converter) Files(ctx context.Context, files []SourceFile) (result *BatchResult, fatal error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			fatal = &BatchFatalError{Err: fmt.Errorf("panic in batching loop: %v", r)}
		}
	}()

	result = &BatchResult{}
	dests := map[string]string{} // destination path → first source claiming it
	c.reporter.OnBatchStart(len(files))

	for start := 0; start < len(files); start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, &BatchFatalError{Err: err}
		}

		end := start + batchSize
		if end > len(files) {
			end = len(files)
		}
		batch := files[start:end]

		outcomes := make([]fileOutcome, len(batch))
		var wg sync.WaitGroup
		for i, file := range batch {
			wg.Add(1)
			go func(i int, file SourceFile) {
				defer wg.Done()
				outcomes[i] = c.processFile(file)
			}(i, file)
		}
		wg.Wait()

		// Back on the control goroutine: fold this batch's outcomes into
		// the aggregate in input order.
		for _, outcome := range outcomes {
			c.aggregate(result, dests, outcome)
			c.reporter.OnFileDone(outcome.file.Path)
		}
	}

	if total := len(files); total > 0 {
		result.TransformationRate = float64(result.ModifiedCount) / float64(total)
	}
	c.reporter.OnBatchComplete(result)
	return result, nil
}

// processFile runs the per-file pipeline. Panics are caught at this task
// boundary and surfaced as isolated file errors.
func (c *Converter) processFile(file SourceFile) (outcome fileOutcome) {
	outcome = fileOutcome{file: file, class: c.Classify(file.Path)}

	defer func() {
		if r := recover(); r != nil {
			outcome.err = fmt.Errorf("panic: %v", r)
		}
	}()

	switch outcome.class {
	case ClassSkip:
		return outcome
	case ClassPackageJSON:
		outcome.attempted = true
		outcome.result, outcome.err = rewriteDependencies(file.Content)
		return outcome
	}

	outcome.attempted = true
	tree, err := c.parser.Parse(file.Content, file.Path, parser.OptionsForFile(file.Path))
	if err != nil {
		outcome.result = rewrite.TransformResult{Code: string(file.Content)}
		outcome.err = err
		return outcome
	}

	facts := analyzer.Analyze(tree)
	outcome.result = rewrite.TransformParsed(tree, facts, c.opts)
	return outcome
}

// aggregate folds one settled outcome into the batch result. Runs only on
// the control goroutine.
func (c *Converter) aggregate(result *BatchResult, dests map[string]string, outcome fileOutcome) {
	path := outcome.file.Path

	if outcome.class == ClassSkip {
		result.Details = append(result.Details, fmt.Sprintf("Skipped %s", path))
		return
	}

	if outcome.err != nil {
		log.Printf("Warning: failed to convert %s: %v\n", path, outcome.err)
		result.Errors = append(result.Errors, FileError{Path: path, Err: outcome.err})
		result.Details = append(result.Details, fmt.Sprintf("Failed %s: %v", path, outcome.err))
		return
	}

	for _, change := range outcome.result.Changes {
		result.Details = append(result.Details, fmt.Sprintf("%s: %s", path, change))
	}
	for _, warning := range outcome.result.Warnings {
		result.Details = append(result.Details, fmt.Sprintf("%s: warning: %s", path, warning))
	}

	if !outcome.result.Modified() {
		result.Details = append(result.Details, fmt.Sprintf("Unchanged %s", path))
		return
	}

	dest := c.DestPath(path, outcome.class)
	if first, taken := dests[dest]; taken {
		suffixed := suffixDest(dest, dests)
		result.Details = append(result.Details, fmt.Sprintf(
			"%s: warning: destination %s already produced by %s; writing %s instead", path, dest, first, suffixed))
		dest = suffixed
	}
	dests[dest] = path

	result.TransformedFiles = append(result.TransformedFiles, FileMapping{
		Source: path,
		Dest:   dest,
		Code:   outcome.result.Code,
	})
	result.ModifiedCount++
}
