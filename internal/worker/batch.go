package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ppiankov/planets/internal/kernel"
)

// Loader loads and parses one kernel source (path or URL)
type Loader interface {
	Load(ctx context.Context, source string) (*kernel.Result, error)
}

// LoadJob parses one kernel of a batch
type LoadJob struct {
	Index  int
	Source string
	Loader Loader
}

// Execute executes the load job
func (j *LoadJob) Execute(ctx context.Context) Result {
	start := time.Now()
	res, err := j.Loader.Load(ctx, j.Source)
	return &LoadResult{
		Index:    j.Index,
		Source:   j.Source,
		Result:   res,
		Error:    err,
		Duration: time.Since(start),
	}
}

// LoadResult is the outcome of one LoadJob
type LoadResult struct {
	Index    int
	Source   string
	Result   *kernel.Result
	Error    error
	Duration time.Duration
}

// GetError returns the error from the load result
func (r *LoadResult) GetError() error {
	return r.Error
}

// BatchProcessor parses many kernels concurrently. One failing kernel never
// stops the others.
type BatchProcessor struct {
	loader      Loader
	concurrency int
	logger      *zap.Logger
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(loader Loader, concurrency int, logger *zap.Logger) *BatchProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchProcessor{
		loader:      loader,
		concurrency: concurrency,
		logger:      logger,
	}
}

// ProcessSources parses every source and returns the results in input order
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []string) []*LoadResult {
	if len(sources) == 0 {
		return []*LoadResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	out := make([]*LoadResult, len(sources))
	for i, src := range sources {
		job := &LoadJob{Index: i, Source: src, Loader: b.loader}
		if !pool.Submit(job) {
			out[i] = &LoadResult{Index: i, Source: src, Error: ctx.Err()}
		}
	}

	for _, r := range pool.Wait() {
		lr := r.(*LoadResult)
		out[lr.Index] = lr
	}

	for i, lr := range out {
		if lr == nil {
			// accepted but never run: the pool was cancelled first
			out[i] = &LoadResult{Index: i, Source: sources[i], Error: context.Canceled}
			continue
		}
		if lr.Error != nil {
			b.logger.Warn("kernel failed", zap.String("source", lr.Source), zap.Error(lr.Error))
		} else {
			b.logger.Debug("kernel parsed",
				zap.String("source", lr.Source),
				zap.Int("constants", lr.Result.Constants.Len()),
				zap.Duration("elapsed", lr.Duration))
		}
	}

	return out
}

// ProcessFile reads sources from a list file and processes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*LoadResult, error) {
	sources, err := ReadSourcesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	return b.ProcessSources(ctx, sources), nil
}

// Errors combines the failures of a batch, or nil if every kernel loaded
func Errors(results []*LoadResult) error {
	var errs error
	for _, r := range results {
		if r.Error != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", r.Source, r.Error))
		}
	}
	return errs
}

// ReadSourcesFromFile reads kernel paths or URLs from a file, one per line.
// Blank lines and # comments are skipped and duplicates dropped.
func ReadSourcesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}
