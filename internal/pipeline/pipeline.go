// Package pipeline loads kernels from files or URLs, parses them and renders
// the results
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/planets/internal/body"
	"github.com/ppiankov/planets/internal/cache"
	"github.com/ppiankov/planets/internal/kernel"
	"github.com/ppiankov/planets/internal/model"
	"github.com/ppiankov/planets/internal/observability"
	"github.com/ppiankov/planets/internal/util"
	"github.com/ppiankov/planets/internal/worker"
)

// Pipeline turns a kernel source into parsed constants
type Pipeline struct {
	parser  *kernel.Parser
	reader  *SourceReader
	logger  *zap.Logger
	metrics *observability.ParseCollector
	workers int

	mu        sync.RWMutex
	checksums map[string]string
}

// ParserOptions converts the kernel settings into parser options
func ParserOptions(cfg model.KernelConfig) (kernel.Options, error) {
	opts := kernel.DefaultOptions()

	if cfg.Mode != "" {
		mode, err := kernel.ParseMode(cfg.Mode)
		if err != nil {
			return opts, err
		}
		opts.Mode = mode
	}
	if cfg.Grammar != "" {
		grammar, err := kernel.ParseGrammar(cfg.Grammar)
		if err != nil {
			return opts, err
		}
		opts.Grammar = grammar
	}
	if cfg.BeginMarker != "" {
		opts.Markers.Begin = cfg.BeginMarker
	}
	if cfg.EndMarker != "" {
		opts.Markers.End = cfg.EndMarker
	}
	return opts, nil
}

// New builds a pipeline from cfg. logger and metrics may be nil.
func New(cfg *model.Config, logger *zap.Logger, metrics *observability.ParseCollector) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts, err := ParserOptions(cfg.Kernel)
	if err != nil {
		return nil, fmt.Errorf("kernel options: %w", err)
	}

	fetcher := NewFetcher(cfg.HTTP)
	fetcher.SetLimiter(worker.NewLimiterFromConfig(cfg.RateLimiting))
	if cfg.HTTP.RespectRobots {
		fetcher.SetRobots(util.NewRobotsChecker(fetcher.Client(), cfg.HTTP.UserAgent, cfg.HTTP.Timeout))
	}

	p := &Pipeline{
		parser:    kernel.NewParser(opts),
		reader:    NewSourceReader(fetcher, cache.New(cfg.Cache), logger, metrics),
		logger:    logger,
		metrics:   metrics,
		workers:   cfg.Concurrency.Workers,
		checksums: make(map[string]string),
	}
	if cfg.Kernel.Source != "" && cfg.Kernel.SHA256 != "" {
		p.Pin(cfg.Kernel.Source, cfg.Kernel.SHA256)
	}
	return p, nil
}

// Pin records the expected sha256 of a remote source
func (p *Pipeline) Pin(src, sha256Hex string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checksums[src] = sha256Hex
}

func (p *Pipeline) checksum(src string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.checksums[src]
}

// Parser is the kernel parser the pipeline uses
func (p *Pipeline) Parser() *kernel.Parser {
	return p.parser
}

// Load reads and parses one kernel source
func (p *Pipeline) Load(ctx context.Context, src string) (*kernel.Result, error) {
	data, err := p.reader.Read(ctx, src, p.checksum(src))
	if err != nil {
		p.metrics.ObserveParse(0, 0, 0, err)
		return nil, err
	}

	start := time.Now()
	res, err := p.parser.ParseString(string(data), src)
	elapsed := time.Since(start)
	if err != nil {
		p.metrics.ObserveParse(elapsed, 0, 0, err)
		return nil, fmt.Errorf("parse %s: %w", src, err)
	}

	p.metrics.ObserveParse(elapsed, res.Segments, len(res.Constants.Assignments()), nil)
	p.logger.Debug("kernel parsed",
		zap.String("source", src),
		zap.Int("segments", res.Segments),
		zap.Int("constants", res.Constants.Len()),
		zap.Duration("elapsed", elapsed))

	return res, nil
}

// Resolver loads src and builds a radius resolver from its radii
func (p *Pipeline) Resolver(ctx context.Context, src string) (*body.Resolver, error) {
	res, err := p.Load(ctx, src)
	if err != nil {
		return nil, err
	}

	resolver, err := body.NewResolverFromConstants(res.Constants)
	if err != nil {
		// malformed radii entries are skipped, the rest stay usable
		p.logger.Warn("some radii entries were skipped", zap.String("source", src), zap.Error(err))
	}
	return resolver, nil
}

// ParseMultiple parses every source concurrently and keys the successes by
// base file name. Failures are combined into the returned error; the map
// still holds every kernel that parsed.
func (p *Pipeline) ParseMultiple(ctx context.Context, sources []string) (map[string]*kernel.Result, error) {
	results := worker.NewBatchProcessor(p, p.workers, p.logger).ProcessSources(ctx, sources)

	out := make(map[string]*kernel.Result, len(results))
	for _, r := range results {
		if r.Error != nil {
			continue
		}
		out[BaseName(r.Source)] = r.Result
	}
	return out, worker.Errors(results)
}

// Batch parses sources concurrently and returns one result per source in
// input order
func (p *Pipeline) Batch(ctx context.Context, sources []string, workers int) []*worker.LoadResult {
	if workers <= 0 {
		workers = p.workers
	}
	return worker.NewBatchProcessor(p, workers, p.logger).ProcessSources(ctx, sources)
}

var _ worker.Loader = (*Pipeline)(nil)
