package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/planets/internal/cache"
	"github.com/ppiankov/planets/internal/kernel"
	"github.com/ppiankov/planets/internal/observability"
)

// IsRemote reports whether src is an http(s) URL rather than a file path
func IsRemote(src string) bool {
	lower := strings.ToLower(src)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// BaseName is the file name part of a path or URL, used to key batch results
func BaseName(src string) string {
	if IsRemote(src) {
		trimmed := src
		if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
			trimmed = trimmed[:i]
		}
		return path.Base(trimmed)
	}
	return filepath.Base(src)
}

// SourceReader returns the raw bytes of a kernel from disk, the cache or the
// network
type SourceReader struct {
	fetcher *Fetcher
	cache   cache.Cache
	logger  *zap.Logger
	metrics *observability.ParseCollector
}

// NewSourceReader creates a reader. A nil cache disables caching.
func NewSourceReader(fetcher *Fetcher, c cache.Cache, logger *zap.Logger, metrics *observability.ParseCollector) *SourceReader {
	if c == nil {
		c = cache.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SourceReader{
		fetcher: fetcher,
		cache:   c,
		logger:  logger,
		metrics: metrics,
	}
}

// Read returns the kernel bytes of src. expectedSHA, if set, is checked for
// downloaded and cached kernels.
func (r *SourceReader) Read(ctx context.Context, src, expectedSHA string) ([]byte, error) {
	if !IsRemote(src) {
		data, err := os.ReadFile(src)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %w", kernel.ErrNotFound, err)
			}
			return nil, fmt.Errorf("read kernel: %w", err)
		}
		r.metrics.ObserveLoad(observability.OriginFile)
		return data, nil
	}

	key := cache.KernelKey(src, expectedSHA)
	if data, ok := r.cache.Get(key); ok {
		if err := Verify(data, expectedSHA); err == nil {
			r.logger.Debug("kernel cache hit", zap.String("source", src))
			r.metrics.ObserveLoad(observability.OriginCache)
			return data, nil
		}
		r.logger.Warn("cached kernel failed checksum, refetching", zap.String("source", src))
		_ = r.cache.Delete(key)
	}

	r.logger.Debug("downloading kernel", zap.String("source", src))
	result, err := r.fetcher.FetchWithRetry(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", src, err)
	}
	if err := Verify(result.Data, expectedSHA); err != nil {
		return nil, fmt.Errorf("download %s: %w", src, err)
	}
	r.metrics.ObserveLoad(observability.OriginNetwork)
	r.logger.Debug("kernel downloaded",
		zap.String("source", src),
		zap.String("final_url", result.FinalURL),
		zap.Int("bytes", len(result.Data)),
		zap.String("sha256", result.SHA256))

	if err := r.cache.Set(key, result.Data, 0); err != nil {
		r.logger.Warn("cache write failed", zap.String("source", src), zap.Error(err))
	}
	return result.Data, nil
}
