package cli

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// buildReporter turns builder and HTTP events into debug logs and spinner
// progress.
type buildReporter struct {
	logger  *log.Logger
	spinner *Spinner
	fetched atomic.Int64
}

func (r *buildReporter) OnBuildStart(_ context.Context, root string) {
	r.fetched.Store(0)
	r.logger.Debug("Build started", "root", root)
}

func (r *buildReporter) OnModuleFetched(_ context.Context, module string, requirements int) {
	n := r.fetched.Add(1)
	r.logger.Debug("Fetched", "module", module, "requirements", requirements)
	if r.spinner != nil {
		r.spinner.SetDetail(fmt.Sprintf("%d modules", n))
	}
}

func (r *buildReporter) OnBuildComplete(_ context.Context, root string, nodeCount int, duration time.Duration, err error) {
	if err != nil {
		r.logger.Debug("Build failed", "root", root, "after", duration.Round(time.Millisecond), "err", err)
		return
	}
	r.logger.Debug("Build complete", "root", root, "modules", nodeCount, "took", duration.Round(time.Millisecond))
}

func (r *buildReporter) OnRequest(_ context.Context, method, host, path string) {
	r.logger.Debug("Request", "method", method, "host", host, "path", path)
}

func (r *buildReporter) OnResponse(_ context.Context, method, host, path string, statusCode int, duration time.Duration) {
	r.logger.Debug("Response", "status", statusCode, "host", host, "path", path, "took", duration.Round(time.Millisecond))
}

func (r *buildReporter) OnError(_ context.Context, method, host, path string, err error) {
	r.logger.Debug("Request failed", "method", method, "host", host, "path", path, "err", err)
}

func (r *buildReporter) OnCacheHit(_ context.Context, key string) {
	r.logger.Debug("Cache hit", "key", key)
}

func (r *buildReporter) OnCacheMiss(_ context.Context, key string) {
	r.logger.Debug("Cache miss", "key", key)
}

func (r *buildReporter) OnCacheSet(_ context.Context, key string, size int) {
	r.logger.Debug("Cached", "key", key, "bytes", size)
}
