package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tav/pkg/observability"
)

// debugHooks logs observability events at debug level.
type debugHooks struct {
	logger *log.Logger
}

func installDebugHooks(l *log.Logger) {
	h := &debugHooks{logger: l}
	observability.SetSuiteHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h *debugHooks) OnResolveStart(_ context.Context, pkg string) {
	h.logger.Debug("resolve start", "package", pkg)
}

func (h *debugHooks) OnResolveComplete(_ context.Context, pkg string, versions int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("resolve failed", "package", pkg, "err", err, "duration", d)
		return
	}
	h.logger.Debug("resolve done", "package", pkg, "versions", versions, "duration", d)
}

func (h *debugHooks) OnInstallStart(_ context.Context, test string) {
	h.logger.Debug("install start", "test", test)
}

func (h *debugHooks) OnInstallComplete(_ context.Context, test string, d time.Duration, err error) {
	h.logger.Debug("install done", "test", test, "duration", d, "err", err)
}

func (h *debugHooks) OnRunStart(_ context.Context, test string) {
	h.logger.Debug("run start", "test", test)
}

func (h *debugHooks) OnRunComplete(_ context.Context, test, outcome string, d time.Duration) {
	h.logger.Debug("run done", "test", test, "outcome", outcome, "duration", d)
}

func (h *debugHooks) OnCacheHit(_ context.Context, namespace string) {
	h.logger.Debug("cache hit", "namespace", namespace)
}

func (h *debugHooks) OnCacheMiss(_ context.Context, namespace string) {
	h.logger.Debug("cache miss", "namespace", namespace)
}

func (h *debugHooks) OnCacheSet(_ context.Context, namespace string, size int) {
	h.logger.Debug("cache set", "namespace", namespace, "bytes", size)
}

func (h *debugHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *debugHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "host", host, "path", path, "status", status, "duration", d)
}

func (h *debugHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "host", host, "path", path, "err", err)
}
