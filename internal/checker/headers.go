package checker

import (
	"context"
	"time"

	"github.com/khanhnv2901/secheaders/internal/headers"
	"github.com/khanhnv2901/secheaders/internal/scoring"
	"go.uber.org/zap"
)

// HeaderResolver is the acquisition capability HeaderChecker depends on.
type HeaderResolver interface {
	Resolve(ctx context.Context, rawURL string) (headers.HeaderMap, error)
}

// HeaderChecker resolves a target's response headers and scores them
// against a catalog.
type HeaderChecker struct {
	Resolver HeaderResolver
	Catalog  scoring.Catalog
	Logger   *zap.Logger
	// Timeout bounds one analysis when the caller's context has no deadline
	// of its own (0 = none).
	Timeout time.Duration
}

// Check performs the header analysis for target
func (h *HeaderChecker) Check(ctx context.Context, target string) CheckResult {
	result := CheckResult{
		Target:    target,
		CheckedAt: time.Now().UTC(),
	}
	logger := h.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	u, err := NormalizeTarget(target)
	if err != nil {
		result.Status = StatusError
		result.Error = err.Error()
		return result
	}
	result.URL = u

	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	start := time.Now()
	hdrs, err := h.Resolver.Resolve(ctx, u)
	result.ResponseTime = float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		logger.Warn("header resolution failed", zap.String("url", u), zap.Error(err))
		result.Status = StatusError
		result.Error = err.Error()
		return result
	}

	analysis := scoring.Score(hdrs, h.Catalog)
	result.Analysis = &analysis
	result.Status = StatusOK

	logger.Info("headers analyzed",
		zap.String("url", u),
		zap.Int("score", analysis.Score),
		zap.Stringer("tier", analysis.Tier),
		zap.Strings("missing", analysis.Missing()),
	)
	return result
}

// Name returns the name of this checker
func (h *HeaderChecker) Name() string {
	return "check headers"
}
