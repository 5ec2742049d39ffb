package checker

import (
	"context"
	"sync"
	"time"

	"github.com/khanhnv2901/secheaders/internal/scoring"
	"golang.org/x/time/rate"
)

// CheckResult represents the result of a single target check
type CheckResult struct {
	Target       string                  `json:"target"`
	URL          string                  `json:"url,omitempty"`
	CheckedAt    time.Time               `json:"checked_at"`
	Status       string                  `json:"status"`
	Analysis     *scoring.AnalysisResult `json:"analysis,omitempty"`
	ResponseTime float64                 `json:"response_time_ms,omitempty"`
	Error        string                  `json:"error,omitempty"`
}

// OK reports whether the check produced an analysis.
func (r CheckResult) OK() bool {
	return r.Status == StatusOK
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Checker is the interface that all check implementations must satisfy
type Checker interface {
	// Check performs the actual check logic for a single target
	Check(ctx context.Context, target string) CheckResult

	// Name returns the name of this checker (e.g., "check headers")
	Name() string
}

// AuditFunc is a callback invoked after every target completes
type AuditFunc func(target string, result CheckResult, duration float64) error

// Runner orchestrates the execution of checks with concurrency and rate limiting
type Runner struct {
	Concurrency int           // Maximum number of concurrent checks
	RateLimit   int           // Requests per second (global, 0 = unlimited)
	Timeout     time.Duration // Timeout for each check (0 = none)
}

// RunChecks executes checks against multiple targets using a worker pool.
// Results are returned in the order of targets.
func (r *Runner) RunChecks(ctx context.Context, targets []string, checker Checker, auditFn AuditFunc) []CheckResult {
	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	// Rate limiter
	limiter := rate.NewLimiter(rate.Inf, 0)
	if r.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.RateLimit), r.RateLimit)
	}

	// Worker pool
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	results := make([]CheckResult, len(targets))

	for i, target := range targets {
		wg.Add(1)
		go func(idx int, t string) {
			defer wg.Done()

			// Acquire semaphore
			sem <- struct{}{}
			defer func() { <-sem }()

			// Wait for rate limiter
			_ = limiter.Wait(ctx)

			start := time.Now()

			checkCtx := ctx
			if r.Timeout > 0 {
				var cancel context.CancelFunc
				checkCtx, cancel = context.WithTimeout(ctx, r.Timeout)
				defer cancel()
			}

			result := checker.Check(checkCtx, t)

			duration := time.Since(start).Seconds()

			if auditFn != nil {
				_ = auditFn(t, result, duration)
			}

			// each goroutine owns its slot
			results[idx] = result
		}(i, target)
	}

	wg.Wait()
	return results
}
