package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/khanhnv2901/secheaders/internal/checker"
	"github.com/khanhnv2901/secheaders/internal/headers"
	"github.com/khanhnv2901/secheaders/internal/scoring"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// setupTestAppContext returns an AppContext with the built-in catalog and
// default configuration, with color output disabled for the test.
func setupTestAppContext(t *testing.T) *AppContext {
	t.Helper()

	original := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		color.NoColor = original
	})

	return &AppContext{
		Logger:  zaptest.NewLogger(t).Sugar(),
		Catalog: scoring.DefaultCatalog(),
		Config:  newCLIConfig(),
	}
}

// fakeResolver serves canned header maps keyed by normalized URL.
type fakeResolver struct {
	responses map[string]headers.HeaderMap
	err       error
}

func (f *fakeResolver) Resolve(ctx context.Context, rawURL string) (headers.HeaderMap, error) {
	if h, ok := f.responses[rawURL]; ok {
		return h, nil
	}
	if f.err != nil {
		return nil, f.err
	}
	return nil, &headers.FetchError{URL: rawURL, Err: context.DeadlineExceeded}
}

// useResolver swaps the resolver factory for the duration of the test.
func useResolver(t *testing.T, r checker.HeaderResolver) {
	t.Helper()
	original := newResolver
	newResolver = func(time.Duration, *zap.Logger) checker.HeaderResolver {
		return r
	}
	t.Cleanup(func() {
		newResolver = original
	})
}
