package cmd

import (
	"errors"
	"fmt"

	"github.com/khanhnv2901/secheaders/internal/scoring"
)

const (
	exitGeneric        = 1
	exitConfig         = 2
	exitAnalysisFailed = 3
)

// AnalysisFailedError signals that one or more targets could not be analyzed.
type AnalysisFailedError struct {
	Failed int
	Total  int
}

func (e *AnalysisFailedError) Error() string {
	if e.Total == 1 {
		return "analysis failed"
	}
	return fmt.Sprintf("%d of %d targets could not be analyzed", e.Failed, e.Total)
}

func exitCode(err error) int {
	var cfgErr *scoring.ConfigError
	var failed *AnalysisFailedError
	switch {
	case errors.As(err, &cfgErr):
		return exitConfig
	case errors.As(err, &failed):
		return exitAnalysisFailed
	default:
		return exitGeneric
	}
}
