package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/khanhnv2901/secheaders/internal/checker"
	"github.com/khanhnv2901/secheaders/internal/scoring"
)

// renderReport writes the human-readable breakdown for one target.
func renderReport(w io.Writer, result checker.CheckResult, displayLimit int) {
	if !result.OK() || result.Analysis == nil {
		fmt.Fprintf(w, "%s %s\n", colorError("✗"), result.Target)
		fmt.Fprintf(w, "  %s %s\n\n", colorError("error:"), result.Error)
		return
	}

	a := result.Analysis
	fmt.Fprintf(w, "%s %s\n", colorInfo("→"), result.URL)
	badge := fmt.Sprintf(" %d ", a.Score)
	fmt.Fprintf(w, "  Score: %s  %s  %s\n\n",
		formatTier(a.Tier, badge),
		formatTier(a.Tier, a.Tier.Label()),
		colorMuted(fmt.Sprintf("(%d/%d points)", a.RawScore, a.MaxScore)),
	)

	for _, h := range a.Headers {
		renderHeader(w, h, displayLimit)
	}
	fmt.Fprintln(w)
}

func renderHeader(w io.Writer, h scoring.HeaderResult, displayLimit int) {
	if h.Present {
		fmt.Fprintf(w, "  ✅ %s %s\n", h.Spec.DisplayName, colorMuted(fmt.Sprintf("+%d", h.Spec.Weight)))
		fmt.Fprintf(w, "     %s\n", colorSuccess("✓ "+h.Spec.Description))
		fmt.Fprintf(w, "     %s\n", colorMuted(h.DisplayValue(displayLimit)))
		return
	}
	fmt.Fprintf(w, "  ❌ %s %s\n", h.Spec.DisplayName, colorMuted(fmt.Sprintf("0/%d", h.Spec.Weight)))
	fmt.Fprintf(w, "     %s\n", colorWarn("⚠️ Missing - "+h.Spec.Description))
}

// renderSummary writes one line per target followed by totals.
func renderSummary(w io.Writer, results []checker.CheckResult) {
	ok, failed := summarizeStatuses(results)
	fmt.Fprintln(w, colorInfo("Summary:"))
	for _, r := range results {
		if r.OK() && r.Analysis != nil {
			fmt.Fprintf(w, "  %-40s %s %s\n", r.Target,
				formatTier(r.Analysis.Tier, fmt.Sprintf("%3d", r.Analysis.Score)),
				r.Analysis.Tier.String())
			continue
		}
		fmt.Fprintf(w, "  %-40s %s\n", r.Target, formatStatusWithColor(r.Status))
	}
	fmt.Fprintf(w, "%s %d analyzed, %d failed\n", colorInfo("Total:"), ok, failed)
}

func summarizeStatuses(results []checker.CheckResult) (okCount, errorCount int) {
	for _, r := range results {
		if r.OK() {
			okCount++
		} else {
			errorCount++
		}
	}
	return okCount, errorCount
}

func writeJSON(w io.Writer, payload interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
