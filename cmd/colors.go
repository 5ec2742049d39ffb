package cmd

import (
	"strings"

	"github.com/fatih/color"
	"github.com/khanhnv2901/secheaders/internal/scoring"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
	colorMuted   = color.New(color.Faint).SprintFunc()
)

var tierColors = map[scoring.Tier]*color.Color{
	scoring.TierExcellent: color.New(color.FgHiGreen, color.Bold),
	scoring.TierGood:      color.New(color.FgGreen, color.Bold),
	scoring.TierModerate:  color.New(color.FgYellow, color.Bold),
	scoring.TierPoor:      color.New(color.FgHiRed, color.Bold),
	scoring.TierCritical:  color.New(color.FgRed, color.Bold),
}

func formatStatusWithColor(status string) string {
	switch strings.ToLower(status) {
	case "ok", "success", "pass":
		return colorSuccess(status)
	case "error", "fail", "failed":
		return colorError(status)
	default:
		return status
	}
}

// formatTier renders text in the badge color of tier.
func formatTier(tier scoring.Tier, text string) string {
	c, ok := tierColors[tier]
	if !ok {
		return text
	}
	return c.Sprint(text)
}
