package scoring

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tier is the qualitative bucket for a score.
type Tier int

const (
	TierCritical Tier = iota
	TierPoor
	TierModerate
	TierGood
	TierExcellent
)

// Lower bounds, inclusive.
const (
	excellentThreshold = 90
	goodThreshold      = 70
	moderateThreshold  = 50
	poorThreshold      = 30
)

// TierFor maps a 0-100 score to its tier.
func TierFor(score int) Tier {
	switch {
	case score >= excellentThreshold:
		return TierExcellent
	case score >= goodThreshold:
		return TierGood
	case score >= moderateThreshold:
		return TierModerate
	case score >= poorThreshold:
		return TierPoor
	default:
		return TierCritical
	}
}

var tierNames = map[Tier]string{
	TierCritical:  "Critical",
	TierPoor:      "Poor",
	TierModerate:  "Moderate",
	TierGood:      "Good",
	TierExcellent: "Excellent",
}

var tierLabels = map[Tier]string{
	TierCritical:  "Critical - Vulnerable",
	TierPoor:      "Poor Security",
	TierModerate:  "Moderate Security",
	TierGood:      "Good Security",
	TierExcellent: "Excellent Security",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// Label is the user-facing description shown next to the score badge.
func (t Tier) Label() string {
	if label, ok := tierLabels[t]; ok {
		return label
	}
	return t.String()
}

// ParseTier parses a tier name case-insensitively.
func ParseTier(s string) (Tier, error) {
	for tier, name := range tierNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return tier, nil
		}
	}
	return TierCritical, fmt.Errorf("unknown tier %q", s)
}

func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Tier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTier(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
