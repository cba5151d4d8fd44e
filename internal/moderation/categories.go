// Package moderation classifies text against a fixed content-safety
// taxonomy using a lightweight model call, and maps flagged categories to a
// risk level the chat pipeline can act on.
package moderation

import (
	"sort"
	"strings"
)

// Risk is the aggregated severity of a moderation verdict.
type Risk string

const (
	RiskNone     Risk = "none"
	RiskMedium   Risk = "medium"
	RiskHigh     Risk = "high"
	RiskCritical Risk = "critical"

	// RiskUnknown marks a verdict produced while the classifier was
	// unavailable. The pipeline treats it as allow.
	RiskUnknown Risk = "unknown"
)

// categoryNames maps taxonomy codes to human-readable names, used in logs
// and refusal reasons.
var categoryNames = map[string]string{
	"S1":  "Violent Crimes",
	"S2":  "Non-Violent Crimes",
	"S3":  "Sex-Related Crimes",
	"S4":  "Child Sexual Exploitation",
	"S5":  "Defamation",
	"S6":  "Specialized Advice",
	"S7":  "Privacy",
	"S8":  "Intellectual Property",
	"S9":  "Indiscriminate Weapons",
	"S10": "Hate",
	"S11": "Suicide & Self-Harm",
	"S12": "Sexual Content",
	"S13": "Elections",
	"S14": "Code Interpreter Abuse",
}

var (
	criticalCategories = map[string]bool{
		"S1": true, "S3": true, "S4": true, "S9": true, "S11": true,
	}
	highCategories = map[string]bool{
		"S2": true, "S5": true, "S10": true,
	}
)

// CategoryName returns the display name for a taxonomy code, or the code
// itself when it is not part of the taxonomy.
func CategoryName(code string) string {
	if name, ok := categoryNames[code]; ok {
		return name
	}
	return code
}

// riskFor aggregates flagged category codes into a single risk level: the
// highest tier any code belongs to, or medium for codes outside the two
// named tiers.
func riskFor(codes []string) Risk {
	if len(codes) == 0 {
		return RiskNone
	}
	risk := RiskMedium
	for _, c := range codes {
		switch {
		case criticalCategories[c]:
			return RiskCritical
		case highCategories[c]:
			risk = RiskHigh
		}
	}
	return risk
}

// parseCategories extracts valid taxonomy codes from a comma-separated
// classifier line, deduplicated and sorted.
func parseCategories(line string) []string {
	seen := map[string]bool{}
	for _, part := range strings.Split(line, ",") {
		code := strings.ToUpper(strings.TrimSpace(part))
		if _, ok := categoryNames[code]; ok {
			seen[code] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	codes := make([]string, 0, len(seen))
	for c := range seen {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool {
		if len(codes[i]) != len(codes[j]) {
			return len(codes[i]) < len(codes[j])
		}
		return codes[i] < codes[j]
	})
	return codes
}
