package resilience

import "strings"

// Severity is the closed set of finding severities.
type Severity string

const (
	SeverityCritical      Severity = "Critical"
	SeverityHigh          Severity = "High"
	SeverityMedium        Severity = "Medium"
	SeverityLow           Severity = "Low"
	SeverityInformational Severity = "Informational"
)

// NormalizeSeverity maps freeform severity text onto the closed severity set.
// Decorative symbols (emoji, punctuation) are stripped and matching is by
// substring containment, so "🚨 Critical", "critical", and "CRITICAL!!" all
// normalize identically. Unrecognized input defaults to Informational.
func NormalizeSeverity(raw string) Severity {
	var b strings.Builder
	for _, r := range raw {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.ToLower(b.String())

	switch {
	case strings.Contains(cleaned, "critical"):
		return SeverityCritical
	case strings.Contains(cleaned, "high"):
		return SeverityHigh
	case strings.Contains(cleaned, "moderate"), strings.Contains(cleaned, "medium"):
		return SeverityMedium
	case strings.Contains(cleaned, "minimal"), strings.Contains(cleaned, "low"):
		return SeverityLow
	case strings.Contains(cleaned, "info"):
		return SeverityInformational
	default:
		return SeverityInformational
	}
}
