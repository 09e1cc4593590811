package analysis

import (
	"fmt"
	"strings"
)

var categoryFocus = map[Category]string{
	CategorySecurity:   "vulnerabilities, injection risks, secrets committed to the tree, unsafe input handling, and insecure dependencies",
	CategoryLicensing:  "declared licenses, license compatibility between dependencies, missing license files, and copyleft obligations",
	CategoryQuality:    "code smells, missing tests, error handling gaps, dead code, and maintainability risks",
	CategoryCost:       "inefficient algorithms, resource leaks, oversized dependencies, and infrastructure cost drivers",
	CategoryCompliance: "handling of personal data, audit logging, retention, and regulatory exposure (GDPR, SOC 2)",
}

// Prompt builds the analysis prompt for a category over a source digest.
// The response contract matches the Report schema.
func Prompt(category Category, digest string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a senior engineer performing a %s review of a codebase.\n", category)
	fmt.Fprintf(&b, "Focus on: %s.\n\n", categoryFocus[category])
	b.WriteString("Respond with a JSON object only, no prose, using this shape:\n")
	b.WriteString(`{"category": "` + string(category) + `", "summary": "...", "score": 0-100, "findings": [{"title": "...", "severity": "Critical|High|Medium|Low|Informational", "description": "...", "recommendation": "...", "file": "..."}]}`)
	b.WriteString("\n\nCodebase:\n\n")
	b.WriteString(digest)
	return b.String()
}

// OverviewPrompt builds the foundational documentation prompt. Its output is
// fed to the section prompts as shared context.
func OverviewPrompt(digest string) string {
	var b strings.Builder
	b.WriteString("Write a concise technical overview of the following codebase: its purpose, main components, and how they fit together. Plain markdown.\n\nCodebase:\n\n")
	b.WriteString(digest)
	return b.String()
}

// SectionPrompt builds a documentation section prompt, given the overview
// produced by the foundational job.
func SectionPrompt(section, overview, digest string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write the %q section of this project's documentation in markdown.\n\n", section)
	if overview != "" {
		b.WriteString("Project overview for context:\n\n")
		b.WriteString(overview)
		b.WriteString("\n\n")
	}
	b.WriteString("Codebase:\n\n")
	b.WriteString(digest)
	return b.String()
}
