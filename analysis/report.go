// Package analysis defines the report shapes produced by the analysis
// categories and the prompts that elicit them.
package analysis

import (
	"github.com/codelens-ai/codelens/resilience"
)

// Category identifies one analysis run.
type Category string

const (
	CategorySecurity   Category = "security"
	CategoryLicensing  Category = "licensing"
	CategoryQuality    Category = "quality"
	CategoryCost       Category = "cost"
	CategoryCompliance Category = "compliance"
)

// Categories lists every analysis category in presentation order.
var Categories = []Category{
	CategorySecurity,
	CategoryLicensing,
	CategoryQuality,
	CategoryCost,
	CategoryCompliance,
}

// Valid reports whether c names a known category.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Finding is a single issue reported by an analysis category.
type Finding struct {
	Title          string              `json:"title" validate:"required"`
	Severity       resilience.Severity `json:"severity" validate:"required"`
	Description    string              `json:"description" validate:"required"`
	Recommendation string              `json:"recommendation"`
	File           string              `json:"file"`
}

// Report is the structured payload an analysis job must return.
type Report struct {
	Category Category  `json:"category"`
	Summary  string    `json:"summary" validate:"required"`
	Findings []Finding `json:"findings"`
	Score    int       `json:"score" validate:"gte=0,lte=100"`
}

// Normalize cleans up model-provided fields in place. Severities arrive in
// every imaginable spelling; they are mapped onto the closed severity set.
func (r *Report) Normalize() {
	for i := range r.Findings {
		r.Findings[i].Severity = resilience.NormalizeSeverity(string(r.Findings[i].Severity))
	}
}
