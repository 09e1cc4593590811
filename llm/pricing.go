package llm

import (
	"math"
	"strings"
)

// ModelPrice holds per-million-token USD rates for models whose name contains
// Match. An empty Match only appears in a table's Default entry.
type ModelPrice struct {
	Match         string
	InputPerMTok  float64
	OutputPerMTok float64
}

// PriceTable maps model names onto pricing by substring match. Patterns are
// ordered most specific first; the first containing pattern wins. Tables are
// declared once as package-level data in each provider package and never
// mutated.
type PriceTable struct {
	Prices  []ModelPrice
	Default ModelPrice
}

// Rate returns the price entry for the given model name, falling back to the
// table default when no pattern matches.
func (t PriceTable) Rate(model string) ModelPrice {
	for _, p := range t.Prices {
		if strings.Contains(model, p.Match) {
			return p
		}
	}
	return t.Default
}

// Cost computes the USD cost for a call, rounded to 4 decimal places.
func (t PriceTable) Cost(model string, inputTokens, outputTokens int64) float64 {
	p := t.Rate(model)
	cost := float64(inputTokens)/1e6*p.InputPerMTok + float64(outputTokens)/1e6*p.OutputPerMTok
	return math.Round(cost*1e4) / 1e4
}
