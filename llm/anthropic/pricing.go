package anthropic

import "github.com/codelens-ai/codelens/llm"

// Prices holds USD per-million-token rates for Anthropic models. Patterns are
// matched by substring, most specific first; unmatched models use the Default
// (Sonnet) rate. Loaded once as immutable data.
var Prices = llm.PriceTable{
	Prices: []llm.ModelPrice{
		{Match: "claude-3-5-haiku", InputPerMTok: 0.80, OutputPerMTok: 4.00},
		{Match: "haiku", InputPerMTok: 1.00, OutputPerMTok: 5.00},
		{Match: "opus", InputPerMTok: 15.00, OutputPerMTok: 75.00},
		{Match: "sonnet", InputPerMTok: 3.00, OutputPerMTok: 15.00},
	},
	Default: llm.ModelPrice{InputPerMTok: 3.00, OutputPerMTok: 15.00},
}
