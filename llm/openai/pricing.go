package openai

import "github.com/codelens-ai/codelens/llm"

// Prices holds USD per-million-token rates for OpenAI models, matched by
// substring with the most specific pattern first. Unmatched models fall back
// to the gpt-4o rate.
var Prices = llm.PriceTable{
	Prices: []llm.ModelPrice{
		{Match: "gpt-4o-mini", InputPerMTok: 0.15, OutputPerMTok: 0.60},
		{Match: "gpt-4.1-mini", InputPerMTok: 0.40, OutputPerMTok: 1.60},
		{Match: "gpt-4.1", InputPerMTok: 2.00, OutputPerMTok: 8.00},
		{Match: "gpt-4o", InputPerMTok: 2.50, OutputPerMTok: 10.00},
		{Match: "o3-mini", InputPerMTok: 1.10, OutputPerMTok: 4.40},
		{Match: "o3", InputPerMTok: 2.00, OutputPerMTok: 8.00},
	},
	Default: llm.ModelPrice{InputPerMTok: 2.50, OutputPerMTok: 10.00},
}
