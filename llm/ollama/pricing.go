package ollama

import "github.com/codelens-ai/codelens/llm"

// Prices for local Ollama inference. There is no per-token billing; the table
// exists so cost aggregation stays uniform across providers.
var Prices = llm.PriceTable{
	Default: llm.ModelPrice{InputPerMTok: 0, OutputPerMTok: 0},
}
