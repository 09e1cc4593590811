package llm

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"math"
)

// CompletionRequest describes a single prompt-completion call. It is an
// immutable value; identity for caching purposes is the Fingerprint over
// all four fields.
type CompletionRequest struct {
	Prompt      string
	Model       string
	MaxTokens   int64
	Temperature float64
}

// Fingerprint returns a deterministic hex-encoded SHA-256 hash over the
// request parameters. Requests that differ in any field hash differently;
// field boundaries are delimited so concatenation ambiguity cannot collide.
func (r *CompletionRequest) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(r.Prompt))
	h.Write([]byte{0})
	h.Write([]byte(r.Model))
	h.Write([]byte{0})

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(r.MaxTokens))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(r.Temperature))
	h.Write(buf[:])

	return hex.EncodeToString(h.Sum(nil))
}

// CompletionResult is the provider-neutral outcome of a completion call.
// Cost is derived from the token counts via the provider's price table and
// is never stored independently of them.
type CompletionResult struct {
	Content      string  `json:"content"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	Cost         float64 `json:"cost"`
}

// StructuredResult is a completion whose payload was produced by a provider's
// native structured-output mode. Data holds the raw JSON document.
type StructuredResult struct {
	CompletionResult
	Data json.RawMessage `json:"data"`
}

// Schema describes the structured payload a caller expects back from a
// structured completion. Definition is a JSON-schema-shaped document; vendors
// that only support a generic JSON mode may ignore it and rely on the prompt.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}
