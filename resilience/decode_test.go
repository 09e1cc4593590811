package resilience

import (
	"errors"
	"strings"
	"testing"

	"github.com/codelens-ai/codelens/llm"
)

type testReport struct {
	Summary  string        `json:"summary" validate:"required"`
	Score    int           `json:"score" validate:"gte=0,lte=100"`
	Findings []testFinding `json:"findings"`
}

type testFinding struct {
	Title    string   `json:"title" validate:"required"`
	Severity Severity `json:"severity"`
}

func TestDecodeCleanPayload(t *testing.T) {
	out := Decode[testReport](`{"summary": "ok", "score": 80}`)
	if !out.OK {
		t.Fatalf("Expected success, got %v", out.Err)
	}
	if out.Data.Summary != "ok" || out.Data.Score != 80 {
		t.Errorf("Unexpected data: %+v", out.Data)
	}
}

func TestDecodeFencedAndBroken(t *testing.T) {
	raw := "Sure! Here's the report:\n```json\n{\"summary\": \"ok\", \"score\": 75,}\n```"
	out := Decode[testReport](raw)
	if !out.OK {
		t.Fatalf("Expected fenced payload with trailing comma to decode, got %v", out.Err)
	}
	if out.Data.Score != 75 {
		t.Errorf("Expected score 75, got %d", out.Data.Score)
	}
}

func TestDecodeUnparsable(t *testing.T) {
	out := Decode[testReport]("I am sorry, I cannot help with that.")
	if out.OK {
		t.Fatal("Expected failure for non-JSON output")
	}
	if !llm.IsExtractionError(out.Err) {
		t.Errorf("Expected an extraction error, got %v", out.Err)
	}
	if out.Raw == "" {
		t.Error("Expected the raw payload to be carried for diagnostics")
	}
}

func TestDecodeValidationFailure(t *testing.T) {
	out := Decode[testReport](`{"score": 50}`)
	if out.OK {
		t.Fatal("Expected failure for a missing required field")
	}
	var llmErr *llm.Error
	if !errors.As(out.Err, &llmErr) || llmErr.Type != llm.ErrorTypeSchema {
		t.Fatalf("Expected a schema error, got %v", out.Err)
	}
	if !strings.Contains(out.Err.Error(), "Summary") {
		t.Errorf("Expected the field path in the message, got %q", out.Err.Error())
	}
}

func TestDecodeRangeValidation(t *testing.T) {
	out := Decode[testReport](`{"summary": "ok", "score": 150}`)
	if out.OK {
		t.Fatal("Expected failure for out-of-range score")
	}
	if !strings.Contains(out.Err.Error(), "Score") {
		t.Errorf("Expected the score field in the message, got %q", out.Err.Error())
	}
}

func TestDecodeWithNormalization(t *testing.T) {
	raw := `{"summary": "ok", "score": 10, "findings": [{"title": "x", "severity": "CRITICAL!!"}]}`
	out := DecodeWith[testReport](raw, func(r *testReport) {
		for i := range r.Findings {
			r.Findings[i].Severity = NormalizeSeverity(string(r.Findings[i].Severity))
		}
	})
	if !out.OK {
		t.Fatalf("Expected success, got %v", out.Err)
	}
	if out.Data.Findings[0].Severity != SeverityCritical {
		t.Errorf("Expected normalized severity, got %q", out.Data.Findings[0].Severity)
	}
}

func TestDecodeSliceValidatesElements(t *testing.T) {
	out := Decode[[]testFinding](`[{"title": "a"}, {"title": ""}]`)
	if out.OK {
		t.Fatal("Expected failure for an invalid slice element")
	}
	if !strings.Contains(out.Err.Error(), "element 1") {
		t.Errorf("Expected the failing element index, got %q", out.Err.Error())
	}
}

func TestDecodeRawTruncated(t *testing.T) {
	out := Decode[testReport]("garbage " + strings.Repeat("x", 2*maxRawDiagnostic))
	if out.OK {
		t.Fatal("Expected failure")
	}
	if len(out.Raw) > maxRawDiagnostic {
		t.Errorf("Expected raw diagnostic capped at %d bytes, got %d", maxRawDiagnostic, len(out.Raw))
	}
}

func TestDecodeMapPayload(t *testing.T) {
	// Untyped maps carry no validation contract and must pass through.
	out := Decode[map[string]any](`{"anything": true}`)
	if !out.OK {
		t.Fatalf("Expected success, got %v", out.Err)
	}
}
