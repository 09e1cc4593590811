package resilience

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/codelens-ai/codelens/llm"
)

// maxRawDiagnostic caps the raw payload carried on failures.
const maxRawDiagnostic = 500

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidatedOutput is the discriminated result of the pipeline: either typed
// Data (OK true) or an error plus the truncated raw payload for diagnostics.
type ValidatedOutput[T any] struct {
	OK   bool
	Data T
	Err  error
	Raw  string
}

// Decode runs the full pipeline over raw model output and parses the
// recovered payload into T, validating any `validate` struct tags T declares.
func Decode[T any](raw string) ValidatedOutput[T] {
	return DecodeWith[T](raw, nil)
}

// DecodeWith is Decode with a domain normalization hook applied between
// parsing and validation (e.g. severity cleanup on finding lists).
func DecodeWith[T any](raw string, normalize func(*T)) ValidatedOutput[T] {
	payload := Repair(Extract(raw))

	var data T
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return failure[T](llm.NewExtractionError(fmt.Sprintf("no parsable JSON payload: %v", err)), payload)
	}

	if normalize != nil {
		normalize(&data)
	}

	if err := validateValue(data); err != nil {
		return failure[T](llm.NewSchemaError(fieldPathMessage(err), err), payload)
	}

	return ValidatedOutput[T]{OK: true, Data: data}
}

func failure[T any](err error, payload string) ValidatedOutput[T] {
	return ValidatedOutput[T]{Err: err, Raw: truncate(payload, maxRawDiagnostic)}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// validateValue applies struct-tag validation where it is meaningful: structs
// directly, and each element of a top-level slice of structs. Other kinds
// (maps, scalars) have no declared contract to check.
func validateValue(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		return validate.Struct(rv.Interface())
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			elem := rv.Index(i)
			for elem.Kind() == reflect.Pointer && !elem.IsNil() {
				elem = elem.Elem()
			}
			if elem.Kind() != reflect.Struct {
				return nil
			}
			if err := validate.Struct(elem.Interface()); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
	}
	return nil
}

// fieldPathMessage renders validator errors as a field-path-qualified list.
func fieldPathMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Sprintf("payload failed schema validation: %v", err)
	}

	paths := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		paths = append(paths, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return "payload failed schema validation: " + strings.Join(paths, "; ")
}
