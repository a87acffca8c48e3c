package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/taskmanager-api/internal/domain"
)

// MaxBodyBytes caps the size of a JSON request body.
const MaxBodyBytes = 1 << 20

var (
	// ErrInvalidJSON is returned when a body is not a single well-typed JSON object.
	ErrInvalidJSON = errors.New("invalid request body")

	// ErrUnknownField is returned when a body names a field the target does not have.
	ErrUnknownField = errors.New("unknown field in request body")
)

// Global validator instance for reuse. Field names in errors follow the
// json tags clients see.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeJSON strictly decodes the request body into v. Unknown fields yield
// ErrUnknownField; malformed JSON, wrong types and trailing data yield
// ErrInvalidJSON.
func DecodeJSON(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	if len(body) > MaxBodyBytes {
		return fmt.Errorf("%w: body too large", ErrInvalidJSON)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		// encoding/json has no typed error for unknown fields.
		if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
		return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", ErrInvalidJSON)
	}
	return nil
}

// ValidateRequest validates v with its struct tags. Failures wrap
// domain.ErrValidation and keep the validator.ValidationErrors for callers
// that want field detail.
func ValidateRequest(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return nil
}
