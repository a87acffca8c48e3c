package shared

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	Description string `json:"description" validate:"required"`
	Completed   *bool  `json:"completed"`
}

func newJSONRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(body))
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "valid", body: `{"description":"Read","completed":true}`},
		{name: "completed omitted", body: `{"description":"Read"}`},
		{name: "trailing whitespace", body: "{\"description\":\"Read\"}\n"},
		{name: "unknown field", body: `{"description":"Read","owner":"x"}`, wantErr: ErrUnknownField},
		{name: "non-boolean completed", body: `{"description":"Read","completed":"yes"}`, wantErr: ErrInvalidJSON},
		{name: "numeric description", body: `{"description":12}`, wantErr: ErrInvalidJSON},
		{name: "malformed", body: `{"description":`, wantErr: ErrInvalidJSON},
		{name: "empty body", body: ``, wantErr: ErrInvalidJSON},
		{name: "trailing object", body: `{"description":"a"}{"description":"b"}`, wantErr: ErrInvalidJSON},
		{name: "array", body: `[]`, wantErr: ErrInvalidJSON},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var p testPayload
			err := DecodeJSON(newJSONRequest(tc.body), &p)
			if tc.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "Read", p.Description)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	body := `{"description":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	var p testPayload
	err := DecodeJSON(newJSONRequest(body), &p)
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestValidateRequest(t *testing.T) {
	require.NoError(t, ValidateRequest(&testPayload{Description: "Read"}))

	err := ValidateRequest(&testPayload{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "description", verrs[0].Field())
	assert.Equal(t, "required", verrs[0].Tag())
}
