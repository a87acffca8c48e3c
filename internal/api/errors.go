package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/taskmanager-api/internal/api/middleware"
	"github.com/phrazzld/taskmanager-api/internal/api/shared"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/service"
	"github.com/phrazzld/taskmanager-api/internal/service/auth"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// Client-facing messages with fixed wording.
const (
	msgInvalidUpdates    = "Invalid updates!"
	msgUnableToLogin     = "Unable to login"
	msgInvalidRequest    = "Invalid request format"
	msgUnexpectedFailure = "An unexpected error occurred"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing the error itself.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, store.ErrTokenNotFound):
		return http.StatusUnauthorized

	// Not found errors. Tasks owned by someone else land here too.
	case errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrInvalidJSON),
		errors.Is(err, shared.ErrUnknownField):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return msgUnexpectedFailure
	}

	switch {
	case MapErrorToStatusCode(err) == http.StatusUnauthorized:
		return middleware.UnauthenticatedMessage

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, service.ErrInvalidCredentials):
		return msgUnableToLogin

	case errors.Is(err, shared.ErrInvalidJSON):
		return msgInvalidRequest

	case errors.Is(err, domain.ErrInvalidUpdates),
		errors.Is(err, shared.ErrUnknownField):
		return msgInvalidUpdates

	case errors.Is(err, domain.ErrValidation):
		return validationMessage(err)

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return msgUnexpectedFailure
	}
}

// validationErrors are the domain validation sentinels, whose texts are safe
// to return verbatim.
var validationErrors = []error{
	domain.ErrEmptyDescription,
	domain.ErrEmptyName,
	domain.ErrEmptyEmail,
	domain.ErrInvalidEmail,
	domain.ErrPasswordTooShort,
	domain.ErrPasswordTooLong,
	domain.ErrPasswordContainsWord,
	domain.ErrEmptyPassword,
	domain.ErrNegativeAge,
	domain.ErrInvalidSortField,
	domain.ErrInvalidSortOrder,
	domain.ErrInvalidLimit,
	domain.ErrInvalidSkip,
}

// validationMessage renders a validation failure without internal detail.
func validationMessage(err error) string {
	var fieldErr *domain.ValidationError
	if errors.As(err, &fieldErr) {
		return fmt.Sprintf("Invalid %s: %s", fieldErr.Field, fieldErr.Message)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("Invalid %s: %s", verrs[0].Field(), getValidationTagMessage(verrs[0].Tag()))
	}

	for _, known := range validationErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the mapped status and safe message for err and logs
// the redacted detail.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)

	var opts []shared.ResponseOption
	if errors.Is(err, service.ErrInvalidCredentials) {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err, opts...)
}
