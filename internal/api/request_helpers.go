package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/api/shared"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/service/auth"
)

// Query parameters accepted by GET /tasks.
const (
	queryCompleted = "completed"
	querySortBy    = "sortBy"
	queryLimit     = "limit"
	querySkip      = "skip"
)

var errUnauthenticated = fmt.Errorf("%w: no user in request context", auth.ErrMissingToken)

// getUserIDFromContext returns the authenticated user's ID set by the auth
// middleware.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	return shared.UserIDFromContext(r.Context())
}

// getPathUUID parses a UUID path parameter. A value that is not a UUID can
// never name an existing record, so it reports notFound.
func getPathUUID(r *http.Request, paramName string, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, paramName))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}

// handleUserIDAndPathUUID extracts the caller's ID and a path UUID, writing
// the error response itself when either is missing.
func handleUserIDAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	notFound error,
) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, errUnauthenticated)
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName, notFound)
	if err != nil {
		HandleAPIError(w, r, err)
		return uuid.Nil, uuid.Nil, false
	}

	return userID, pathID, true
}

// parseNonNegative parses an optional non-negative integer query value.
func parseNonNegative(raw string, invalid error) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, invalid
	}
	return n, nil
}

// parseTaskListOptions reads completed, sortBy, limit and skip. Absent
// parameters leave the corresponding option unset.
func parseTaskListOptions(query url.Values) (domain.TaskListOptions, error) {
	var opts domain.TaskListOptions

	if query.Has(queryCompleted) {
		switch query.Get(queryCompleted) {
		case "true":
			completed := true
			opts.Completed = &completed
		case "false":
			completed := false
			opts.Completed = &completed
		default:
			return opts, domain.NewValidationError(queryCompleted, "must be true or false", nil)
		}
	}

	if raw := query.Get(querySortBy); raw != "" {
		sort, err := domain.ParseTaskSort(raw)
		if err != nil {
			return opts, err
		}
		opts.Sort = sort
	}

	var err error
	if opts.Limit, err = parseNonNegative(query.Get(queryLimit), domain.ErrInvalidLimit); err != nil {
		return opts, err
	}
	if opts.Skip, err = parseNonNegative(query.Get(querySkip), domain.ErrInvalidSkip); err != nil {
		return opts, err
	}

	return opts, nil
}
