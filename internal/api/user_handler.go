package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskmanager-api/internal/api/shared"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/service"
)

// UserHandler handles account and session requests.
type UserHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, logger *slog.Logger) *UserHandler {
	if userService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("userService cannot be nil for UserHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UserHandler{
		userService: userService,
		logger:      logger.With(slog.String("component", "user_handler")),
	}
}

// decodeStrict decodes a body where unknown fields are plain bad input.
func decodeStrict(r *http.Request, v interface{}) error {
	err := shared.DecodeJSON(r, v)
	if errors.Is(err, shared.ErrUnknownField) {
		return errors.Join(shared.ErrInvalidJSON, err)
	}
	return err
}

// SignUp handles POST /users.
func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := decodeStrict(r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	input := service.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}
	if req.Age != nil {
		input.Age = *req.Age
	}

	user, token, err := h.userService.SignUp(r.Context(), input)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		User:  userToResponse(user),
		Token: token,
	})
}

// Login handles POST /users/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeStrict(r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		// Missing credentials get the same answer as wrong ones.
		HandleAPIError(w, r, service.ErrInvalidCredentials)
		return
	}

	user, token, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		User:  userToResponse(user),
		Token: token,
	})
}

// Logout handles POST /users/logout by revoking the token of the request.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	token, hasToken := shared.TokenFromContext(r.Context())
	if !ok || !hasToken {
		HandleAPIError(w, r, errUnauthenticated)
		return
	}

	if err := h.userService.Logout(r.Context(), userID, token); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// LogoutAll handles POST /users/logoutAll.
func (h *UserHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, errUnauthenticated)
		return
	}

	if err := h.userService.LogoutAll(r.Context(), userID); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetMe handles GET /users/me.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, errUnauthenticated)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// UpdateMe handles PATCH /users/me. Only name, email, password and age may
// be changed.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, errUnauthenticated)
		return
	}

	var req UpdateUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		if errors.Is(err, shared.ErrUnknownField) {
			err = errors.Join(domain.ErrInvalidUpdates, err)
		}
		HandleAPIError(w, r, err)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, domain.UserPatch{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// DeleteMe handles DELETE /users/me. Tasks and tokens go with the account.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, errUnauthenticated)
		return
	}

	user, err := h.userService.DeleteAccount(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("account deleted",
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}
