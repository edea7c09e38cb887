package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/user-location-api/internal/httputil"
	"github.com/redmonkez12/user-location-api/internal/location"
	"github.com/redmonkez12/user-location-api/internal/logging"
)

// Handler contains HTTP handlers for the users resource
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// CreateUserRequest represents the create request body
type CreateUserRequest struct {
	Name    string  `json:"name"`
	ZipCode *string `json:"zipCode"`
}

// UpdateUserRequest represents the update request body. ZipCode tracks
// whether the field was present so "not sent" and "sent as null" stay
// distinguishable.
type UpdateUserRequest struct {
	Name    *string        `json:"name"`
	ZipCode OptionalString `json:"zipCode"`
}

const (
	maxNameLength = 255
	minZipLength  = 3
	maxZipLength  = 20
)

// GetAll handles listing all users
// @Summary      List users
// @Description  Returns every stored user record
// @Tags         users
// @Produce      json
// @Success      200 {object} httputil.Response{data=[]User}
// @Failure      500 {object} httputil.Response
// @Router       /users [get]
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	users, err := h.service.GetAll(r.Context())
	if err != nil {
		logger.Error("failed to list users", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get users", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondSuccess(w, users, http.StatusOK)
}

// GetByID handles fetching a single user
// @Summary      Get user
// @Description  Returns the user with the given id
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} httputil.Response{data=User}
// @Failure      404 {object} httputil.Response "User not found"
// @Failure      500 {object} httputil.Response
// @Router       /users/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	id := chi.URLParam(r, "id")

	u, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, logger, err)
		return
	}
	if u == nil {
		httputil.RespondErrorWithCode(w, "user not found", httputil.CodeUserNotFound, http.StatusNotFound)
		return
	}

	httputil.RespondSuccess(w, u, http.StatusOK)
}

// Create handles user creation
// @Summary      Create user
// @Description  Creates a user. A provided zip code is geocoded into latitude, longitude and timezone.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "New user"
// @Success      201 {object} httputil.Response{data=User}
// @Failure      400 {object} httputil.Response "Invalid input"
// @Failure      404 {object} httputil.Response "Unknown zip code"
// @Failure      429 {object} httputil.Response "Rate limited"
// @Failure      500 {object} httputil.Response
// @Router       /users [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid create request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if msg := validateNameLength(req.Name); msg != "" {
		httputil.RespondErrorWithCode(w, msg, httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}
	if msg := validateZipLength(req.ZipCode); msg != "" {
		httputil.RespondErrorWithCode(w, msg, httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	u, err := h.service.Create(r.Context(), CreateInput{
		Name:    req.Name,
		ZipCode: req.ZipCode,
	})
	if err != nil {
		h.respondServiceError(w, logger, err)
		return
	}

	httputil.RespondSuccess(w, u, http.StatusCreated)
}

// Update handles user updates
// @Summary      Update user
// @Description  Updates name and/or zip code. A changed zip code is re-geocoded; a null zip code clears the location fields.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        request body UpdateUserRequest true "Fields to update"
// @Success      200 {object} httputil.Response{data=User}
// @Failure      400 {object} httputil.Response "Invalid input"
// @Failure      404 {object} httputil.Response "User or zip code not found"
// @Failure      429 {object} httputil.Response "Rate limited"
// @Failure      500 {object} httputil.Response
// @Router       /users/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid update request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if req.Name != nil {
		if msg := validateNameLength(*req.Name); msg != "" {
			httputil.RespondErrorWithCode(w, msg, httputil.CodeValidationFailed, http.StatusBadRequest)
			return
		}
	}
	if req.ZipCode.Set {
		if msg := validateZipLength(req.ZipCode.Value); msg != "" {
			httputil.RespondErrorWithCode(w, msg, httputil.CodeValidationFailed, http.StatusBadRequest)
			return
		}
	}

	u, err := h.service.Update(r.Context(), id, UpdateInput{
		Name:    req.Name,
		ZipCode: req.ZipCode,
	})
	if err != nil {
		h.respondServiceError(w, logger, err)
		return
	}

	httputil.RespondSuccess(w, u, http.StatusOK)
}

// Delete handles user deletion
// @Summary      Delete user
// @Description  Permanently removes the user with the given id
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} httputil.Response
// @Failure      404 {object} httputil.Response "User not found"
// @Failure      429 {object} httputil.Response "Rate limited"
// @Failure      500 {object} httputil.Response
// @Router       /users/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	id := chi.URLParam(r, "id")

	removed, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, logger, err)
		return
	}
	if !removed {
		httputil.RespondErrorWithCode(w, "user not found", httputil.CodeUserNotFound, http.StatusNotFound)
		return
	}

	httputil.RespondJSON(w, httputil.Response{Success: true}, http.StatusOK)
}

// respondServiceError maps service and resolver errors onto the response
// envelope. Upstream details and credentials never reach the client.
func (h *Handler) respondServiceError(w http.ResponseWriter, logger *logging.Logger, err error) {
	var validationErr *ValidationError

	switch {
	case errors.Is(err, ErrIDRequired), errors.Is(err, ErrNameRequired):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
	case errors.As(err, &validationErr):
		httputil.RespondErrorWithCode(w, strings.Join(validationErr.Messages, "; "), httputil.CodeValidationFailed, http.StatusBadRequest)
	case errors.Is(err, location.ErrInvalidZipCode):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		httputil.RespondErrorWithCode(w, "user not found", httputil.CodeUserNotFound, http.StatusNotFound)
	case errors.Is(err, location.ErrZipCodeNotFound):
		httputil.RespondErrorWithCode(w, "zip code not found", httputil.CodeZipCodeNotFound, http.StatusNotFound)
	case errors.Is(err, location.ErrMissingAPIKey), errors.Is(err, location.ErrUnauthorized):
		logger.Error("geocoding credential problem", "error", err.Error())
		httputil.RespondErrorWithCode(w, "location service is unavailable", httputil.CodeInternalError, http.StatusInternalServerError)
	default:
		logger.Error("request failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
	}
}

func validateNameLength(name string) string {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) > maxNameLength {
		return "Name must be between 1 and 255 characters"
	}
	return ""
}

func validateZipLength(zip *string) string {
	if zip == nil {
		return ""
	}
	trimmed := strings.TrimSpace(*zip)
	// Empty means "no zip"; the service treats it as absent or clearing.
	if trimmed == "" {
		return ""
	}
	if len(trimmed) < minZipLength || len(trimmed) > maxZipLength {
		return "Zip code must be between 3 and 20 characters"
	}
	return ""
}
