package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pratik-mahalle/dashlist/internal/api/dto"
	"github.com/pratik-mahalle/dashlist/internal/api/middleware"
	"github.com/pratik-mahalle/dashlist/internal/domain/user"
	"github.com/pratik-mahalle/dashlist/internal/pkg/logger"
	"github.com/pratik-mahalle/dashlist/internal/pkg/utils"
	"github.com/pratik-mahalle/dashlist/internal/pkg/validator"
)

// UserHandler handles user lookups and admin user management
type UserHandler struct {
	service   user.Service
	roles     middleware.PermissionResolver
	logger    *logger.Logger
	validator *validator.Validator
}

// NewUserHandler creates a new user handler
func NewUserHandler(service user.Service, roles middleware.PermissionResolver, log *logger.Logger, val *validator.Validator) *UserHandler {
	return &UserHandler{
		service:   service,
		roles:     roles,
		logger:    log,
		validator: val,
	}
}

// GetByEmail returns the user with the given email
// @Summary Get user by email
// @Tags Users
// @Produce json
// @Param email path string true "Email"
// @Success 200 {object} dto.UserDTO
// @Failure 404 {object} utils.ErrorResponse "User not found"
// @Security BearerAuth
// @Router /user/{email} [get]
func (h *UserHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.GetByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		respondError(w, h.logger, err, "Failed to get user")
		return
	}
	result, err := userDTO(r.Context(), h.roles, u)
	if err != nil {
		respondError(w, h.logger, err, "Failed to get user")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"result": result})
}

// Create returns the user with the given email, creating it when missing
// @Summary Create user
// @Tags Users
// @Accept json
// @Produce json
// @Param request body dto.CreateUserRequest true "User"
// @Success 200 {object} dto.CreateUserResponse "User already existed"
// @Success 201 {object} dto.CreateUserResponse "User created"
// @Failure 400 {object} utils.ErrorResponse "Validation error"
// @Failure 403 {object} utils.ErrorResponse "Forbidden"
// @Security BearerAuth
// @Router /user/ [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	if appErr := h.validator.Check(req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	u, created, err := h.service.GetOrCreate(r.Context(), user.CreateInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		respondError(w, h.logger, err, "Failed to create user")
		return
	}

	result, err := userDTO(r.Context(), h.roles, u)
	if err != nil {
		respondError(w, h.logger, err, "Failed to create user")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	utils.WriteJSON(w, status, dto.CreateUserResponse{Created: created, Result: result})
}

// Delete removes a user
// @Summary Delete user
// @Tags Users
// @Param id path int true "User ID"
// @Success 204 "User deleted"
// @Failure 404 {object} utils.ErrorResponse "User not found"
// @Security BearerAuth
// @Router /user/{id} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, appErr := idParam(r, "id")
	if appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		respondError(w, h.logger, err, "Failed to delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
