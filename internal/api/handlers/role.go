package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pratik-mahalle/dashlist/internal/api/dto"
	"github.com/pratik-mahalle/dashlist/internal/domain/role"
	"github.com/pratik-mahalle/dashlist/internal/pkg/logger"
	"github.com/pratik-mahalle/dashlist/internal/pkg/utils"
	"github.com/pratik-mahalle/dashlist/internal/pkg/validator"
)

// RoleHandler handles role lookups and admin role management
type RoleHandler struct {
	service   role.Service
	logger    *logger.Logger
	validator *validator.Validator
}

// NewRoleHandler creates a new role handler
func NewRoleHandler(service role.Service, log *logger.Logger, val *validator.Validator) *RoleHandler {
	return &RoleHandler{
		service:   service,
		logger:    log,
		validator: val,
	}
}

// GetByName returns a role with its permission views
// @Summary Get role by name
// @Tags Roles
// @Produce json
// @Param name path string true "Role name"
// @Success 200 {object} dto.RoleDTO
// @Failure 404 {object} utils.ErrorResponse "Role not found"
// @Security BearerAuth
// @Router /role/name/{name} [get]
func (h *RoleHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	ro, err := h.service.GetByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondError(w, h.logger, err, "Failed to get role")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"result": dto.FromRole(ro)})
}

// Create adds a role
// @Summary Create role
// @Tags Roles
// @Accept json
// @Produce json
// @Param request body dto.CreateRoleRequest true "Role"
// @Success 201 {object} dto.RoleDTO
// @Failure 400 {object} utils.ErrorResponse "Validation error"
// @Failure 403 {object} utils.ErrorResponse "Forbidden"
// @Failure 409 {object} utils.ErrorResponse "Role already exists"
// @Security BearerAuth
// @Router /role/ [post]
func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRoleRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	if appErr := h.validator.Check(req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	ro, err := h.service.Create(r.Context(), req.ToCreateInput())
	if err != nil {
		respondError(w, h.logger, err, "Failed to create role")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{"result": dto.FromRole(ro)})
}

// Delete removes a role no user holds
// @Summary Delete role
// @Tags Roles
// @Param name path string true "Role name"
// @Success 204 "Role deleted"
// @Failure 404 {object} utils.ErrorResponse "Role not found"
// @Failure 409 {object} utils.ErrorResponse "Role is assigned to users"
// @Security BearerAuth
// @Router /role/name/{name} [delete]
func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		respondError(w, h.logger, err, "Failed to delete role")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
