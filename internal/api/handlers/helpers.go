package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pratik-mahalle/dashlist/internal/api/dto"
	"github.com/pratik-mahalle/dashlist/internal/api/middleware"
	"github.com/pratik-mahalle/dashlist/internal/domain/role"
	"github.com/pratik-mahalle/dashlist/internal/domain/user"
	"github.com/pratik-mahalle/dashlist/internal/pkg/errors"
	"github.com/pratik-mahalle/dashlist/internal/pkg/logger"
	"github.com/pratik-mahalle/dashlist/internal/pkg/utils"
)

// decodeBody decodes a JSON request body into dst
func decodeBody(r *http.Request, dst interface{}) *errors.AppError {
	if r.Body == nil {
		return errors.BadRequest("Invalid request body")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.BadRequest("Invalid request body")
	}
	return nil
}

// idParam parses a positive integer URL parameter
func idParam(r *http.Request, name string) (int64, *errors.AppError) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.BadRequest("Invalid " + name)
	}
	return id, nil
}

// respondError writes err, logging server side failures
func respondError(w http.ResponseWriter, log *logger.Logger, err error, fallback string) {
	appErr := errors.As(err, fallback)
	if appErr.StatusCode >= http.StatusInternalServerError {
		log.ErrorWithErr(err, fallback)
	}
	utils.WriteError(w, appErr)
}

// userDTO converts u with the dashboard permissions of its role
func userDTO(ctx context.Context, roles middleware.PermissionResolver, u *user.User) (*dto.UserDTO, error) {
	perms, err := roles.ViewPermissions(ctx, u.Role, role.ViewDashboard)
	if err != nil {
		return nil, err
	}
	return dto.FromUser(u, perms), nil
}
