package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pratik-mahalle/dashlist/internal/api/dto"
	"github.com/pratik-mahalle/dashlist/internal/api/middleware"
	"github.com/pratik-mahalle/dashlist/internal/domain/dashboard"
	"github.com/pratik-mahalle/dashlist/internal/domain/favorite"
	"github.com/pratik-mahalle/dashlist/internal/pkg/errors"
	"github.com/pratik-mahalle/dashlist/internal/pkg/logger"
	"github.com/pratik-mahalle/dashlist/internal/pkg/utils"
	"github.com/pratik-mahalle/dashlist/internal/pkg/validator"
	"github.com/pratik-mahalle/dashlist/pkg/query"
)

// DashboardHandler handles dashboard-related requests
type DashboardHandler struct {
	service   dashboard.Service
	favorites favorite.Service
	logger    *logger.Logger
	validator *validator.Validator
	now       func() time.Time
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service dashboard.Service, favorites favorite.Service, log *logger.Logger, val *validator.Validator) *DashboardHandler {
	return &DashboardHandler{
		service:   service,
		favorites: favorites,
		logger:    log,
		validator: val,
		now:       time.Now,
	}
}

// List returns one page of dashboards
// @Summary List dashboards
// @Description Filtered, sorted, paginated list of dashboards
// @Tags Dashboards
// @Produce json
// @Param q query string false "JSON encoded query: filters, order_column, order_direction, page, page_size"
// @Success 200 {object} dto.DashboardListResponse
// @Failure 400 {object} utils.ErrorResponse "Invalid query"
// @Router /dashboard/ [get]
func (h *DashboardHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := query.Decode(r.URL.Query().Get("q"))
	if err != nil {
		utils.WriteError(w, errors.BadRequest(err.Error()))
		return
	}

	result, err := h.service.List(r.Context(), middleware.GetActor(r), q)
	if err != nil {
		respondError(w, h.logger, err, "Failed to list dashboards")
		return
	}

	items, ids := dto.FromDashboards(result.Items, h.now())
	utils.WriteJSON(w, http.StatusOK, dto.DashboardListResponse{
		Count: result.Count,
		IDs:   ids,
		Items: items,
	})
}

// Info returns the permissions of the caller
// @Summary Dashboard permissions
// @Tags Dashboards
// @Produce json
// @Success 200 {object} dto.InfoResponse
// @Router /dashboard/_info [get]
func (h *DashboardHandler) Info(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, dto.InfoResponse{
		Permissions: middleware.GetActor(r).Permissions(),
	})
}

// Get returns a single dashboard
// @Summary Get dashboard
// @Tags Dashboards
// @Produce json
// @Param id path int true "Dashboard ID"
// @Success 200 {object} dto.DashboardResponse
// @Failure 404 {object} utils.ErrorResponse "Dashboard not found"
// @Router /dashboard/{id} [get]
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := idParam(r, "id")
	if appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err, "Failed to get dashboard")
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.DashboardResponse{
		ID:     d.ID,
		Result: dto.FromDashboard(d, h.now()),
	})
}

// Create creates a dashboard owned by the caller
// @Summary Create dashboard
// @Tags Dashboards
// @Accept json
// @Produce json
// @Param request body dto.CreateDashboardRequest true "Dashboard"
// @Success 201 {object} dto.DashboardResponse
// @Failure 400 {object} utils.ErrorResponse "Validation error"
// @Failure 403 {object} utils.ErrorResponse "Forbidden"
// @Security BearerAuth
// @Router /dashboard/ [post]
func (h *DashboardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDashboardRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	if appErr := h.validator.Check(req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	d, err := h.service.Create(r.Context(), middleware.GetActor(r), req.ToCreateInput())
	if err != nil {
		respondError(w, h.logger, err, "Failed to create dashboard")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, dto.DashboardResponse{
		ID:     d.ID,
		Result: dto.FromDashboard(d, h.now()),
	})
}

// Update changes the properties of a dashboard
// @Summary Update dashboard
// @Tags Dashboards
// @Accept json
// @Produce json
// @Param id path int true "Dashboard ID"
// @Param request body dto.UpdateDashboardRequest true "Changed properties"
// @Success 200 {object} dto.DashboardResponse
// @Failure 403 {object} utils.ErrorResponse "Forbidden"
// @Failure 404 {object} utils.ErrorResponse "Dashboard not found"
// @Security BearerAuth
// @Router /dashboard/{id} [put]
func (h *DashboardHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, appErr := idParam(r, "id")
	if appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	var req dto.UpdateDashboardRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	if appErr := h.validator.Check(req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	d, err := h.service.Update(r.Context(), middleware.GetActor(r), id, req.ToUpdateInput())
	if err != nil {
		respondError(w, h.logger, err, "Failed to update dashboard")
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.DashboardResponse{
		ID:     d.ID,
		Result: dto.FromDashboard(d, h.now()),
	})
}

// Delete removes a single dashboard
// @Summary Delete dashboard
// @Tags Dashboards
// @Produce json
// @Param id path int true "Dashboard ID"
// @Success 200 {object} utils.MessageResponse
// @Failure 403 {object} utils.ErrorResponse "Forbidden"
// @Failure 404 {object} utils.ErrorResponse "Dashboard not found"
// @Security BearerAuth
// @Router /dashboard/{id} [delete]
func (h *DashboardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, appErr := idParam(r, "id")
	if appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	if err := h.service.Delete(r.Context(), middleware.GetActor(r), id); err != nil {
		respondError(w, h.logger, err, "Failed to delete dashboard")
		return
	}

	utils.WriteMessage(w, http.StatusOK, "OK")
}

// BulkDelete removes every dashboard in q or none of them
// @Summary Bulk delete dashboards
// @Tags Dashboards
// @Produce json
// @Param q query string true "JSON list of dashboard ids"
// @Success 200 {object} utils.MessageResponse
// @Failure 403 {object} utils.ErrorResponse "Forbidden"
// @Failure 404 {object} utils.ErrorResponse "Dashboard not found"
// @Security BearerAuth
// @Router /dashboard/ [delete]
func (h *DashboardHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	ids, err := query.DecodeIDs(r.URL.Query().Get("q"))
	if err != nil {
		utils.WriteError(w, errors.BadRequest(err.Error()))
		return
	}

	n, err := h.service.BulkDelete(r.Context(), middleware.GetActor(r), ids)
	if err != nil {
		respondError(w, h.logger, err, "Failed to delete dashboards")
		return
	}

	utils.WriteMessage(w, http.StatusOK, deletedMessage(n))
}

func deletedMessage(n int64) string {
	if n == 1 {
		return "Deleted 1 dashboard"
	}
	return fmt.Sprintf("Deleted %d dashboards", n)
}

// FavoriteStatus reports which of the given dashboards the caller favorited
// @Summary Favorite status
// @Tags Dashboards
// @Produce json
// @Param q query string true "JSON list of dashboard ids"
// @Success 200 {object} dto.FavoriteStatusResponse
// @Security BearerAuth
// @Router /dashboard/favorite_status/ [get]
func (h *DashboardHandler) FavoriteStatus(w http.ResponseWriter, r *http.Request) {
	ids, err := query.DecodeIDs(r.URL.Query().Get("q"))
	if err != nil {
		utils.WriteError(w, errors.BadRequest(err.Error()))
		return
	}

	statuses, err := h.favorites.Statuses(r.Context(), middleware.GetActor(r).UserID, ids)
	if err != nil {
		respondError(w, h.logger, err, "Failed to get favorite status")
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.FavoriteStatusResponse{Result: statuses})
}

// AddFavorite marks a dashboard as favorite of the caller
// @Summary Add favorite
// @Tags Dashboards
// @Produce json
// @Param id path int true "Dashboard ID"
// @Success 200 {object} dto.ResultResponse
// @Failure 404 {object} utils.ErrorResponse "Dashboard not found"
// @Security BearerAuth
// @Router /dashboard/{id}/favorites/ [post]
func (h *DashboardHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.setFavorite(w, r, true)
}

// RemoveFavorite clears the favorite mark of the caller
// @Summary Remove favorite
// @Tags Dashboards
// @Produce json
// @Param id path int true "Dashboard ID"
// @Success 200 {object} dto.ResultResponse
// @Failure 404 {object} utils.ErrorResponse "Dashboard not found"
// @Security BearerAuth
// @Router /dashboard/{id}/favorites/ [delete]
func (h *DashboardHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.setFavorite(w, r, false)
}

func (h *DashboardHandler) setFavorite(w http.ResponseWriter, r *http.Request, value bool) {
	id, appErr := idParam(r, "id")
	if appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	userID := middleware.GetActor(r).UserID
	var err error
	if value {
		err = h.favorites.Add(r.Context(), userID, id)
	} else {
		err = h.favorites.Remove(r.Context(), userID, id)
	}
	if err != nil {
		respondError(w, h.logger, err, "Failed to save favorite")
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.ResultResponse{Result: "OK"})
}

// Related lists options for the owners and created_by filters
// @Summary Related filter values
// @Tags Dashboards
// @Produce json
// @Param column path string true "owners or created_by"
// @Param q query string false "JSON encoded filter, page, page_size"
// @Success 200 {object} dto.RelatedResponse
// @Failure 404 {object} utils.ErrorResponse "Unknown column"
// @Router /dashboard/related/{column} [get]
func (h *DashboardHandler) Related(w http.ResponseWriter, r *http.Request) {
	q, err := query.DecodeRelated(r.URL.Query().Get("q"))
	if err != nil {
		utils.WriteError(w, errors.BadRequest(err.Error()))
		return
	}

	values, count, err := h.service.Related(r.Context(), chi.URLParam(r, "column"), q)
	if err != nil {
		respondError(w, h.logger, err, "Failed to list related values")
		return
	}
	if values == nil {
		values = []dashboard.RelatedValue{}
	}

	utils.WriteJSON(w, http.StatusOK, dto.RelatedResponse{Count: count, Result: values})
}
