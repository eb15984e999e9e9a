package activity

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carewatch/carewatch/internal/platform/apperr"
	"github.com/carewatch/carewatch/internal/platform/auth"
	"github.com/carewatch/carewatch/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("/admin", auth.RequireRole(auth.RoleAdmin, auth.RoleReadonlyAdmin))
	read.GET("/activity", h.ListActivity)
}

func (h *Handler) ListActivity(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := Filter{EventType: c.QueryParam("event_type")}
	if raw := c.QueryParam("agency_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid agency_id")
		}
		f.AgencyID = &id
	}

	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
