package alert

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
	read := api.Group("", auth.RequireRole(auth.RoleManager, auth.RoleReadonlyAdmin))
	read.GET("/alerts", h.ListAlerts)
	read.GET("/alerts/count", h.UnreviewedCount)
	read.GET("/alerts/:id", h.GetAlert)

	write := api.Group("", auth.RequireRole(auth.RoleManager))
	write.POST("/alerts/:id/review", h.ReviewAlert)
}

func agencyID(c echo.Context) (uuid.UUID, error) {
	id, ok := auth.AgencyFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "agency is required")
	}
	return id, nil
}

func (h *Handler) ListAlerts(c echo.Context) error {
	agency, err := agencyID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAlerts(c.Request().Context(), agency, c.QueryParam("filter"), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UnreviewedCount(c echo.Context) error {
	agency, err := agencyID(c)
	if err != nil {
		return err
	}
	n, err := h.svc.UnreviewedCount(c.Request().Context(), agency)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"unreviewed": n})
}

func (h *Handler) GetAlert(c echo.Context) error {
	agency, err := agencyID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.GetAlert(c.Request().Context(), agency, id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ReviewAlert(c echo.Context) error {
	agency, err := agencyID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req Review
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	a, err := h.svc.ReviewAlert(ctx, agency, id, auth.UserIDFromContext(ctx), req)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}
