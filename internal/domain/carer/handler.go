package carer

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
	read.GET("/carers", h.ListCarers)
	read.GET("/carers/active", h.ListActiveCarers)
	read.GET("/carers/:id", h.GetCarer)

	write := api.Group("", auth.RequireRole(auth.RoleManager))
	write.POST("/carers", h.CreateCarer)
	write.POST("/carers/:id/deactivate", h.DeactivateCarer)
	write.POST("/carers/:id/reactivate", h.ReactivateCarer)
}

func agencyID(c echo.Context) (uuid.UUID, error) {
	id, ok := auth.AgencyFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "agency is required")
	}
	return id, nil
}

func (h *Handler) CreateCarer(c echo.Context) error {
	agency, err := agencyID(c)
	if err != nil {
		return err
	}
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cr := &Carer{AgencyID: agency, Email: req.Email, FullName: req.FullName}
	if err := h.svc.CreateCarer(c.Request().Context(), cr); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, cr)
}

func (h *Handler) GetCarer(c echo.Context) error {
	agency, err := agencyID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cr, err := h.svc.GetCarer(c.Request().Context(), agency, id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, cr)
}

func (h *Handler) ListCarers(c echo.Context) error {
	agency, err := agencyID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListCarers(c.Request().Context(), agency, c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListActiveCarers(c echo.Context) error {
	agency, err := agencyID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListActiveCarers(c.Request().Context(), agency, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) DeactivateCarer(c echo.Context) error {
	agency, err := agencyID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req DeactivateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cr, err := h.svc.Deactivate(c.Request().Context(), agency, id, req.Reason)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, cr)
}

func (h *Handler) ReactivateCarer(c echo.Context) error {
	agency, err := agencyID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cr, err := h.svc.Reactivate(c.Request().Context(), agency, id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, cr)
}
