package agency

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
	// Any authenticated caller may apply for a new agency.
	api.POST("/agencies/register", h.Register)

	read := api.Group("/admin", auth.RequireRole(auth.RoleAdmin, auth.RoleReadonlyAdmin))
	read.GET("/agencies", h.ListAgencies)
	read.GET("/agencies/:id", h.GetAgency)

	write := api.Group("/admin", auth.RequireRole(auth.RoleAdmin))
	write.POST("/agencies", h.Register)
	write.POST("/agencies/:id/approve", h.Approve)
	write.POST("/agencies/:id/reject", h.Reject)
	write.POST("/agencies/:id/suspend", h.Suspend)
	write.POST("/agencies/:id/deactivate", h.Deactivate)
	write.POST("/agencies/:id/reactivate", h.Reactivate)
}

func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a := &Agency{Name: req.Name, ContactEmail: req.ContactEmail, ContactName: req.ContactName}
	if req.Notes != "" {
		notes := req.Notes
		a.Notes = &notes
	}
	if err := h.svc.Register(c.Request().Context(), a); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListAgencies(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAgencies(c.Request().Context(), c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetAgency(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.GetAgency(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Approve(c echo.Context) error {
	return h.transition(c, func(id uuid.UUID, _ string) (*Agency, error) {
		return h.svc.Approve(c.Request().Context(), id)
	})
}

func (h *Handler) Reject(c echo.Context) error {
	return h.transition(c, func(id uuid.UUID, reason string) (*Agency, error) {
		return h.svc.Reject(c.Request().Context(), id, reason)
	})
}

func (h *Handler) Suspend(c echo.Context) error {
	return h.transition(c, func(id uuid.UUID, reason string) (*Agency, error) {
		return h.svc.Suspend(c.Request().Context(), id, reason)
	})
}

func (h *Handler) Deactivate(c echo.Context) error {
	return h.transition(c, func(id uuid.UUID, reason string) (*Agency, error) {
		return h.svc.Deactivate(c.Request().Context(), id, reason)
	})
}

func (h *Handler) Reactivate(c echo.Context) error {
	return h.transition(c, func(id uuid.UUID, _ string) (*Agency, error) {
		return h.svc.Reactivate(c.Request().Context(), id)
	})
}

func (h *Handler) transition(c echo.Context, fn func(id uuid.UUID, reason string) (*Agency, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req ReasonRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	a, err := fn(id, req.Reason)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}
