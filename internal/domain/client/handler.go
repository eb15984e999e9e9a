package client

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
	read := api.Group("", auth.RequireRole(auth.RoleCarer, auth.RoleManager, auth.RoleReadonlyAdmin))
	read.GET("/clients", h.ListClients)
	read.GET("/clients/:id", h.GetClient)
	read.GET("/carers/:id/clients", h.ListCarerClients)

	write := api.Group("", auth.RequireRole(auth.RoleManager))
	write.POST("/clients", h.CreateClient)
	write.PATCH("/clients/:id/status", h.UpdateStatus)
	write.GET("/clients/:id/carers", h.ListAssignedCarers)
	write.POST("/clients/:id/carers", h.AssignCarer)
	write.DELETE("/clients/:id/carers/:carerId", h.UnassignCarer)
}

func agencyID(c echo.Context) (uuid.UUID, error) {
	id, ok := auth.AgencyFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "agency is required")
	}
	return id, nil
}

func parseID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func (h *Handler) CreateClient(c echo.Context) error {
	agency, err := agencyID(c)
	if err != nil {
		return err
	}
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cl := &Client{AgencyID: agency, DisplayName: req.DisplayName}
	if req.InternalReference != "" {
		ref := req.InternalReference
		cl.InternalReference = &ref
	}
	if err := h.svc.CreateClient(c.Request().Context(), cl); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, cl)
}

func (h *Handler) GetClient(c echo.Context) error {
	agency, err := agencyID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	cl, err := h.svc.GetClient(c.Request().Context(), agency, id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *Handler) ListClients(c echo.Context) error {
	agency, err := agencyID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListClients(c.Request().Context(), agency, c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	agency, err := agencyID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req StatusUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cl, err := h.svc.UpdateStatus(c.Request().Context(), agency, id, req)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, cl)
}

type assignRequest struct {
	CarerID uuid.UUID `json:"carer_id"`
}

func (h *Handler) AssignCarer(c echo.Context) error {
	agency, err := agencyID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req assignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AssignCarer(c.Request().Context(), agency, id, req.CarerID); err != nil {
		return apperr.HTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) UnassignCarer(c echo.Context) error {
	agency, err := agencyID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	carerID, err := parseID(c, "carerId")
	if err != nil {
		return err
	}
	if err := h.svc.UnassignCarer(c.Request().Context(), agency, id, carerID); err != nil {
		return apperr.HTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListAssignedCarers(c echo.Context) error {
	agency, err := agencyID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ids, err := h.svc.ListAssignedCarers(c.Request().Context(), agency, id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, map[string][]uuid.UUID{"carer_ids": ids})
}

// ListCarerClients returns a carer's active clients. Carers may only list
// their own.
func (h *Handler) ListCarerClients(c echo.Context) error {
	agency, err := agencyID(c)
	if err != nil {
		return err
	}
	carerID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	roles := auth.RolesFromContext(ctx)
	if !auth.HasRole(roles, auth.RoleManager) && !auth.HasRole(roles, auth.RoleReadonlyAdmin) &&
		auth.UserIDFromContext(ctx) != carerID.String() {
		return echo.NewHTTPError(http.StatusForbidden, "carers can only list their own clients")
	}
	items, err := h.svc.ClientsForCarer(ctx, agency, carerID)
	if err != nil {
		return apperr.HTTP(err)
	}
	if items == nil {
		items = []*Client{}
	}
	return c.JSON(http.StatusOK, items)
}
