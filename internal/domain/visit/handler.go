package visit

import (
	"context"
	"net/http"
	"slices"

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
	read.GET("/visits/:id", h.GetVisitEntry)
	read.GET("/clients/:id/visits", h.ListClientVisits)
	read.POST("/risk/preview", h.PreviewRisk)

	write := api.Group("", auth.RequireRole(auth.RoleCarer))
	write.POST("/visits", h.CreateVisitEntry)
	write.POST("/visits/:id/corrections", h.AddCorrectionNote)

	manage := api.Group("", auth.RequireRole(auth.RoleManager))
	manage.GET("/visits/:id/rescore", h.RescoreVisitEntry)
}

func agencyID(c echo.Context) (uuid.UUID, error) {
	id, ok := auth.AgencyFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "agency is required")
	}
	return id, nil
}

// callerCarerID returns the carer id carried in the token subject. Admins
// and managers act on behalf of a carer and must name one explicitly.
func callerCarerID(ctx context.Context) (uuid.UUID, bool) {
	roles := auth.RolesFromContext(ctx)
	if !slices.Contains(roles, auth.RoleCarer) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) CreateVisitEntry(c echo.Context) error {
	agency, err := agencyID(c)
	if err != nil {
		return err
	}
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	if id, ok := callerCarerID(ctx); ok {
		req.CarerID = id
	}

	e := &Entry{
		AgencyID:           agency,
		ClientID:           req.ClientID,
		CarerID:            req.CarerID,
		SelectedSymptomIDs: req.SelectedSymptomIDs,
		Vitals:             req.Vitals,
		Note:               req.Note,
	}
	if err := h.svc.CreateVisitEntry(ctx, e); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) GetVisitEntry(c echo.Context) error {
	agency, err := agencyID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	e, err := h.svc.GetVisitEntry(c.Request().Context(), agency, id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) ListClientVisits(c echo.Context) error {
	agency, err := agencyID(c)
	if err != nil {
		return err
	}
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid client id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListVisitEntriesByClient(c.Request().Context(), agency, clientID, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type correctionRequest struct {
	Text string `json:"text"`
}

func (h *Handler) AddCorrectionNote(c echo.Context) error {
	agency, err := agencyID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	carerID, ok := callerCarerID(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusForbidden, "only carers can add correction notes")
	}
	var req correctionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n, err := h.svc.AddCorrectionNote(ctx, agency, id, carerID, req.Text)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, n)
}

func (h *Handler) PreviewRisk(c echo.Context) error {
	var req PreviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.Preview(req.SelectedSymptomIDs, req.Vitals)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) RescoreVisitEntry(c echo.Context) error {
	agency, err := agencyID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	res, err := h.svc.Rescore(c.Request().Context(), agency, id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, res)
}
