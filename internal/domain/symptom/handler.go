package symptom

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carewatch/carewatch/internal/platform/auth"
)

type Handler struct {
	catalog *Catalog
}

func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleCarer, auth.RoleManager, auth.RoleReadonlyAdmin))
	read.GET("/symptom-categories", h.ListCategories)
	read.GET("/symptoms/:id", h.GetSymptom)
}

type categoriesResponse struct {
	Version    string     `json:"version"`
	Categories []Category `json:"categories"`
}

func (h *Handler) ListCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, categoriesResponse{
		Version:    h.catalog.Version,
		Categories: h.catalog.Categories(),
	})
}

func (h *Handler) GetSymptom(c echo.Context) error {
	s, ok := h.catalog.Lookup(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "symptom not found")
	}
	return c.JSON(http.StatusOK, s)
}
