package symptom

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, *echo.Echo) {
	t.Helper()
	cat, err := Default()
	require.NoError(t, err)
	return NewHandler(cat), echo.New()
}

func TestHandler_ListCategories(t *testing.T) {
	h, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/symptom-categories", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.ListCategories(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body categoriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, h.catalog.Version, body.Version)
	assert.Equal(t, h.catalog.Categories(), body.Categories)
}

func TestHandler_GetSymptom(t *testing.T) {
	h, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("fall")
	require.NoError(t, h.GetSymptom(c))

	var s Symptom
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, 2, s.Points)

	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("nope")
	err := h.GetSymptom(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusNotFound, he.Code)
}
