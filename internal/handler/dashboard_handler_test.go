package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dorm-adp-api/internal/middleware"
	"github.com/noah-isme/dorm-adp-api/internal/models"
)

type fakeDashboardSrv struct {
	summary *models.DashboardSummary
	hit     bool
	err     error
}

func (f *fakeDashboardSrv) Summary(context.Context) (*models.DashboardSummary, bool, error) {
	return f.summary, f.hit, f.err
}

func TestDashboardHandlerSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{summary: &models.DashboardSummary{Rooms: 12, OccupancyRate: 0.8125}, hit: true})

	r := gin.New()
	r.GET("/dashboard/summary", middleware.WithResponseMeta(), handler.Summary)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard/summary", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["meta"].(map[string]interface{})["cache_hit"])
	assert.EqualValues(t, 12, body["data"].(map[string]interface{})["rooms"])
}

func TestDashboardHandlerError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{err: errors.New("db down")})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/summary", nil)
	handler.Summary(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
