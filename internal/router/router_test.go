package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/dorm-adp-api/internal/handler"
	"github.com/noah-isme/dorm-adp-api/internal/service"
	"github.com/noah-isme/dorm-adp-api/pkg/config"
)

type invalidationCounter struct {
	calls int
}

func (c *invalidationCounter) Invalidate(context.Context) {
	c.calls++
}

func testHandlers() Handlers {
	list := handler.ListSupport{}
	return Handlers{
		Buildings:       handler.NewBuildingHandler(nil, list),
		Rooms:           handler.NewRoomHandler(nil, list),
		Students:        handler.NewStudentHandler(nil, list),
		UtilityReadings: handler.NewUtilityReadingHandler(nil, nil, list),
		Invoices:        handler.NewInvoiceHandler(nil, nil, list),
		Payments:        handler.NewPaymentHandler(nil, list),
		Transfers:       handler.NewTransferHandler(nil, list),
		Vehicles:        handler.NewVehicleHandler(nil, list),
		Maintenance:     handler.NewMaintenanceHandler(nil, list),
		Dashboard:       handler.NewDashboardHandler(nil),
		Metrics:         handler.NewMetricsHandler(service.NewMetricsService(), nil),
	}
}

func testEngine(jwtEnabled bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Env: "test", APIPrefix: "/api"}
	cfg.JWT.Enabled = jwtEnabled
	cfg.JWT.Secret = "secret"
	return New(Options{Config: cfg, Logger: zap.NewNop(), Metrics: service.NewMetricsService()}, testHandlers())
}

func TestRouterHealthEndpoints(t *testing.T) {
	r := testEngine(false)

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterRequiresTokenWhenEnabled(t *testing.T) {
	r := testEngine(true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouterReachesHandlerWithLocalAdmin(t *testing.T) {
	r := testEngine(false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"status":"error"`))
}

func TestRouterRejectsMalformedIDs(t *testing.T) {
	r := testEngine(false)

	for _, target := range []string{"/api/rooms/306", "/api/utility-readings/abc", "/api/transfers/1/review"} {
		method := http.MethodGet
		if strings.HasSuffix(target, "/review") {
			method = http.MethodPatch
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, target)
		assert.Contains(t, w.Body.String(), "NOT_FOUND", target)
	}
}

func TestInvalidateDashboardOnSuccessfulWrite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	counter := &invalidationCounter{}
	r := gin.New()
	r.Use(invalidateDashboard(counter))
	r.GET("/rooms", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/rooms", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.PUT("/rooms/:id", func(c *gin.Context) { c.Status(http.StatusConflict) })

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/rooms", nil),
		httptest.NewRequest(http.MethodPost, "/rooms", nil),
		httptest.NewRequest(http.MethodPut, "/rooms/1", nil),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 1, counter.calls)
}
