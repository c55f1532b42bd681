package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/internal/service"
	appErrors "github.com/noah-isme/dorm-adp-api/pkg/errors"
	"github.com/noah-isme/dorm-adp-api/pkg/export"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

type fakeReadingService struct {
	filter    models.UtilityReadingFilter
	readings  []models.UtilityReadingDetail
	total     int
	createReq service.CreateUtilityReadingRequest
	createErr error
	deleteErr error
}

func (f *fakeReadingService) List(_ context.Context, filter models.UtilityReadingFilter) ([]models.UtilityReadingDetail, *listing.Meta, error) {
	f.filter = filter
	return f.readings, filter.Page.Meta(f.total), nil
}

func (f *fakeReadingService) Get(_ context.Context, id string) (*models.UtilityReadingDetail, error) {
	return &models.UtilityReadingDetail{UtilityReading: models.UtilityReading{ID: id}}, nil
}

func (f *fakeReadingService) Create(_ context.Context, req service.CreateUtilityReadingRequest) (*models.UtilityReadingDetail, error) {
	f.createReq = req
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.UtilityReadingDetail{UtilityReading: models.UtilityReading{ID: "r-new", RoomID: req.RoomID}}, nil
}

func (f *fakeReadingService) Update(_ context.Context, id string, _ service.UpdateUtilityReadingRequest) (*models.UtilityReadingDetail, error) {
	return &models.UtilityReadingDetail{UtilityReading: models.UtilityReading{ID: id}}, nil
}

func (f *fakeReadingService) Delete(_ context.Context, _ string) error {
	return f.deleteErr
}

func (f *fakeReadingService) Consumption(_ context.Context, id string) (*models.UtilityConsumption, error) {
	return &models.UtilityConsumption{}, nil
}

type fakeReadingExporter struct {
	filter models.UtilityReadingFilter
	format export.Format
}

func (f *fakeReadingExporter) UtilityReadings(_ context.Context, filter models.UtilityReadingFilter, format export.Format) (*service.ExportFile, error) {
	f.filter, f.format = filter, format
	return &service.ExportFile{Filename: "utility-readings.csv", ContentType: format.ContentType(), Data: []byte("a,b\n"), Rows: 1, Total: 4}, nil
}

func newReadingRouter(svc *fakeReadingService, exporter *fakeReadingExporter, metrics *service.MetricsService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewUtilityReadingHandler(svc, exporter, ListSupport{DefaultLimit: 20, MaxLimit: 100, Metrics: metrics})
	r := gin.New()
	r.GET("/utility-readings", h.List)
	r.GET("/utility-readings/export", h.Export)
	r.POST("/utility-readings", h.Create)
	r.DELETE("/utility-readings/:id", h.Delete)
	return r
}

func doRequest(r http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestUtilityReadingListNormalizesQuery(t *testing.T) {
	svc := &fakeReadingService{total: 45, readings: []models.UtilityReadingDetail{{}, {}}}
	r := newReadingRouter(svc, nil, nil)

	w := doRequest(r, http.MethodGet, "/utility-readings?roomNumber=306%20(B3)&type=other&month=5&year=2024&page=2&limit=20", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "306 (B3)", svc.filter.RoomNumber)
	assert.Equal(t, []string{"ELECTRICITY", "WATER"}, svc.filter.Type.Exclude)
	assert.Equal(t, 5, *svc.filter.Month)
	assert.Equal(t, listing.Page{Number: 2, Limit: 20}, svc.filter.Page)

	body := decodeBody(t, w)
	assert.EqualValues(t, 2, body["results"])
	assert.EqualValues(t, 45, body["total"])
	assert.EqualValues(t, 3, body["pagination"].(map[string]interface{})["totalPages"])
	assert.NotContains(t, body, "warnings")
}

func TestUtilityReadingListIgnoresMalformedType(t *testing.T) {
	svc := &fakeReadingService{readings: []models.UtilityReadingDetail{}}
	metrics := service.NewMetricsService()
	r := newReadingRouter(svc, nil, metrics)

	w := doRequest(r, http.MethodGet, "/utility-readings?type=%5Bobject%20Object%5D&month=NaN", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, svc.filter.Type.Active())
	assert.Nil(t, svc.filter.Month)

	body := decodeBody(t, w)
	warnings := body["warnings"].([]interface{})
	require.Len(t, warnings, 2)
	assert.Equal(t, "type", warnings[0].(map[string]interface{})["field"])
	assert.Equal(t, "[object Object]", warnings[0].(map[string]interface{})["value"])
	assert.Equal(t, []interface{}{}, body["data"])

	assert.Equal(t, 2.0, queryWarningCount(t, metrics))
}

func queryWarningCount(t *testing.T, metrics *service.MetricsService) float64 {
	t.Helper()
	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	var counted float64
	for _, family := range families {
		if family.GetName() == "dorm_listing_query_warnings_total" {
			for _, m := range family.GetMetric() {
				counted += m.GetCounter().GetValue()
			}
		}
	}
	return counted
}

func TestUtilityReadingExportCountsDroppedParameters(t *testing.T) {
	exporter := &fakeReadingExporter{}
	metrics := service.NewMetricsService()
	r := newReadingRouter(&fakeReadingService{}, exporter, metrics)

	w := doRequest(r, http.MethodGet, "/utility-readings/export?format=csv&month=13&roomId=abc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, exporter.filter.Month)
	assert.Empty(t, exporter.filter.RoomID)
	assert.Equal(t, 2.0, queryWarningCount(t, metrics))
}

func TestUtilityReadingCreateRejectsBadJSON(t *testing.T) {
	r := newReadingRouter(&fakeReadingService{}, nil, nil)
	w := doRequest(r, http.MethodPost, "/utility-readings", []byte(`{"roomId":`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUtilityReadingCreateSurfacesFieldErrors(t *testing.T) {
	svc := &fakeReadingService{createErr: appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "invalid utility reading payload"),
		[]appErrors.FieldError{{Field: "type", Message: "must be one of ELECTRICITY WATER OTHER"}})}
	r := newReadingRouter(svc, nil, nil)

	w := doRequest(r, http.MethodPost, "/utility-readings", []byte(`{"roomId":"x","type":"GAS"}`))
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "error", body["status"])
	assert.Len(t, body["errors"], 1)
	assert.Equal(t, "GAS", svc.createReq.Type)
}

func TestUtilityReadingCreated(t *testing.T) {
	r := newReadingRouter(&fakeReadingService{}, nil, nil)
	w := doRequest(r, http.MethodPost, "/utility-readings", []byte(`{"roomId":"room-1","type":"WATER","indexValue":12}`))
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "r-new", body["data"].(map[string]interface{})["id"])
}

func TestUtilityReadingDelete(t *testing.T) {
	svc := &fakeReadingService{}
	r := newReadingRouter(svc, nil, nil)

	w := doRequest(r, http.MethodDelete, "/utility-readings/r1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "utility reading deleted", body["message"])
	assert.Nil(t, body["data"])

	svc.deleteErr = appErrors.Clone(appErrors.ErrNotFound, "utility reading not found")
	w = doRequest(r, http.MethodDelete, "/utility-readings/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUtilityReadingExport(t *testing.T) {
	exporter := &fakeReadingExporter{}
	r := newReadingRouter(&fakeReadingService{}, exporter, nil)

	w := doRequest(r, http.MethodGet, "/utility-readings/export?format=xlsx&type=water", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.FormatXLSX, exporter.format)
	assert.Equal(t, []string{"WATER"}, exporter.filter.Type.Values)
	assert.Equal(t, "true", w.Header().Get("X-Export-Truncated"))
	assert.Equal(t, "4", w.Header().Get("X-Total-Count"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "utility-readings.csv")

	w = doRequest(r, http.MethodGet, "/utility-readings/export?format=docx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
