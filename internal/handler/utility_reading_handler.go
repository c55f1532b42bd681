package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/internal/service"
	appErrors "github.com/noah-isme/dorm-adp-api/pkg/errors"
	"github.com/noah-isme/dorm-adp-api/pkg/export"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
	"github.com/noah-isme/dorm-adp-api/pkg/response"
)

type utilityReadingService interface {
	List(ctx context.Context, filter models.UtilityReadingFilter) ([]models.UtilityReadingDetail, *listing.Meta, error)
	Get(ctx context.Context, id string) (*models.UtilityReadingDetail, error)
	Create(ctx context.Context, req service.CreateUtilityReadingRequest) (*models.UtilityReadingDetail, error)
	Update(ctx context.Context, id string, req service.UpdateUtilityReadingRequest) (*models.UtilityReadingDetail, error)
	Delete(ctx context.Context, id string) error
	Consumption(ctx context.Context, id string) (*models.UtilityConsumption, error)
}

type readingExporter interface {
	UtilityReadings(ctx context.Context, filter models.UtilityReadingFilter, format export.Format) (*service.ExportFile, error)
}

// UtilityReadingHandler exposes meter reading endpoints.
type UtilityReadingHandler struct {
	readings utilityReadingService
	exports  readingExporter
	list     ListSupport
}

// NewUtilityReadingHandler constructs UtilityReadingHandler.
func NewUtilityReadingHandler(readings utilityReadingService, exports readingExporter, list ListSupport) *UtilityReadingHandler {
	return &UtilityReadingHandler{readings: readings, exports: exports, list: list}
}

func readingFilter(n *listing.Normalizer) models.UtilityReadingFilter {
	return models.UtilityReadingFilter{
		RoomID:     n.UUID("roomId"),
		Type:       n.Enum("type", models.UtilityKinds, string(models.UtilityOther)),
		Month:      n.IntInRange("month", 1, 12),
		Year:       n.IntInRange("year", 2000, 2100),
		Search:     n.String("search"),
		RoomNumber: n.String("roomNumber"),
		Page:       n.Page(),
	}
}

// List godoc
// @Summary List utility readings
// @Tags UtilityReadings
// @Produce json
// @Param roomId query string false "Room ID"
// @Param type query string false "ELECTRICITY, WATER or OTHER"
// @Param month query int false "Billing month"
// @Param year query int false "Billing year"
// @Param roomNumber query string false "Room number, building name or '306 (B3)'"
// @Param search query string false "Search notes or room number"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /utility-readings [get]
func (h *UtilityReadingHandler) List(c *gin.Context) {
	n := h.list.normalizer(c)
	filter := readingFilter(n)
	readings, meta, err := h.readings.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.list.respond(c, "utility_readings", n, readings, len(readings), meta)
}

// Get godoc
// @Summary Get utility reading
// @Tags UtilityReadings
// @Produce json
// @Param id path string true "Reading ID"
// @Success 200 {object} response.Envelope
// @Router /utility-readings/{id} [get]
func (h *UtilityReadingHandler) Get(c *gin.Context) {
	reading, err := h.readings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reading)
}

// Consumption godoc
// @Summary Consumption since the previous reading
// @Tags UtilityReadings
// @Produce json
// @Param id path string true "Reading ID"
// @Success 200 {object} response.Envelope
// @Router /utility-readings/{id}/consumption [get]
func (h *UtilityReadingHandler) Consumption(c *gin.Context) {
	result, err := h.readings.Consumption(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Create godoc
// @Summary Record utility reading
// @Tags UtilityReadings
// @Accept json
// @Produce json
// @Param payload body service.CreateUtilityReadingRequest true "Reading payload"
// @Success 201 {object} response.Envelope
// @Router /utility-readings [post]
func (h *UtilityReadingHandler) Create(c *gin.Context) {
	var req service.CreateUtilityReadingRequest
	if !bindJSON(c, &req) {
		return
	}
	reading, err := h.readings.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reading)
}

// Update godoc
// @Summary Update utility reading
// @Tags UtilityReadings
// @Accept json
// @Produce json
// @Param id path string true "Reading ID"
// @Param payload body service.UpdateUtilityReadingRequest true "Partial payload"
// @Success 200 {object} response.Envelope
// @Router /utility-readings/{id} [put]
func (h *UtilityReadingHandler) Update(c *gin.Context) {
	var req service.UpdateUtilityReadingRequest
	if !bindJSON(c, &req) {
		return
	}
	reading, err := h.readings.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reading)
}

// Delete godoc
// @Summary Delete utility reading
// @Tags UtilityReadings
// @Param id path string true "Reading ID"
// @Success 200 {object} response.Envelope
// @Router /utility-readings/{id} [delete]
func (h *UtilityReadingHandler) Delete(c *gin.Context) {
	if err := h.readings.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, "utility reading deleted")
}

// Export godoc
// @Summary Export utility readings
// @Tags UtilityReadings
// @Produce octet-stream
// @Param format query string false "csv, pdf or xlsx"
// @Success 200 {file} file
// @Router /utility-readings/export [get]
func (h *UtilityReadingHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	n := h.list.normalizer(c)
	filter := readingFilter(n)
	h.list.reportWarnings(c, "utility_readings", n)
	file, err := h.exports.UtilityReadings(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendExport(c, file)
}

func sendExport(c *gin.Context, file *service.ExportFile) {
	if file.Truncated() {
		c.Header("X-Export-Truncated", "true")
	}
	c.Header("X-Total-Count", strconv.Itoa(file.Total))
	response.File(c, file.Filename, file.ContentType, file.Data)
}
