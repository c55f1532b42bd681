package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/internal/service"
	appErrors "github.com/noah-isme/dorm-adp-api/pkg/errors"
	"github.com/noah-isme/dorm-adp-api/pkg/export"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
	"github.com/noah-isme/dorm-adp-api/pkg/response"
)

type invoiceService interface {
	List(ctx context.Context, filter models.InvoiceFilter) ([]models.InvoiceDetail, *listing.Meta, error)
	Get(ctx context.Context, id string) (*models.InvoiceDetail, error)
	Create(ctx context.Context, req service.CreateInvoiceRequest) (*models.InvoiceDetail, error)
	Update(ctx context.Context, id string, req service.UpdateInvoiceRequest) (*models.InvoiceDetail, error)
	UpdateStatus(ctx context.Context, id string, req service.InvoiceStatusRequest) (*models.InvoiceDetail, error)
	Delete(ctx context.Context, id string) error
}

type invoiceExporter interface {
	Invoices(ctx context.Context, filter models.InvoiceFilter, format export.Format) (*service.ExportFile, error)
}

// InvoiceHandler exposes invoice endpoints.
type InvoiceHandler struct {
	invoices invoiceService
	exports  invoiceExporter
	list     ListSupport
}

// NewInvoiceHandler constructs InvoiceHandler.
func NewInvoiceHandler(invoices invoiceService, exports invoiceExporter, list ListSupport) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, exports: exports, list: list}
}

func invoiceFilter(n *listing.Normalizer) models.InvoiceFilter {
	return models.InvoiceFilter{
		StudentID: n.UUID("studentId"),
		RoomID:    n.UUID("roomId"),
		Status:    n.Enum("status", models.InvoiceStatuses, ""),
		Month:     n.IntInRange("month", 1, 12),
		Year:      n.IntInRange("year", 2000, 2100),
		DueFrom:   n.Date("dueFrom"),
		DueTo:     n.Date("dueTo"),
		Search:    n.String("search"),
		Page:      n.Page(),
	}
}

// List godoc
// @Summary List invoices
// @Tags Invoices
// @Produce json
// @Param studentId query string false "Student ID"
// @Param roomId query string false "Room ID"
// @Param status query string false "UNPAID, PAID, PARTIALLY_PAID, OVERDUE or CANCELLED"
// @Param month query int false "Billing month"
// @Param year query int false "Billing year"
// @Param dueFrom query string false "Due on or after (YYYY-MM-DD)"
// @Param dueTo query string false "Due on or before (YYYY-MM-DD)"
// @Param search query string false "Invoice number or student name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	n := h.list.normalizer(c)
	invoices, meta, err := h.invoices.List(c.Request.Context(), invoiceFilter(n))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.list.respond(c, "invoices", n, invoices, len(invoices), meta)
}

// Get godoc
// @Summary Get invoice with items
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} response.Envelope
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoice, err := h.invoices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invoice)
}

// Create godoc
// @Summary Issue invoice
// @Tags Invoices
// @Accept json
// @Produce json
// @Param payload body service.CreateInvoiceRequest true "Invoice payload"
// @Success 201 {object} response.Envelope
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoices.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, invoice)
}

// Update godoc
// @Summary Update invoice due date or notes
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param payload body service.UpdateInvoiceRequest true "Partial payload"
// @Success 200 {object} response.Envelope
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	var req service.UpdateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoices.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invoice)
}

// UpdateStatus godoc
// @Summary Set invoice status
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param payload body service.InvoiceStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Router /invoices/{id}/status [patch]
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	var req service.InvoiceStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoices.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invoice)
}

// Delete godoc
// @Summary Delete invoice
// @Tags Invoices
// @Param id path string true "Invoice ID"
// @Success 200 {object} response.Envelope
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	if err := h.invoices.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, "invoice deleted")
}

// Export godoc
// @Summary Export invoices
// @Tags Invoices
// @Produce octet-stream
// @Param format query string false "csv, pdf or xlsx"
// @Success 200 {file} file
// @Router /invoices/export [get]
func (h *InvoiceHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	n := h.list.normalizer(c)
	filter := invoiceFilter(n)
	h.list.reportWarnings(c, "invoices", n)
	file, err := h.exports.Invoices(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendExport(c, file)
}
