package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/internal/service"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
	"github.com/noah-isme/dorm-adp-api/pkg/response"
)

type paymentService interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, *listing.Meta, error)
	Get(ctx context.Context, id string) (*models.PaymentDetail, error)
	Create(ctx context.Context, req service.CreatePaymentRequest) (*models.PaymentDetail, error)
	Delete(ctx context.Context, id string) error
}

// PaymentHandler exposes payment endpoints.
type PaymentHandler struct {
	payments paymentService
	list     ListSupport
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments paymentService, list ListSupport) *PaymentHandler {
	return &PaymentHandler{payments: payments, list: list}
}

// List godoc
// @Summary List payments
// @Tags Payments
// @Produce json
// @Param invoiceId query string false "Invoice ID"
// @Param studentId query string false "Student ID"
// @Param method query string false "CASH, BANK_TRANSFER, CARD or OTHER"
// @Param from query string false "Paid on or after (YYYY-MM-DD)"
// @Param to query string false "Paid on or before (YYYY-MM-DD)"
// @Param search query string false "Reference or student name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	n := h.list.normalizer(c)
	filter := models.PaymentFilter{
		InvoiceID: n.UUID("invoiceId"),
		StudentID: n.UUID("studentId"),
		Method:    n.Enum("method", models.PaymentMethods, string(models.PaymentOther)),
		From:      n.Date("from"),
		To:        n.Date("to"),
		Search:    n.String("search"),
		Page:      n.Page(),
	}
	payments, meta, err := h.payments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.list.respond(c, "payments", n, payments, len(payments), meta)
}

// Get godoc
// @Summary Get payment
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Router /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	payment, err := h.payments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment)
}

// Create godoc
// @Summary Record payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.CreatePaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Router /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req service.CreatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	payment, err := h.payments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// Delete godoc
// @Summary Delete payment
// @Tags Payments
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Router /payments/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	if err := h.payments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, "payment deleted")
}
