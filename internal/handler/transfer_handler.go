package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dorm-adp-api/internal/middleware"
	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/internal/service"
	appErrors "github.com/noah-isme/dorm-adp-api/pkg/errors"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
	"github.com/noah-isme/dorm-adp-api/pkg/response"
)

type transferService interface {
	List(ctx context.Context, filter models.TransferFilter) ([]models.TransferRequestDetail, *listing.Meta, error)
	Get(ctx context.Context, id string) (*models.TransferRequestDetail, error)
	Create(ctx context.Context, req service.CreateTransferRequest) (*models.TransferRequestDetail, error)
	Review(ctx context.Context, id, reviewer string, req service.ReviewTransferRequest) (*models.TransferRequestDetail, error)
	Delete(ctx context.Context, id string) error
}

// TransferHandler exposes room transfer endpoints.
type TransferHandler struct {
	transfers transferService
	list      ListSupport
}

// NewTransferHandler constructs TransferHandler.
func NewTransferHandler(transfers transferService, list ListSupport) *TransferHandler {
	return &TransferHandler{transfers: transfers, list: list}
}

// List godoc
// @Summary List transfer requests
// @Tags Transfers
// @Produce json
// @Param studentId query string false "Student ID"
// @Param status query string false "PENDING, APPROVED or REJECTED"
// @Param roomId query string false "Source or target room"
// @Param search query string false "Student name or code"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /transfers [get]
func (h *TransferHandler) List(c *gin.Context) {
	n := h.list.normalizer(c)
	filter := models.TransferFilter{
		StudentID: n.UUID("studentId"),
		Status:    n.Enum("status", models.TransferStatuses, ""),
		RoomID:    n.UUID("roomId"),
		Search:    n.String("search"),
		Page:      n.Page(),
	}
	transfers, meta, err := h.transfers.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.list.respond(c, "transfers", n, transfers, len(transfers), meta)
}

// Get godoc
// @Summary Get transfer request
// @Tags Transfers
// @Produce json
// @Param id path string true "Transfer ID"
// @Success 200 {object} response.Envelope
// @Router /transfers/{id} [get]
func (h *TransferHandler) Get(c *gin.Context) {
	transfer, err := h.transfers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, transfer)
}

// Create godoc
// @Summary Request a room transfer
// @Tags Transfers
// @Accept json
// @Produce json
// @Param payload body service.CreateTransferRequest true "Transfer payload"
// @Success 201 {object} response.Envelope
// @Router /transfers [post]
func (h *TransferHandler) Create(c *gin.Context) {
	var req service.CreateTransferRequest
	if !bindJSON(c, &req) {
		return
	}
	transfer, err := h.transfers.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, transfer)
}

// Review godoc
// @Summary Approve or reject a pending transfer
// @Tags Transfers
// @Accept json
// @Produce json
// @Param id path string true "Transfer ID"
// @Param payload body service.ReviewTransferRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /transfers/{id}/review [patch]
func (h *TransferHandler) Review(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok || claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.ReviewTransferRequest
	if !bindJSON(c, &req) {
		return
	}
	transfer, err := h.transfers.Review(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, transfer)
}

// Delete godoc
// @Summary Delete transfer request
// @Tags Transfers
// @Param id path string true "Transfer ID"
// @Success 200 {object} response.Envelope
// @Router /transfers/{id} [delete]
func (h *TransferHandler) Delete(c *gin.Context) {
	if err := h.transfers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, "transfer request deleted")
}
