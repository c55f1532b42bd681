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

type maintenanceService interface {
	List(ctx context.Context, filter models.MaintenanceFilter) ([]models.MaintenanceRequestDetail, *listing.Meta, error)
	Get(ctx context.Context, id string) (*models.MaintenanceRequestDetail, error)
	Create(ctx context.Context, req service.CreateMaintenanceRequest) (*models.MaintenanceRequestDetail, error)
	Update(ctx context.Context, id string, req service.UpdateMaintenanceRequest) (*models.MaintenanceRequestDetail, error)
	UpdateStatus(ctx context.Context, id string, req service.MaintenanceStatusRequest) (*models.MaintenanceRequestDetail, error)
	Delete(ctx context.Context, id string) error
}

// MaintenanceHandler exposes maintenance request endpoints.
type MaintenanceHandler struct {
	requests maintenanceService
	list     ListSupport
}

// NewMaintenanceHandler constructs MaintenanceHandler.
func NewMaintenanceHandler(requests maintenanceService, list ListSupport) *MaintenanceHandler {
	return &MaintenanceHandler{requests: requests, list: list}
}

// List godoc
// @Summary List maintenance requests
// @Tags Maintenance
// @Produce json
// @Param roomId query string false "Room ID"
// @Param status query string false "PENDING, IN_PROGRESS, COMPLETED or CANCELLED"
// @Param priority query string false "LOW, MEDIUM, HIGH or URGENT"
// @Param roomNumber query string false "Room number, building name or '306 (B3)'"
// @Param search query string false "Title or description"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /maintenance [get]
func (h *MaintenanceHandler) List(c *gin.Context) {
	n := h.list.normalizer(c)
	filter := models.MaintenanceFilter{
		RoomID:     n.UUID("roomId"),
		Status:     n.Enum("status", models.MaintenanceStatuses, ""),
		Priority:   n.Enum("priority", models.MaintenancePriorities, ""),
		RoomNumber: n.String("roomNumber"),
		Search:     n.String("search"),
		Page:       n.Page(),
	}
	requests, meta, err := h.requests.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.list.respond(c, "maintenance", n, requests, len(requests), meta)
}

// Get godoc
// @Summary Get maintenance request
// @Tags Maintenance
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /maintenance/{id} [get]
func (h *MaintenanceHandler) Get(c *gin.Context) {
	request, err := h.requests.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request)
}

// Create godoc
// @Summary Report a maintenance problem
// @Tags Maintenance
// @Accept json
// @Produce json
// @Param payload body service.CreateMaintenanceRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Router /maintenance [post]
func (h *MaintenanceHandler) Create(c *gin.Context) {
	var req service.CreateMaintenanceRequest
	if !bindJSON(c, &req) {
		return
	}
	request, err := h.requests.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// Update godoc
// @Summary Update maintenance request
// @Tags Maintenance
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body service.UpdateMaintenanceRequest true "Partial payload"
// @Success 200 {object} response.Envelope
// @Router /maintenance/{id} [put]
func (h *MaintenanceHandler) Update(c *gin.Context) {
	var req service.UpdateMaintenanceRequest
	if !bindJSON(c, &req) {
		return
	}
	request, err := h.requests.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request)
}

// UpdateStatus godoc
// @Summary Set maintenance status
// @Tags Maintenance
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body service.MaintenanceStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Router /maintenance/{id}/status [patch]
func (h *MaintenanceHandler) UpdateStatus(c *gin.Context) {
	var req service.MaintenanceStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	request, err := h.requests.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request)
}

// Delete godoc
// @Summary Delete maintenance request
// @Tags Maintenance
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /maintenance/{id} [delete]
func (h *MaintenanceHandler) Delete(c *gin.Context) {
	if err := h.requests.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, "maintenance request deleted")
}
