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

type vehicleService interface {
	List(ctx context.Context, filter models.VehicleFilter) ([]models.VehicleDetail, *listing.Meta, error)
	Get(ctx context.Context, id string) (*models.VehicleDetail, error)
	Create(ctx context.Context, req service.CreateVehicleRequest) (*models.VehicleDetail, error)
	Update(ctx context.Context, id string, req service.UpdateVehicleRequest) (*models.VehicleDetail, error)
	Delete(ctx context.Context, id string) error
}

// VehicleHandler exposes vehicle registration endpoints.
type VehicleHandler struct {
	vehicles vehicleService
	list     ListSupport
}

// NewVehicleHandler constructs VehicleHandler.
func NewVehicleHandler(vehicles vehicleService, list ListSupport) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles, list: list}
}

// List godoc
// @Summary List vehicles
// @Tags Vehicles
// @Produce json
// @Param studentId query string false "Student ID"
// @Param type query string false "MOTORBIKE, BICYCLE, CAR or OTHER"
// @Param status query string false "ACTIVE or INACTIVE"
// @Param search query string false "Plate or parking card number"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /vehicles [get]
func (h *VehicleHandler) List(c *gin.Context) {
	n := h.list.normalizer(c)
	filter := models.VehicleFilter{
		StudentID: n.UUID("studentId"),
		Type:      n.Enum("type", models.VehicleTypes, string(models.VehicleOther)),
		Status:    n.Enum("status", models.VehicleStatuses, ""),
		Search:    n.String("search"),
		Page:      n.Page(),
	}
	vehicles, meta, err := h.vehicles.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.list.respond(c, "vehicles", n, vehicles, len(vehicles), meta)
}

// Get godoc
// @Summary Get vehicle
// @Tags Vehicles
// @Produce json
// @Param id path string true "Vehicle ID"
// @Success 200 {object} response.Envelope
// @Router /vehicles/{id} [get]
func (h *VehicleHandler) Get(c *gin.Context) {
	vehicle, err := h.vehicles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, vehicle)
}

// Create godoc
// @Summary Register vehicle
// @Tags Vehicles
// @Accept json
// @Produce json
// @Param payload body service.CreateVehicleRequest true "Vehicle payload"
// @Success 201 {object} response.Envelope
// @Router /vehicles [post]
func (h *VehicleHandler) Create(c *gin.Context) {
	var req service.CreateVehicleRequest
	if !bindJSON(c, &req) {
		return
	}
	vehicle, err := h.vehicles.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, vehicle)
}

// Update godoc
// @Summary Update vehicle
// @Tags Vehicles
// @Accept json
// @Produce json
// @Param id path string true "Vehicle ID"
// @Param payload body service.UpdateVehicleRequest true "Partial payload"
// @Success 200 {object} response.Envelope
// @Router /vehicles/{id} [put]
func (h *VehicleHandler) Update(c *gin.Context) {
	var req service.UpdateVehicleRequest
	if !bindJSON(c, &req) {
		return
	}
	vehicle, err := h.vehicles.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, vehicle)
}

// Delete godoc
// @Summary Delete vehicle
// @Tags Vehicles
// @Param id path string true "Vehicle ID"
// @Success 200 {object} response.Envelope
// @Router /vehicles/{id} [delete]
func (h *VehicleHandler) Delete(c *gin.Context) {
	if err := h.vehicles.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, "vehicle deleted")
}

// ValidateCard godoc
// @Summary Check a parking card number
// @Tags Vehicles
// @Produce json
// @Param card path string true "Parking card number"
// @Success 200 {object} response.Envelope
// @Router /vehicles/parking-cards/{card}/validate [get]
func (h *VehicleHandler) ValidateCard(c *gin.Context) {
	card := c.Param("card")
	response.JSON(c, http.StatusOK, gin.H{"card": card, "valid": service.ValidateParkingCard(card)})
}
