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

type buildingService interface {
	List(ctx context.Context, filter models.BuildingFilter) ([]models.BuildingDetail, *listing.Meta, error)
	Get(ctx context.Context, id string) (*models.BuildingDetail, error)
	Create(ctx context.Context, req service.BuildingRequest) (*models.BuildingDetail, error)
	Update(ctx context.Context, id string, req service.BuildingRequest) (*models.BuildingDetail, error)
	Delete(ctx context.Context, id string) error
}

// BuildingHandler exposes building endpoints.
type BuildingHandler struct {
	buildings buildingService
	list      ListSupport
}

// NewBuildingHandler constructs BuildingHandler.
func NewBuildingHandler(buildings buildingService, list ListSupport) *BuildingHandler {
	return &BuildingHandler{buildings: buildings, list: list}
}

// List godoc
// @Summary List buildings
// @Tags Buildings
// @Produce json
// @Param active query bool false "Filter by active state"
// @Param search query string false "Search code or name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /buildings [get]
func (h *BuildingHandler) List(c *gin.Context) {
	n := h.list.normalizer(c)
	filter := models.BuildingFilter{Active: n.Bool("active"), Search: n.String("search"), Page: n.Page()}
	buildings, meta, err := h.buildings.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.list.respond(c, "buildings", n, buildings, len(buildings), meta)
}

// Get godoc
// @Summary Get building
// @Tags Buildings
// @Produce json
// @Param id path string true "Building ID"
// @Success 200 {object} response.Envelope
// @Router /buildings/{id} [get]
func (h *BuildingHandler) Get(c *gin.Context) {
	building, err := h.buildings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, building)
}

// Create godoc
// @Summary Create building
// @Tags Buildings
// @Accept json
// @Produce json
// @Param payload body service.BuildingRequest true "Building payload"
// @Success 201 {object} response.Envelope
// @Router /buildings [post]
func (h *BuildingHandler) Create(c *gin.Context) {
	var req service.BuildingRequest
	if !bindJSON(c, &req) {
		return
	}
	building, err := h.buildings.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, building)
}

// Update godoc
// @Summary Update building
// @Tags Buildings
// @Accept json
// @Produce json
// @Param id path string true "Building ID"
// @Param payload body service.BuildingRequest true "Building payload"
// @Success 200 {object} response.Envelope
// @Router /buildings/{id} [put]
func (h *BuildingHandler) Update(c *gin.Context) {
	var req service.BuildingRequest
	if !bindJSON(c, &req) {
		return
	}
	building, err := h.buildings.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, building)
}

// Delete godoc
// @Summary Delete building
// @Tags Buildings
// @Param id path string true "Building ID"
// @Success 200 {object} response.Envelope
// @Router /buildings/{id} [delete]
func (h *BuildingHandler) Delete(c *gin.Context) {
	if err := h.buildings.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, "building deleted")
}
