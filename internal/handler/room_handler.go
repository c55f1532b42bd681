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

type roomService interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.RoomDetail, *listing.Meta, error)
	Get(ctx context.Context, id string) (*models.RoomDetail, error)
	Create(ctx context.Context, req service.CreateRoomRequest) (*models.RoomDetail, error)
	Update(ctx context.Context, id string, req service.UpdateRoomRequest) (*models.RoomDetail, error)
	Delete(ctx context.Context, id string) error
}

// RoomHandler exposes room endpoints.
type RoomHandler struct {
	rooms roomService
	list  ListSupport
}

// NewRoomHandler constructs RoomHandler.
func NewRoomHandler(rooms roomService, list ListSupport) *RoomHandler {
	return &RoomHandler{rooms: rooms, list: list}
}

// List godoc
// @Summary List rooms
// @Tags Rooms
// @Produce json
// @Param buildingId query string false "Building ID"
// @Param status query string false "AVAILABLE, FULL, MAINTENANCE or INACTIVE"
// @Param type query string false "STANDARD, DELUXE or SUITE"
// @Param minCapacity query int false "Minimum capacity"
// @Param minFee query number false "Minimum monthly fee"
// @Param maxFee query number false "Maximum monthly fee"
// @Param available query bool false "Only rooms with free beds"
// @Param search query string false "Room number, building name or '306 (B3)'"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *RoomHandler) List(c *gin.Context) {
	n := h.list.normalizer(c)
	filter := models.RoomFilter{
		BuildingID:  n.UUID("buildingId"),
		Status:      n.Enum("status", models.RoomStatuses, ""),
		Type:        n.Enum("type", models.RoomTypes, ""),
		MinCapacity: n.IntInRange("minCapacity", 1, 100),
		MinFee:      n.Float("minFee"),
		MaxFee:      n.Float("maxFee"),
		Available:   n.Bool("available"),
		Search:      n.String("search"),
		Page:        n.Page(),
	}
	rooms, meta, err := h.rooms.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.list.respond(c, "rooms", n, rooms, len(rooms), meta)
}

// Get godoc
// @Summary Get room
// @Tags Rooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id} [get]
func (h *RoomHandler) Get(c *gin.Context) {
	room, err := h.rooms.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room)
}

// Create godoc
// @Summary Create room
// @Tags Rooms
// @Accept json
// @Produce json
// @Param payload body service.CreateRoomRequest true "Room payload"
// @Success 201 {object} response.Envelope
// @Router /rooms [post]
func (h *RoomHandler) Create(c *gin.Context) {
	var req service.CreateRoomRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := h.rooms.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, room)
}

// Update godoc
// @Summary Update room
// @Tags Rooms
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Param payload body service.UpdateRoomRequest true "Partial payload"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id} [put]
func (h *RoomHandler) Update(c *gin.Context) {
	var req service.UpdateRoomRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := h.rooms.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room)
}

// Delete godoc
// @Summary Delete room
// @Tags Rooms
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id} [delete]
func (h *RoomHandler) Delete(c *gin.Context) {
	if err := h.rooms.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, "room deleted")
}
