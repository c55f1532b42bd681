package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/internal/repository"
	"github.com/noah-isme/dorm-adp-api/pkg/database"
	appErrors "github.com/noah-isme/dorm-adp-api/pkg/errors"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

type roomRepository interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.RoomDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.RoomDetail, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id string) error
}

type buildingLookup interface {
	FindByID(ctx context.Context, id string) (*models.BuildingDetail, error)
}

// CreateRoomRequest holds payload for creating rooms.
type CreateRoomRequest struct {
	BuildingID string  `json:"buildingId" validate:"required,uuid"`
	Number     string  `json:"number" validate:"required,max=20"`
	Floor      int     `json:"floor" validate:"min=0,max=100"`
	Capacity   int     `json:"capacity" validate:"required,min=1,max=20"`
	MonthlyFee float64 `json:"monthlyFee" validate:"gte=0"`
	Status     string  `json:"status" validate:"omitempty,oneof=AVAILABLE MAINTENANCE INACTIVE"`
	Type       string  `json:"type" validate:"omitempty,oneof=STANDARD DELUXE SUITE"`
}

// UpdateRoomRequest holds a partial room update.
type UpdateRoomRequest struct {
	BuildingID *string  `json:"buildingId" validate:"omitnil,uuid"`
	Number     *string  `json:"number" validate:"omitnil,min=1,max=20"`
	Floor      *int     `json:"floor" validate:"omitnil,min=0,max=100"`
	Capacity   *int     `json:"capacity" validate:"omitnil,min=1,max=20"`
	MonthlyFee *float64 `json:"monthlyFee" validate:"omitnil,gte=0"`
	Status     *string  `json:"status" validate:"omitnil,oneof=AVAILABLE FULL MAINTENANCE INACTIVE"`
	Type       *string  `json:"type" validate:"omitnil,oneof=STANDARD DELUXE SUITE"`
}

// RoomService handles room use-cases.
type RoomService struct {
	repo      roomRepository
	buildings buildingLookup
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewRoomService constructs the service.
func NewRoomService(repo roomRepository, buildings buildingLookup, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *RoomService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{repo: repo, buildings: buildings, validator: validate, metrics: metrics, logger: logger}
}

// List returns rooms and pagination metadata.
func (s *RoomService) List(ctx context.Context, filter models.RoomFilter) ([]models.RoomDetail, *listing.Meta, error) {
	start := time.Now()
	rooms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, database.TranslateError(err, "rooms")
	}
	s.metrics.ObserveDBQuery("rooms.list", time.Since(start))
	return rooms, filter.Page.Meta(total), nil
}

// Get returns a room by ID.
func (s *RoomService) Get(ctx context.Context, id string) (*models.RoomDetail, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, database.TranslateError(err, "room")
	}
	return room, nil
}

// Create adds an empty room to a building.
func (s *RoomService) Create(ctx context.Context, req CreateRoomRequest) (*models.RoomDetail, error) {
	req.Status = upper(req.Status)
	req.Type = upper(req.Type)
	req.Number = strings.TrimSpace(req.Number)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid room payload")
	}
	if _, err := s.buildings.FindByID(ctx, req.BuildingID); err != nil {
		return nil, database.TranslateError(err, "building")
	}
	room := &models.Room{
		BuildingID: req.BuildingID,
		Number:     req.Number,
		Floor:      req.Floor,
		Capacity:   req.Capacity,
		MonthlyFee: req.MonthlyFee,
		Status:     models.RoomStatusAvailable,
		Type:       models.RoomTypeStandard,
	}
	if req.Status != "" {
		room.Status = models.RoomStatus(req.Status)
	}
	if req.Type != "" {
		room.Type = models.RoomType(req.Type)
	}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, database.TranslateError(err, "room")
	}
	return s.Get(ctx, room.ID)
}

// Update applies a partial update. Capacity may not drop below the current occupancy.
func (s *RoomService) Update(ctx context.Context, id string, req UpdateRoomRequest) (*models.RoomDetail, error) {
	if req.Status != nil {
		v := upper(*req.Status)
		req.Status = &v
	}
	if req.Type != nil {
		v := upper(*req.Type)
		req.Type = &v
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid room payload")
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, database.TranslateError(err, "room")
	}
	room := detail.Room
	if req.BuildingID != nil && *req.BuildingID != room.BuildingID {
		if _, err := s.buildings.FindByID(ctx, *req.BuildingID); err != nil {
			return nil, database.TranslateError(err, "building")
		}
		room.BuildingID = *req.BuildingID
	}
	if req.Number != nil {
		room.Number = strings.TrimSpace(*req.Number)
	}
	if req.Floor != nil {
		room.Floor = *req.Floor
	}
	if req.Capacity != nil {
		if *req.Capacity < room.Occupancy {
			return nil, fieldError("capacity", fmt.Sprintf("must be at least the current occupancy %d", room.Occupancy), "invalid room payload")
		}
		room.Capacity = *req.Capacity
	}
	if req.MonthlyFee != nil {
		room.MonthlyFee = *req.MonthlyFee
	}
	if req.Type != nil {
		room.Type = models.RoomType(*req.Type)
	}
	if req.Status != nil {
		room.Status = models.RoomStatus(*req.Status)
		if room.Status == models.RoomStatusFull && room.Occupancy < room.Capacity {
			return nil, fieldError("status", "a room with free beds cannot be FULL", "invalid room payload")
		}
	}
	switch {
	case room.Status == models.RoomStatusAvailable && room.Occupancy >= room.Capacity:
		room.Status = models.RoomStatusFull
	case room.Status == models.RoomStatusFull && room.Occupancy < room.Capacity:
		room.Status = models.RoomStatusAvailable
	}
	if err := s.repo.Update(ctx, &room); err != nil {
		if errors.Is(err, repository.ErrCapacityBelowOccupancy) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "room occupancy changed; capacity is below the current occupancy")
		}
		return nil, database.TranslateError(err, "room")
	}
	return s.Get(ctx, id)
}

// Delete removes an empty room.
func (s *RoomService) Delete(ctx context.Context, id string) error {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return database.TranslateError(err, "room")
	}
	if detail.Occupancy > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "room still has residents")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return database.TranslateError(err, "room")
	}
	return nil
}
