package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/pkg/database"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

type utilityReadingRepository interface {
	List(ctx context.Context, filter models.UtilityReadingFilter) ([]models.UtilityReadingDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.UtilityReadingDetail, error)
	Previous(ctx context.Context, reading models.UtilityReading) (*models.UtilityReading, error)
	Create(ctx context.Context, reading *models.UtilityReading) error
	Update(ctx context.Context, reading *models.UtilityReading) error
	Delete(ctx context.Context, id string) error
}

type roomLookup interface {
	FindByID(ctx context.Context, id string) (*models.RoomDetail, error)
}

// CreateUtilityReadingRequest holds payload for recording a meter reading.
type CreateUtilityReadingRequest struct {
	RoomID       string   `json:"roomId" validate:"required,uuid"`
	Type         string   `json:"type" validate:"required,oneof=ELECTRICITY WATER OTHER"`
	ReadingDate  string   `json:"readingDate" validate:"required"`
	IndexValue   *float64 `json:"indexValue" validate:"required,gte=0"`
	BillingMonth int      `json:"billingMonth" validate:"required,min=1,max=12"`
	BillingYear  int      `json:"billingYear" validate:"required,min=2000,max=2100"`
	Notes        *string  `json:"notes" validate:"omitempty,max=500"`
}

// UpdateUtilityReadingRequest holds a partial update. Absent fields keep their value.
type UpdateUtilityReadingRequest struct {
	ReadingDate  *string  `json:"readingDate"`
	IndexValue   *float64 `json:"indexValue" validate:"omitnil,gte=0"`
	BillingMonth *int     `json:"billingMonth" validate:"omitnil,min=1,max=12"`
	BillingYear  *int     `json:"billingYear" validate:"omitnil,min=2000,max=2100"`
	Notes        *string  `json:"notes" validate:"omitnil,max=500"`
}

// UtilityReadingService handles meter reading use-cases.
type UtilityReadingService struct {
	repo      utilityReadingRepository
	rooms     roomLookup
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewUtilityReadingService constructs the service.
func NewUtilityReadingService(repo utilityReadingRepository, rooms roomLookup, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *UtilityReadingService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UtilityReadingService{repo: repo, rooms: rooms, validator: validate, metrics: metrics, logger: logger}
}

// List returns one page of readings and its pagination block.
func (s *UtilityReadingService) List(ctx context.Context, filter models.UtilityReadingFilter) ([]models.UtilityReadingDetail, *listing.Meta, error) {
	start := time.Now()
	readings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, database.TranslateError(err, "utility readings")
	}
	s.metrics.ObserveDBQuery("utility_readings.list", time.Since(start))
	return readings, filter.Page.Meta(total), nil
}

// Get returns a reading by ID.
func (s *UtilityReadingService) Get(ctx context.Context, id string) (*models.UtilityReadingDetail, error) {
	reading, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, database.TranslateError(err, "utility reading")
	}
	return reading, nil
}

// Create records a new reading for an existing room.
func (s *UtilityReadingService) Create(ctx context.Context, req CreateUtilityReadingRequest) (*models.UtilityReadingDetail, error) {
	req.Type = upper(req.Type)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid utility reading payload")
	}
	date, err := parseDay(req.ReadingDate)
	if err != nil {
		return nil, fieldError("readingDate", "must be a date (YYYY-MM-DD)", "invalid utility reading payload")
	}
	if _, err := s.rooms.FindByID(ctx, req.RoomID); err != nil {
		return nil, database.TranslateError(err, "room")
	}

	reading := &models.UtilityReading{
		RoomID:       req.RoomID,
		Type:         models.UtilityKind(req.Type),
		ReadingDate:  date,
		IndexValue:   *req.IndexValue,
		BillingMonth: req.BillingMonth,
		BillingYear:  req.BillingYear,
		Notes:        optionalString(req.Notes),
	}
	if err := s.repo.Create(ctx, reading); err != nil {
		return nil, database.TranslateError(err, "utility reading")
	}
	s.logger.Info("utility reading recorded", zap.String("id", reading.ID), zap.String("room_id", reading.RoomID), zap.String("type", req.Type))
	return s.Get(ctx, reading.ID)
}

// Update applies a partial update to a reading.
func (s *UtilityReadingService) Update(ctx context.Context, id string, req UpdateUtilityReadingRequest) (*models.UtilityReadingDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid utility reading payload")
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, database.TranslateError(err, "utility reading")
	}
	reading := detail.UtilityReading
	if req.ReadingDate != nil {
		date, err := parseDay(*req.ReadingDate)
		if err != nil {
			return nil, fieldError("readingDate", "must be a date (YYYY-MM-DD)", "invalid utility reading payload")
		}
		reading.ReadingDate = date
	}
	if req.IndexValue != nil {
		reading.IndexValue = *req.IndexValue
	}
	if req.BillingMonth != nil {
		reading.BillingMonth = *req.BillingMonth
	}
	if req.BillingYear != nil {
		reading.BillingYear = *req.BillingYear
	}
	if req.Notes != nil {
		reading.Notes = optionalString(req.Notes)
	}
	if err := s.repo.Update(ctx, &reading); err != nil {
		return nil, database.TranslateError(err, "utility reading")
	}
	detail.UtilityReading = reading
	return detail, nil
}

// Delete removes a reading; unknown IDs are reported as not found.
func (s *UtilityReadingService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return database.TranslateError(err, "utility reading")
	}
	s.logger.Info("utility reading deleted", zap.String("id", id))
	return nil
}

// Consumption compares a reading with the previous reading of the same room and kind.
func (s *UtilityReadingService) Consumption(ctx context.Context, id string) (*models.UtilityConsumption, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, database.TranslateError(err, "utility reading")
	}
	result := &models.UtilityConsumption{Reading: *detail}
	previous, err := s.repo.Previous(ctx, detail.UtilityReading)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result, nil
		}
		return nil, database.TranslateError(err, "utility reading")
	}
	consumption := detail.IndexValue - previous.IndexValue
	result.Previous = previous
	result.Consumption = &consumption
	if consumption < 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("index %.2f is lower than the previous reading %.2f", detail.IndexValue, previous.IndexValue))
	}
	return result, nil
}
