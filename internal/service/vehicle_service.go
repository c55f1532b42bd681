package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/pkg/database"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

const parkingCardAttempts = 3

type vehicleRepository interface {
	List(ctx context.Context, filter models.VehicleFilter) ([]models.VehicleDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.VehicleDetail, error)
	Create(ctx context.Context, vehicle *models.Vehicle) error
	Update(ctx context.Context, vehicle *models.Vehicle) error
	Delete(ctx context.Context, id string) error
}

// CreateVehicleRequest registers a vehicle for a student.
type CreateVehicleRequest struct {
	StudentID   string  `json:"studentId" validate:"required,uuid"`
	PlateNumber string  `json:"plateNumber" validate:"required,max=20"`
	Type        string  `json:"type" validate:"required,oneof=MOTORBIKE BICYCLE CAR OTHER"`
	Brand       *string `json:"brand" validate:"omitempty,max=60"`
	Color       *string `json:"color" validate:"omitempty,max=30"`
}

// UpdateVehicleRequest holds a partial vehicle update.
type UpdateVehicleRequest struct {
	PlateNumber *string `json:"plateNumber" validate:"omitnil,min=1,max=20"`
	Type        *string `json:"type" validate:"omitnil,oneof=MOTORBIKE BICYCLE CAR OTHER"`
	Brand       *string `json:"brand" validate:"omitnil,max=60"`
	Color       *string `json:"color" validate:"omitnil,max=30"`
	Status      *string `json:"status" validate:"omitnil,oneof=ACTIVE INACTIVE"`
}

// VehicleService handles vehicle registrations.
type VehicleService struct {
	repo      vehicleRepository
	students  studentLookup
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
	newCard   func(models.VehicleType, time.Time) (string, error)
}

// NewVehicleService constructs the service.
func NewVehicleService(repo vehicleRepository, students studentLookup, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *VehicleService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VehicleService{
		repo:      repo,
		students:  students,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
		newCard:   GenerateParkingCard,
	}
}

// List returns vehicles and pagination metadata.
func (s *VehicleService) List(ctx context.Context, filter models.VehicleFilter) ([]models.VehicleDetail, *listing.Meta, error) {
	start := time.Now()
	vehicles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, database.TranslateError(err, "vehicles")
	}
	s.metrics.ObserveDBQuery("vehicles.list", time.Since(start))
	return vehicles, filter.Page.Meta(total), nil
}

// Get returns a vehicle by ID.
func (s *VehicleService) Get(ctx context.Context, id string) (*models.VehicleDetail, error) {
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, database.TranslateError(err, "vehicle")
	}
	return vehicle, nil
}

// Create registers a vehicle and issues its parking card.
func (s *VehicleService) Create(ctx context.Context, req CreateVehicleRequest) (*models.VehicleDetail, error) {
	req.Type = upper(req.Type)
	req.PlateNumber = normalizePlate(req.PlateNumber)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid vehicle payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		return nil, database.TranslateError(err, "student")
	}

	now := s.now().UTC()
	vehicle := &models.Vehicle{
		StudentID:    req.StudentID,
		PlateNumber:  req.PlateNumber,
		Type:         models.VehicleType(req.Type),
		Brand:        optionalString(req.Brand),
		Color:        optionalString(req.Color),
		Status:       "ACTIVE",
		RegisteredAt: now,
	}
	for attempt := 1; ; attempt++ {
		card, err := s.newCard(vehicle.Type, now)
		if err != nil {
			return nil, database.TranslateError(err, "vehicle")
		}
		vehicle.ID = ""
		vehicle.ParkingCardNumber = card
		err = s.repo.Create(ctx, vehicle)
		if err == nil {
			break
		}
		if !strings.Contains(database.ViolatedConstraint(err), "parking_card") || attempt == parkingCardAttempts {
			return nil, database.TranslateError(err, "vehicle")
		}
		s.metrics.RecordCodeCollision("parking_card")
		s.logger.Warn("parking card collision, retrying", zap.String("card", card), zap.Int("attempt", attempt))
	}
	s.logger.Info("vehicle registered", zap.String("id", vehicle.ID), zap.String("card", vehicle.ParkingCardNumber))
	return s.Get(ctx, vehicle.ID)
}

// Update modifies a vehicle. The parking card never changes.
func (s *VehicleService) Update(ctx context.Context, id string, req UpdateVehicleRequest) (*models.VehicleDetail, error) {
	if req.Type != nil {
		v := upper(*req.Type)
		req.Type = &v
	}
	if req.Status != nil {
		v := upper(*req.Status)
		req.Status = &v
	}
	if req.PlateNumber != nil {
		v := normalizePlate(*req.PlateNumber)
		req.PlateNumber = &v
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid vehicle payload")
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, database.TranslateError(err, "vehicle")
	}
	vehicle := detail.Vehicle
	if req.PlateNumber != nil {
		vehicle.PlateNumber = *req.PlateNumber
	}
	if req.Type != nil {
		vehicle.Type = models.VehicleType(*req.Type)
	}
	if req.Brand != nil {
		vehicle.Brand = optionalString(req.Brand)
	}
	if req.Color != nil {
		vehicle.Color = optionalString(req.Color)
	}
	if req.Status != nil {
		vehicle.Status = *req.Status
	}
	if err := s.repo.Update(ctx, &vehicle); err != nil {
		return nil, database.TranslateError(err, "vehicle")
	}
	detail.Vehicle = vehicle
	return detail, nil
}

// Delete removes a vehicle.
func (s *VehicleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return database.TranslateError(err, "vehicle")
	}
	return nil
}

func normalizePlate(plate string) string {
	return strings.Join(strings.Fields(strings.ToUpper(plate)), " ")
}
