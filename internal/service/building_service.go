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

type buildingRepository interface {
	List(ctx context.Context, filter models.BuildingFilter) ([]models.BuildingDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.BuildingDetail, error)
	Create(ctx context.Context, building *models.Building) error
	Update(ctx context.Context, building *models.Building) error
	Delete(ctx context.Context, id string) error
}

// BuildingRequest is the payload for creating or replacing a building.
type BuildingRequest struct {
	Code    string `json:"code" validate:"required,max=20"`
	Name    string `json:"name" validate:"required,max=120"`
	Address string `json:"address" validate:"max=255"`
	Floors  int    `json:"floors" validate:"required,min=1,max=100"`
	Active  *bool  `json:"active"`
}

// BuildingService handles building use-cases.
type BuildingService struct {
	repo      buildingRepository
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewBuildingService constructs the service.
func NewBuildingService(repo buildingRepository, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *BuildingService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BuildingService{repo: repo, validator: validate, metrics: metrics, logger: logger}
}

// List returns buildings and pagination metadata.
func (s *BuildingService) List(ctx context.Context, filter models.BuildingFilter) ([]models.BuildingDetail, *listing.Meta, error) {
	start := time.Now()
	buildings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, database.TranslateError(err, "buildings")
	}
	s.metrics.ObserveDBQuery("buildings.list", time.Since(start))
	return buildings, filter.Page.Meta(total), nil
}

// Get returns a building by ID.
func (s *BuildingService) Get(ctx context.Context, id string) (*models.BuildingDetail, error) {
	building, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, database.TranslateError(err, "building")
	}
	return building, nil
}

// Create registers a building. Duplicate codes are reported as conflicts.
func (s *BuildingService) Create(ctx context.Context, req BuildingRequest) (*models.BuildingDetail, error) {
	req.Code = upper(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid building payload")
	}
	building := &models.Building{Code: req.Code, Name: req.Name, Address: strings.TrimSpace(req.Address), Floors: req.Floors, Active: true}
	if req.Active != nil {
		building.Active = *req.Active
	}
	if err := s.repo.Create(ctx, building); err != nil {
		return nil, database.TranslateError(err, "building")
	}
	return &models.BuildingDetail{Building: *building}, nil
}

// Update replaces a building's fields.
func (s *BuildingService) Update(ctx context.Context, id string, req BuildingRequest) (*models.BuildingDetail, error) {
	req.Code = upper(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid building payload")
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, database.TranslateError(err, "building")
	}
	building := detail.Building
	building.Code = req.Code
	building.Name = req.Name
	building.Address = strings.TrimSpace(req.Address)
	building.Floors = req.Floors
	if req.Active != nil {
		building.Active = *req.Active
	}
	if err := s.repo.Update(ctx, &building); err != nil {
		return nil, database.TranslateError(err, "building")
	}
	detail.Building = building
	return detail, nil
}

// Delete removes a building without rooms.
func (s *BuildingService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return database.TranslateError(err, "building")
	}
	return nil
}
