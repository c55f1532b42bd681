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

type maintenanceRepository interface {
	List(ctx context.Context, filter models.MaintenanceFilter) ([]models.MaintenanceRequestDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.MaintenanceRequestDetail, error)
	Create(ctx context.Context, request *models.MaintenanceRequest) error
	Update(ctx context.Context, request *models.MaintenanceRequest) error
	Delete(ctx context.Context, id string) error
}

// CreateMaintenanceRequest reports a problem in a room.
type CreateMaintenanceRequest struct {
	RoomID      string  `json:"roomId" validate:"required,uuid"`
	StudentID   *string `json:"studentId" validate:"omitnil,uuid"`
	Title       string  `json:"title" validate:"required,max=150"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	AssignedTo  *string `json:"assignedTo" validate:"omitempty,max=100"`
}

// UpdateMaintenanceRequest holds a partial update.
type UpdateMaintenanceRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=150"`
	Description *string `json:"description" validate:"omitnil,max=2000"`
	Priority    *string `json:"priority" validate:"omitnil,oneof=LOW MEDIUM HIGH URGENT"`
	AssignedTo  *string `json:"assignedTo" validate:"omitnil,max=100"`
}

// MaintenanceStatusRequest sets a new handling status.
type MaintenanceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING IN_PROGRESS COMPLETED CANCELLED"`
}

// MaintenanceService handles maintenance requests.
type MaintenanceService struct {
	repo      maintenanceRepository
	rooms     roomLookup
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewMaintenanceService constructs the service.
func NewMaintenanceService(repo maintenanceRepository, rooms roomLookup, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *MaintenanceService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaintenanceService{repo: repo, rooms: rooms, validator: validate, metrics: metrics, logger: logger, now: time.Now}
}

// List returns maintenance requests and pagination metadata.
func (s *MaintenanceService) List(ctx context.Context, filter models.MaintenanceFilter) ([]models.MaintenanceRequestDetail, *listing.Meta, error) {
	start := time.Now()
	requests, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, database.TranslateError(err, "maintenance requests")
	}
	s.metrics.ObserveDBQuery("maintenance.list", time.Since(start))
	return requests, filter.Page.Meta(total), nil
}

// Get returns a maintenance request by ID.
func (s *MaintenanceService) Get(ctx context.Context, id string) (*models.MaintenanceRequestDetail, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, database.TranslateError(err, "maintenance request")
	}
	return request, nil
}

// Create files a pending request. Priority defaults to MEDIUM.
func (s *MaintenanceService) Create(ctx context.Context, req CreateMaintenanceRequest) (*models.MaintenanceRequestDetail, error) {
	req.Priority = upper(req.Priority)
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid maintenance payload")
	}
	if _, err := s.rooms.FindByID(ctx, req.RoomID); err != nil {
		return nil, database.TranslateError(err, "room")
	}
	priority := models.PriorityMedium
	if req.Priority != "" {
		priority = models.MaintenancePriority(req.Priority)
	}
	request := &models.MaintenanceRequest{
		RoomID:      req.RoomID,
		StudentID:   optionalString(req.StudentID),
		Title:       req.Title,
		Description: optionalString(req.Description),
		Priority:    priority,
		Status:      models.MaintenancePending,
		AssignedTo:  optionalString(req.AssignedTo),
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, database.TranslateError(err, "maintenance request")
	}
	s.logger.Info("maintenance requested", zap.String("id", request.ID), zap.String("room_id", request.RoomID), zap.String("priority", string(priority)))
	return s.Get(ctx, request.ID)
}

// Update applies a partial change.
func (s *MaintenanceService) Update(ctx context.Context, id string, req UpdateMaintenanceRequest) (*models.MaintenanceRequestDetail, error) {
	if req.Priority != nil {
		v := upper(*req.Priority)
		req.Priority = &v
	}
	if req.Title != nil {
		v := strings.TrimSpace(*req.Title)
		req.Title = &v
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid maintenance payload")
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, database.TranslateError(err, "maintenance request")
	}
	request := detail.MaintenanceRequest
	if req.Title != nil {
		request.Title = *req.Title
	}
	if req.Description != nil {
		request.Description = optionalString(req.Description)
	}
	if req.Priority != nil {
		request.Priority = models.MaintenancePriority(*req.Priority)
	}
	if req.AssignedTo != nil {
		request.AssignedTo = optionalString(req.AssignedTo)
	}
	if err := s.repo.Update(ctx, &request); err != nil {
		return nil, database.TranslateError(err, "maintenance request")
	}
	detail.MaintenanceRequest = request
	return detail, nil
}

// UpdateStatus writes a new status. COMPLETED stamps resolved_at, any other status clears it.
func (s *MaintenanceService) UpdateStatus(ctx context.Context, id string, req MaintenanceStatusRequest) (*models.MaintenanceRequestDetail, error) {
	req.Status = upper(req.Status)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid maintenance status")
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, database.TranslateError(err, "maintenance request")
	}
	request := detail.MaintenanceRequest
	request.Status = models.MaintenanceStatus(req.Status)
	if request.Status == models.MaintenanceCompleted {
		resolved := s.now().UTC()
		request.ResolvedAt = &resolved
	} else {
		request.ResolvedAt = nil
	}
	if err := s.repo.Update(ctx, &request); err != nil {
		return nil, database.TranslateError(err, "maintenance request")
	}
	detail.MaintenanceRequest = request
	s.logger.Info("maintenance status changed", zap.String("id", id), zap.String("status", req.Status))
	return detail, nil
}

// Delete removes a maintenance request.
func (s *MaintenanceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return database.TranslateError(err, "maintenance request")
	}
	return nil
}
