package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/pkg/database"
	appErrors "github.com/noah-isme/dorm-adp-api/pkg/errors"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

type transferRepository interface {
	List(ctx context.Context, filter models.TransferFilter) ([]models.TransferRequestDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.TransferRequestDetail, error)
	Create(ctx context.Context, transfer *models.TransferRequest) error
	Review(ctx context.Context, id string, status models.TransferStatus, note *string, reviewer string) error
	Delete(ctx context.Context, id string) error
}

// CreateTransferRequest asks to move a student to another room.
type CreateTransferRequest struct {
	StudentID string  `json:"studentId" validate:"required,uuid"`
	ToRoomID  string  `json:"toRoomId" validate:"required,uuid"`
	Reason    *string `json:"reason" validate:"omitempty,max=500"`
}

// ReviewTransferRequest carries the review decision.
type ReviewTransferRequest struct {
	Status string  `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	Note   *string `json:"note" validate:"omitempty,max=500"`
}

// TransferService handles room transfer requests.
type TransferService struct {
	repo      transferRepository
	students  studentLookup
	rooms     roomLookup
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewTransferService constructs the service.
func NewTransferService(repo transferRepository, students studentLookup, rooms roomLookup, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *TransferService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferService{repo: repo, students: students, rooms: rooms, validator: validate, metrics: metrics, logger: logger}
}

// List returns transfer requests and pagination metadata.
func (s *TransferService) List(ctx context.Context, filter models.TransferFilter) ([]models.TransferRequestDetail, *listing.Meta, error) {
	start := time.Now()
	transfers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, database.TranslateError(err, "transfers")
	}
	s.metrics.ObserveDBQuery("transfers.list", time.Since(start))
	return transfers, filter.Page.Meta(total), nil
}

// Get returns a transfer request by ID.
func (s *TransferService) Get(ctx context.Context, id string) (*models.TransferRequestDetail, error) {
	transfer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, database.TranslateError(err, "transfer request")
	}
	return transfer, nil
}

// Create files a pending request from the student's current room.
func (s *TransferService) Create(ctx context.Context, req CreateTransferRequest) (*models.TransferRequestDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid transfer payload")
	}
	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		return nil, database.TranslateError(err, "student")
	}
	if student.RoomID == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student has no room assigned")
	}
	if *student.RoomID == req.ToRoomID {
		return nil, fieldError("toRoomId", "must differ from the current room", "invalid transfer payload")
	}
	room, err := s.rooms.FindByID(ctx, req.ToRoomID)
	if err != nil {
		return nil, database.TranslateError(err, "room")
	}
	if room.Occupancy >= room.Capacity || (room.Status != models.RoomStatusAvailable && room.Status != models.RoomStatusFull) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "room is full or unavailable")
	}

	transfer := &models.TransferRequest{
		StudentID:  req.StudentID,
		FromRoomID: *student.RoomID,
		ToRoomID:   req.ToRoomID,
		Reason:     optionalString(req.Reason),
	}
	if err := s.repo.Create(ctx, transfer); err != nil {
		return nil, database.TranslateError(err, "transfer request")
	}
	s.logger.Info("transfer requested", zap.String("id", transfer.ID), zap.String("student_id", transfer.StudentID), zap.String("to_room_id", transfer.ToRoomID))
	return s.Get(ctx, transfer.ID)
}

// Review approves or rejects a pending request. Only PENDING requests can be reviewed.
func (s *TransferService) Review(ctx context.Context, id, reviewer string, req ReviewTransferRequest) (*models.TransferRequestDetail, error) {
	req.Status = upper(req.Status)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid transfer review")
	}
	if err := s.repo.Review(ctx, id, models.TransferStatus(req.Status), optionalString(req.Note), reviewer); err != nil {
		return nil, translateTransferError(err)
	}
	s.logger.Info("transfer reviewed", zap.String("id", id), zap.String("status", req.Status), zap.String("reviewer", reviewer))
	return s.Get(ctx, id)
}

// Delete removes a transfer request.
func (s *TransferService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return database.TranslateError(err, "transfer request")
	}
	return nil
}

func translateTransferError(err error) error {
	translated := translateOccupancyError(err)
	if appErrors.IsNotFound(translated) {
		return appErrors.Clone(appErrors.ErrNotFound, "transfer request not found")
	}
	return translated
}
