package service

import (
	"context"
	"errors"
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

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
	AssignRoom(ctx context.Context, studentID, roomID string) error
	Checkout(ctx context.Context, studentID string) error
}

// StudentRequest holds payload for creating or replacing students.
type StudentRequest struct {
	StudentCode string  `json:"studentCode" validate:"required,max=30"`
	FullName    string  `json:"fullName" validate:"required,max=120"`
	Gender      string  `json:"gender" validate:"required,oneof=MALE FEMALE"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone" validate:"omitempty,max=30"`
	Faculty     *string `json:"faculty" validate:"omitempty,max=120"`
	Status      string  `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE GRADUATED"`
}

// AssignRoomRequest moves a student into a room.
type AssignRoomRequest struct {
	RoomID string `json:"roomId" validate:"required,uuid"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	rooms     roomLookup
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, rooms roomLookup, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, rooms: rooms, validator: validate, metrics: metrics, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *listing.Meta, error) {
	start := time.Now()
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, database.TranslateError(err, "students")
	}
	s.metrics.ObserveDBQuery("students.list", time.Since(start))
	return students, filter.Page.Meta(total), nil
}

// Get returns detailed student information.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, database.TranslateError(err, "student")
	}
	return student, nil
}

func (s *StudentService) normalize(req *StudentRequest) error {
	req.StudentCode = upper(req.StudentCode)
	req.FullName = strings.TrimSpace(req.FullName)
	req.Gender = upper(req.Gender)
	req.Status = upper(req.Status)
	req.Email = optionalString(req.Email)
	req.Phone = optionalString(req.Phone)
	req.Faculty = optionalString(req.Faculty)
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid student payload")
	}
	return nil
}

// Create registers a new student without a room.
func (s *StudentService) Create(ctx context.Context, req StudentRequest) (*models.StudentDetail, error) {
	if err := s.normalize(&req); err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByCode(ctx, req.StudentCode, "")
	if err != nil {
		return nil, database.TranslateError(err, "student")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student code already used")
	}
	student := &models.Student{
		StudentCode: req.StudentCode,
		FullName:    req.FullName,
		Gender:      req.Gender,
		Email:       req.Email,
		Phone:       req.Phone,
		Faculty:     req.Faculty,
		Status:      models.StudentStatusActive,
	}
	if req.Status != "" {
		student.Status = models.StudentStatus(req.Status)
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, database.TranslateError(err, "student")
	}
	return &models.StudentDetail{Student: *student}, nil
}

// Update modifies an existing student record.
func (s *StudentService) Update(ctx context.Context, id string, req StudentRequest) (*models.StudentDetail, error) {
	if err := s.normalize(&req); err != nil {
		return nil, err
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, database.TranslateError(err, "student")
	}
	exists, err := s.repo.ExistsByCode(ctx, req.StudentCode, id)
	if err != nil {
		return nil, database.TranslateError(err, "student")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student code already used")
	}
	student := detail.Student
	student.StudentCode = req.StudentCode
	student.FullName = req.FullName
	student.Gender = req.Gender
	student.Email = req.Email
	student.Phone = req.Phone
	student.Faculty = req.Faculty
	if req.Status != "" {
		student.Status = models.StudentStatus(req.Status)
	}
	if err := s.repo.Update(ctx, &student); err != nil {
		return nil, database.TranslateError(err, "student")
	}
	detail.Student = student
	return detail, nil
}

// Delete removes a student. Students referenced by invoices are kept and reported as conflicts.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return database.TranslateError(err, "student")
	}
	return nil
}

// AssignRoom checks a student into a room, releasing any previous bed.
func (s *StudentService) AssignRoom(ctx context.Context, id string, req AssignRoomRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid room assignment")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, database.TranslateError(err, "student")
	}
	if student.Status != models.StudentStatusActive {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only active students can be assigned a room")
	}
	if _, err := s.rooms.FindByID(ctx, req.RoomID); err != nil {
		return nil, database.TranslateError(err, "room")
	}
	if err := s.repo.AssignRoom(ctx, id, req.RoomID); err != nil {
		return nil, translateOccupancyError(err)
	}
	s.logger.Info("student assigned to room", zap.String("student_id", id), zap.String("room_id", req.RoomID))
	return s.Get(ctx, id)
}

// Checkout releases the student's bed.
func (s *StudentService) Checkout(ctx context.Context, id string) (*models.StudentDetail, error) {
	if err := s.repo.Checkout(ctx, id); err != nil {
		return nil, translateOccupancyError(err)
	}
	s.logger.Info("student checked out", zap.String("student_id", id))
	return s.Get(ctx, id)
}

// translateOccupancyError maps room movement failures onto typed errors.
func translateOccupancyError(err error) error {
	switch {
	case errors.Is(err, repository.ErrRoomUnavailable):
		return appErrors.Clone(appErrors.ErrConflict, "room is full or unavailable")
	case errors.Is(err, repository.ErrAlreadyInRoom):
		return appErrors.Clone(appErrors.ErrConflict, "student already occupies this room")
	case errors.Is(err, repository.ErrNoRoomAssigned):
		return appErrors.Clone(appErrors.ErrConflict, "student has no room assigned")
	case errors.Is(err, repository.ErrStudentMoved):
		return appErrors.Clone(appErrors.ErrConflict, "student no longer occupies the source room")
	case errors.Is(err, repository.ErrTransferNotPending):
		return appErrors.Clone(appErrors.ErrConflict, "transfer request already reviewed")
	}
	return database.TranslateError(err, "student")
}
