package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

// ErrAlreadyInRoom is returned when a student is assigned to the room they occupy.
var ErrAlreadyInRoom = errors.New("student already occupies this room")

// ErrNoRoomAssigned is returned when checking out a student without a room.
var ErrNoRoomAssigned = errors.New("student has no room assigned")

const (
	studentColumns = `s.id, s.student_code, s.full_name, s.gender, s.email, s.phone, s.faculty, s.room_id, s.status, s.checked_in_at, s.created_at, s.updated_at,
        r.number AS room_number, b.name AS building_name`
	studentFrom = "FROM students s LEFT JOIN rooms r ON r.id = s.room_id LEFT JOIN buildings b ON b.id = r.building_id"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	p := listing.NewPredicate()
	if filter.RoomID != "" {
		p.Eq("s.room_id", filter.RoomID)
	}
	if filter.BuildingID != "" {
		p.Eq("r.building_id", filter.BuildingID)
	}
	p.Enum("s.status", filter.Status)
	p.Enum("s.gender", filter.Gender)
	if filter.Search != "" {
		p.AnyContains(filter.Search, "s.full_name", "s.student_code")
	}

	students := []models.StudentDetail{}
	total, err := listPage(ctx, r.db, &students, studentColumns, studentFrom, p, "s.full_name ASC, s.created_at DESC", filter.Page)
	if err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student detail by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE s.id = $1", studentColumns, studentFrom)
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsByCode checks if a student with the given code exists, optionally excluding an ID.
func (r *StudentRepository) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE student_code = $1"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check student code: %w", err)
	}
	return true, nil
}

// Create inserts a new student record. Room assignment goes through AssignRoom.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, student_code, full_name, gender, email, phone, faculty, status, created_at, updated_at)
        VALUES (:id, :student_code, :full_name, :gender, :email, :phone, :faculty, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies the profile fields of a student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET student_code = $2, full_name = $3, gender = $4, email = $5, phone = $6, faculty = $7, status = $8, updated_at = $9 WHERE id = $1`
	if err := execAffecting(ctx, r.db, query, student.ID, student.StudentCode, student.FullName, student.Gender, student.Email,
		student.Phone, student.Faculty, student.Status, student.UpdatedAt); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student, releasing their bed first.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		roomID, err := lockStudentRoom(ctx, tx, id)
		if err != nil {
			return err
		}
		if roomID != nil {
			if err := vacateRoom(ctx, tx, *roomID); err != nil {
				return err
			}
		}
		if err := execAffecting(ctx, tx, "DELETE FROM students WHERE id = $1", id); err != nil {
			return fmt.Errorf("delete student: %w", err)
		}
		return nil
	})
}

// AssignRoom moves a student into roomID, releasing their previous bed.
func (r *StudentRepository) AssignRoom(ctx context.Context, studentID, roomID string) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return moveStudent(ctx, tx, studentID, roomID)
	})
}

// Checkout releases the student's bed.
func (r *StudentRepository) Checkout(ctx context.Context, studentID string) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		current, err := lockStudentRoom(ctx, tx, studentID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrNoRoomAssigned
		}
		if err := vacateRoom(ctx, tx, *current); err != nil {
			return err
		}
		const query = `UPDATE students SET room_id = NULL, checked_in_at = NULL, updated_at = $2 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, query, studentID, time.Now().UTC()); err != nil {
			return fmt.Errorf("checkout student: %w", err)
		}
		return nil
	})
}

// lockStudentRoom locks the student row and returns the room they occupy.
func lockStudentRoom(ctx context.Context, tx dbtx, studentID string) (*string, error) {
	var roomID *string
	if err := tx.GetContext(ctx, &roomID, "SELECT room_id FROM students WHERE id = $1 FOR UPDATE", studentID); err != nil {
		return nil, err
	}
	return roomID, nil
}

// moveStudent assigns roomID inside an open transaction.
func moveStudent(ctx context.Context, tx dbtx, studentID, roomID string) error {
	current, err := lockStudentRoom(ctx, tx, studentID)
	if err != nil {
		return err
	}
	if current != nil && *current == roomID {
		return ErrAlreadyInRoom
	}
	if err := occupyRoom(ctx, tx, roomID); err != nil {
		return err
	}
	if current != nil {
		if err := vacateRoom(ctx, tx, *current); err != nil {
			return err
		}
	}
	const query = `UPDATE students SET room_id = $2, checked_in_at = $3, updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, studentID, roomID, time.Now().UTC()); err != nil {
		return fmt.Errorf("assign room: %w", err)
	}
	return nil
}
