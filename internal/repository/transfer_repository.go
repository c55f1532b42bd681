package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

// ErrTransferNotPending is returned when reviewing an already reviewed request.
var ErrTransferNotPending = errors.New("transfer request already reviewed")

// ErrStudentMoved is returned when approving a transfer whose student left the source room.
var ErrStudentMoved = errors.New("student no longer occupies the source room")

const (
	transferColumns = `t.id, t.student_id, t.from_room_id, t.to_room_id, t.reason, t.status, t.review_note, t.reviewed_by, t.reviewed_at, t.created_at,
        s.full_name AS student_name, s.student_code, fr.number AS from_room_number, tr.number AS to_room_number`
	transferFrom = `FROM transfer_requests t JOIN students s ON s.id = t.student_id
        JOIN rooms fr ON fr.id = t.from_room_id JOIN rooms tr ON tr.id = t.to_room_id`
)

// TransferRepository manages room transfer requests.
type TransferRepository struct {
	db *sqlx.DB
}

// NewTransferRepository constructs the repository.
func NewTransferRepository(db *sqlx.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

// List returns transfer requests matching the filter.
func (r *TransferRepository) List(ctx context.Context, filter models.TransferFilter) ([]models.TransferRequestDetail, int, error) {
	p := listing.NewPredicate()
	if filter.StudentID != "" {
		p.Eq("t.student_id", filter.StudentID)
	}
	p.Enum("t.status", filter.Status)
	if filter.RoomID != "" {
		p.Cond("(t.from_room_id = %[1]s OR t.to_room_id = %[1]s)", filter.RoomID)
	}
	if filter.Search != "" {
		p.AnyContains(filter.Search, "s.full_name", "s.student_code")
	}

	transfers := []models.TransferRequestDetail{}
	total, err := listPage(ctx, r.db, &transfers, transferColumns, transferFrom, p, "t.created_at DESC", filter.Page)
	if err != nil {
		return nil, 0, fmt.Errorf("list transfers: %w", err)
	}
	return transfers, total, nil
}

// FindByID fetches a transfer request.
func (r *TransferRepository) FindByID(ctx context.Context, id string) (*models.TransferRequestDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE t.id = $1", transferColumns, transferFrom)
	var transfer models.TransferRequestDetail
	if err := r.db.GetContext(ctx, &transfer, query, id); err != nil {
		return nil, err
	}
	return &transfer, nil
}

// Create inserts a pending transfer request.
func (r *TransferRepository) Create(ctx context.Context, transfer *models.TransferRequest) error {
	if transfer.ID == "" {
		transfer.ID = uuid.NewString()
	}
	transfer.Status = models.TransferPending
	transfer.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO transfer_requests (id, student_id, from_room_id, to_room_id, reason, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query, transfer.ID, transfer.StudentID, transfer.FromRoomID, transfer.ToRoomID,
		transfer.Reason, transfer.Status, transfer.CreatedAt); err != nil {
		return fmt.Errorf("create transfer: %w", err)
	}
	return nil
}

// Review records the decision on a pending request. Approval moves the student
// to the target room in the same transaction.
func (r *TransferRepository) Review(ctx context.Context, id string, status models.TransferStatus, note *string, reviewer string) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var current models.TransferRequest
		const lockQuery = `SELECT id, student_id, from_room_id, to_room_id, reason, status, review_note, reviewed_by, reviewed_at, created_at
        FROM transfer_requests WHERE id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &current, lockQuery, id); err != nil {
			return err
		}
		if current.Status != models.TransferPending {
			return ErrTransferNotPending
		}

		if status == models.TransferApproved {
			room, err := lockStudentRoom(ctx, tx, current.StudentID)
			if err != nil {
				return err
			}
			if room == nil || *room != current.FromRoomID {
				return ErrStudentMoved
			}
			if err := moveStudent(ctx, tx, current.StudentID, current.ToRoomID); err != nil {
				return err
			}
		}

		var reviewedBy *string
		if reviewer != "" {
			reviewedBy = &reviewer
		}
		const query = `UPDATE transfer_requests SET status = $2, review_note = $3, reviewed_by = $4, reviewed_at = $5 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, query, id, status, note, reviewedBy, time.Now().UTC()); err != nil {
			return fmt.Errorf("review transfer: %w", err)
		}
		return nil
	})
}

// Delete removes a transfer request.
func (r *TransferRepository) Delete(ctx context.Context, id string) error {
	if err := execAffecting(ctx, r.db, "DELETE FROM transfer_requests WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete transfer: %w", err)
	}
	return nil
}
