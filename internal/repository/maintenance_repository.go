package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

const (
	maintenanceColumns = `m.id, m.room_id, m.student_id, m.title, m.description, m.priority, m.status, m.assigned_to, m.resolved_at, m.created_at, m.updated_at,
        r.number AS room_number, b.name AS building_name, s.full_name AS student_name`
	maintenanceFrom = `FROM maintenance_requests m JOIN rooms r ON r.id = m.room_id JOIN buildings b ON b.id = r.building_id
        LEFT JOIN students s ON s.id = m.student_id`
)

// MaintenanceRepository manages maintenance requests.
type MaintenanceRepository struct {
	db *sqlx.DB
}

// NewMaintenanceRepository constructs the repository.
func NewMaintenanceRepository(db *sqlx.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

// List returns maintenance requests matching the filter, most urgent first.
func (r *MaintenanceRepository) List(ctx context.Context, filter models.MaintenanceFilter) ([]models.MaintenanceRequestDetail, int, error) {
	p := listing.NewPredicate()
	if filter.RoomID != "" {
		p.Eq("m.room_id", filter.RoomID)
	}
	p.Enum("m.status", filter.Status)
	p.Enum("m.priority", filter.Priority)
	p.RoomSearch(filter.RoomNumber, "r.number", "b.name")
	if filter.Search != "" {
		p.AnyContains(filter.Search, "m.title", "m.description")
	}

	const order = `CASE m.priority WHEN 'URGENT' THEN 0 WHEN 'HIGH' THEN 1 WHEN 'MEDIUM' THEN 2 ELSE 3 END, m.created_at DESC`
	requests := []models.MaintenanceRequestDetail{}
	total, err := listPage(ctx, r.db, &requests, maintenanceColumns, maintenanceFrom, p, order, filter.Page)
	if err != nil {
		return nil, 0, fmt.Errorf("list maintenance requests: %w", err)
	}
	return requests, total, nil
}

// FindByID fetches a maintenance request.
func (r *MaintenanceRepository) FindByID(ctx context.Context, id string) (*models.MaintenanceRequestDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE m.id = $1", maintenanceColumns, maintenanceFrom)
	var request models.MaintenanceRequestDetail
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// Create inserts a maintenance request.
func (r *MaintenanceRepository) Create(ctx context.Context, request *models.MaintenanceRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	request.CreatedAt = now
	request.UpdatedAt = now
	const query = `INSERT INTO maintenance_requests (id, room_id, student_id, title, description, priority, status, assigned_to, resolved_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := r.db.ExecContext(ctx, query, request.ID, request.RoomID, request.StudentID, request.Title, request.Description,
		request.Priority, request.Status, request.AssignedTo, request.ResolvedAt, request.CreatedAt, request.UpdatedAt); err != nil {
		return fmt.Errorf("create maintenance request: %w", err)
	}
	return nil
}

// Update persists every mutable field.
func (r *MaintenanceRepository) Update(ctx context.Context, request *models.MaintenanceRequest) error {
	request.UpdatedAt = time.Now().UTC()
	const query = `UPDATE maintenance_requests SET title = $2, description = $3, priority = $4, status = $5, assigned_to = $6, resolved_at = $7, updated_at = $8 WHERE id = $1`
	if err := execAffecting(ctx, r.db, query, request.ID, request.Title, request.Description, request.Priority, request.Status,
		request.AssignedTo, request.ResolvedAt, request.UpdatedAt); err != nil {
		return fmt.Errorf("update maintenance request: %w", err)
	}
	return nil
}

// Delete removes a maintenance request.
func (r *MaintenanceRepository) Delete(ctx context.Context, id string) error {
	if err := execAffecting(ctx, r.db, "DELETE FROM maintenance_requests WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete maintenance request: %w", err)
	}
	return nil
}
