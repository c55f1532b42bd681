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
	vehicleColumns = `v.id, v.student_id, v.plate_number, v.type, v.brand, v.color, v.parking_card_number, v.status, v.registered_at, v.created_at, v.updated_at,
        s.full_name AS student_name, s.student_code`
	vehicleFrom = "FROM vehicles v JOIN students s ON s.id = v.student_id"
)

// VehicleRepository manages vehicle registrations.
type VehicleRepository struct {
	db *sqlx.DB
}

// NewVehicleRepository constructs the repository.
func NewVehicleRepository(db *sqlx.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// List returns vehicles matching the filter.
func (r *VehicleRepository) List(ctx context.Context, filter models.VehicleFilter) ([]models.VehicleDetail, int, error) {
	p := listing.NewPredicate()
	if filter.StudentID != "" {
		p.Eq("v.student_id", filter.StudentID)
	}
	p.Enum("v.type", filter.Type)
	p.Enum("v.status", filter.Status)
	if filter.Search != "" {
		p.AnyContains(filter.Search, "v.plate_number", "v.parking_card_number")
	}

	vehicles := []models.VehicleDetail{}
	total, err := listPage(ctx, r.db, &vehicles, vehicleColumns, vehicleFrom, p, "v.registered_at DESC", filter.Page)
	if err != nil {
		return nil, 0, fmt.Errorf("list vehicles: %w", err)
	}
	return vehicles, total, nil
}

// FindByID fetches a vehicle.
func (r *VehicleRepository) FindByID(ctx context.Context, id string) (*models.VehicleDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE v.id = $1", vehicleColumns, vehicleFrom)
	var vehicle models.VehicleDetail
	if err := r.db.GetContext(ctx, &vehicle, query, id); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// Create inserts a vehicle. Duplicate plate or card numbers surface as unique violations.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	if vehicle.ID == "" {
		vehicle.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if vehicle.RegisteredAt.IsZero() {
		vehicle.RegisteredAt = now
	}
	vehicle.CreatedAt = now
	vehicle.UpdatedAt = now
	const query = `INSERT INTO vehicles (id, student_id, plate_number, type, brand, color, parking_card_number, status, registered_at, created_at, updated_at)
        VALUES (:id, :student_id, :plate_number, :type, :brand, :color, :parking_card_number, :status, :registered_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, vehicle); err != nil {
		return fmt.Errorf("create vehicle: %w", err)
	}
	return nil
}

// Update modifies a vehicle. The parking card number is immutable.
func (r *VehicleRepository) Update(ctx context.Context, vehicle *models.Vehicle) error {
	vehicle.UpdatedAt = time.Now().UTC()
	const query = `UPDATE vehicles SET plate_number = $2, type = $3, brand = $4, color = $5, status = $6, updated_at = $7 WHERE id = $1`
	if err := execAffecting(ctx, r.db, query, vehicle.ID, vehicle.PlateNumber, vehicle.Type, vehicle.Brand, vehicle.Color,
		vehicle.Status, vehicle.UpdatedAt); err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	return nil
}

// Delete removes a vehicle.
func (r *VehicleRepository) Delete(ctx context.Context, id string) error {
	if err := execAffecting(ctx, r.db, "DELETE FROM vehicles WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	return nil
}
