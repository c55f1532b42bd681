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

const buildingColumns = `b.id, b.code, b.name, b.address, b.floors, b.active, b.created_at, b.updated_at,
        (SELECT COUNT(*) FROM rooms r WHERE r.building_id = b.id) AS room_count`

// BuildingRepository manages persistence for buildings.
type BuildingRepository struct {
	db *sqlx.DB
}

// NewBuildingRepository constructs the repository.
func NewBuildingRepository(db *sqlx.DB) *BuildingRepository {
	return &BuildingRepository{db: db}
}

// List returns buildings matching the filter.
func (r *BuildingRepository) List(ctx context.Context, filter models.BuildingFilter) ([]models.BuildingDetail, int, error) {
	p := listing.NewPredicate()
	if filter.Active != nil {
		p.Eq("b.active", *filter.Active)
	}
	if filter.Search != "" {
		p.AnyContains(filter.Search, "b.code", "b.name")
	}
	buildings := []models.BuildingDetail{}
	total, err := listPage(ctx, r.db, &buildings, buildingColumns, "FROM buildings b", p, "b.code ASC", filter.Page)
	if err != nil {
		return nil, 0, fmt.Errorf("list buildings: %w", err)
	}
	return buildings, total, nil
}

// FindByID fetches a building.
func (r *BuildingRepository) FindByID(ctx context.Context, id string) (*models.BuildingDetail, error) {
	query := fmt.Sprintf("SELECT %s FROM buildings b WHERE b.id = $1", buildingColumns)
	var building models.BuildingDetail
	if err := r.db.GetContext(ctx, &building, query, id); err != nil {
		return nil, err
	}
	return &building, nil
}

// Create inserts a building.
func (r *BuildingRepository) Create(ctx context.Context, building *models.Building) error {
	if building.ID == "" {
		building.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	building.CreatedAt = now
	building.UpdatedAt = now
	const query = `INSERT INTO buildings (id, code, name, address, floors, active, created_at, updated_at)
        VALUES (:id, :code, :name, :address, :floors, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, building); err != nil {
		return fmt.Errorf("create building: %w", err)
	}
	return nil
}

// Update modifies a building.
func (r *BuildingRepository) Update(ctx context.Context, building *models.Building) error {
	building.UpdatedAt = time.Now().UTC()
	const query = `UPDATE buildings SET code = $2, name = $3, address = $4, floors = $5, active = $6, updated_at = $7 WHERE id = $1`
	if err := execAffecting(ctx, r.db, query, building.ID, building.Code, building.Name, building.Address, building.Floors,
		building.Active, building.UpdatedAt); err != nil {
		return fmt.Errorf("update building: %w", err)
	}
	return nil
}

// Delete removes a building. Buildings that still own rooms fail with a foreign key violation.
func (r *BuildingRepository) Delete(ctx context.Context, id string) error {
	if err := execAffecting(ctx, r.db, "DELETE FROM buildings WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete building: %w", err)
	}
	return nil
}
