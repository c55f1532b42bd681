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

const (
	roomColumns = `r.id, r.building_id, r.number, r.floor, r.capacity, r.occupancy, r.monthly_fee, r.status, r.type, r.created_at, r.updated_at,
        b.code AS building_code, b.name AS building_name`
	roomFrom = "FROM rooms r JOIN buildings b ON b.id = r.building_id"
)

// RoomRepository manages persistence for rooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs the repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// List returns rooms matching the filter.
func (r *RoomRepository) List(ctx context.Context, filter models.RoomFilter) ([]models.RoomDetail, int, error) {
	p := listing.NewPredicate()
	if filter.BuildingID != "" {
		p.Eq("r.building_id", filter.BuildingID)
	}
	p.Enum("r.status", filter.Status)
	p.Enum("r.type", filter.Type)
	if filter.MinCapacity != nil {
		p.Gte("r.capacity", *filter.MinCapacity)
	}
	if filter.MinFee != nil {
		p.Gte("r.monthly_fee", *filter.MinFee)
	}
	if filter.MaxFee != nil {
		p.Lte("r.monthly_fee", *filter.MaxFee)
	}
	if filter.Available != nil {
		if *filter.Available {
			p.Raw("r.occupancy < r.capacity")
		} else {
			p.Raw("r.occupancy >= r.capacity")
		}
	}
	p.RoomSearch(filter.Search, "r.number", "b.name")

	rooms := []models.RoomDetail{}
	total, err := listPage(ctx, r.db, &rooms, roomColumns, roomFrom, p, "b.name ASC, r.number ASC", filter.Page)
	if err != nil {
		return nil, 0, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, total, nil
}

// FindByID fetches a room with its building.
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*models.RoomDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE r.id = $1", roomColumns, roomFrom)
	var room models.RoomDetail
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// Create inserts a room.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now
	const query = `INSERT INTO rooms (id, building_id, number, floor, capacity, occupancy, monthly_fee, status, type, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := r.db.ExecContext(ctx, query, room.ID, room.BuildingID, room.Number, room.Floor, room.Capacity, room.Occupancy,
		room.MonthlyFee, room.Status, room.Type, room.CreatedAt, room.UpdatedAt); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// Update modifies a room. The capacity guard keeps occupancy within capacity even
// when a checkout or check-in races with the update.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	room.UpdatedAt = time.Now().UTC()
	const query = `UPDATE rooms SET building_id = $2, number = $3, floor = $4, capacity = $5, monthly_fee = $6, status = $7, type = $8, updated_at = $9
        WHERE id = $1 AND occupancy <= $5`
	err := execAffecting(ctx, r.db, query, room.ID, room.BuildingID, room.Number, room.Floor, room.Capacity, room.MonthlyFee,
		room.Status, room.Type, room.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if lookupErr := r.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM rooms WHERE id = $1)", room.ID); lookupErr != nil {
			return fmt.Errorf("update room: %w", lookupErr)
		}
		if exists {
			return ErrCapacityBelowOccupancy
		}
	}
	if err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return nil
}

// Delete removes a room.
func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	if err := execAffecting(ctx, r.db, "DELETE FROM rooms WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}
