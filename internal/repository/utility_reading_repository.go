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
	utilityReadingColumns = `ur.id, ur.room_id, ur.type, ur.reading_date, ur.index_value, ur.billing_month, ur.billing_year, ur.notes, ur.created_at, ur.updated_at,
        r.number AS room_number, b.name AS building_name`
	utilityReadingFrom = "FROM utility_readings ur JOIN rooms r ON r.id = ur.room_id JOIN buildings b ON b.id = r.building_id"
)

// UtilityReadingRepository manages persistence for meter readings.
type UtilityReadingRepository struct {
	db *sqlx.DB
}

// NewUtilityReadingRepository constructs the repository.
func NewUtilityReadingRepository(db *sqlx.DB) *UtilityReadingRepository {
	return &UtilityReadingRepository{db: db}
}

func utilityReadingPredicate(filter models.UtilityReadingFilter) *listing.Predicate {
	p := listing.NewPredicate()
	if filter.RoomID != "" {
		p.Eq("ur.room_id", filter.RoomID)
	}
	p.Enum("ur.type", filter.Type)
	if filter.Month != nil {
		p.Eq("ur.billing_month", *filter.Month)
	}
	if filter.Year != nil {
		p.Eq("ur.billing_year", *filter.Year)
	}
	if filter.Search != "" {
		p.AnyContains(filter.Search, "ur.notes", "r.number")
	}
	p.RoomSearch(filter.RoomNumber, "r.number", "b.name")
	return p
}

// List returns readings matching the filter and the total count irrespective of paging.
func (r *UtilityReadingRepository) List(ctx context.Context, filter models.UtilityReadingFilter) ([]models.UtilityReadingDetail, int, error) {
	readings := []models.UtilityReadingDetail{}
	total, err := listPage(ctx, r.db, &readings, utilityReadingColumns, utilityReadingFrom, utilityReadingPredicate(filter),
		"ur.reading_date DESC, ur.created_at DESC", filter.Page)
	if err != nil {
		return nil, 0, fmt.Errorf("list utility readings: %w", err)
	}
	return readings, total, nil
}

// FindByID fetches a reading with its room labels.
func (r *UtilityReadingRepository) FindByID(ctx context.Context, id string) (*models.UtilityReadingDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE ur.id = $1", utilityReadingColumns, utilityReadingFrom)
	var reading models.UtilityReadingDetail
	if err := r.db.GetContext(ctx, &reading, query, id); err != nil {
		return nil, err
	}
	return &reading, nil
}

// Previous returns the reading of the same room and kind that precedes reading.
func (r *UtilityReadingRepository) Previous(ctx context.Context, reading models.UtilityReading) (*models.UtilityReading, error) {
	const query = `SELECT id, room_id, type, reading_date, index_value, billing_month, billing_year, notes, created_at, updated_at
        FROM utility_readings
        WHERE room_id = $1 AND type = $2 AND id <> $3 AND (reading_date < $4 OR (reading_date = $4 AND created_at < $5))
        ORDER BY reading_date DESC, created_at DESC LIMIT 1`
	var previous models.UtilityReading
	if err := r.db.GetContext(ctx, &previous, query, reading.RoomID, reading.Type, reading.ID, reading.ReadingDate, reading.CreatedAt); err != nil {
		return nil, err
	}
	return &previous, nil
}

// Create inserts a new reading.
func (r *UtilityReadingRepository) Create(ctx context.Context, reading *models.UtilityReading) error {
	if reading.ID == "" {
		reading.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	reading.CreatedAt = now
	reading.UpdatedAt = now
	const query = `INSERT INTO utility_readings (id, room_id, type, reading_date, index_value, billing_month, billing_year, notes, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(ctx, query, reading.ID, reading.RoomID, reading.Type, reading.ReadingDate, reading.IndexValue,
		reading.BillingMonth, reading.BillingYear, reading.Notes, reading.CreatedAt, reading.UpdatedAt); err != nil {
		return fmt.Errorf("create utility reading: %w", err)
	}
	return nil
}

// Update persists the mutable fields of a reading.
func (r *UtilityReadingRepository) Update(ctx context.Context, reading *models.UtilityReading) error {
	reading.UpdatedAt = time.Now().UTC()
	const query = `UPDATE utility_readings SET reading_date = $2, index_value = $3, billing_month = $4, billing_year = $5, notes = $6, updated_at = $7 WHERE id = $1`
	if err := execAffecting(ctx, r.db, query, reading.ID, reading.ReadingDate, reading.IndexValue, reading.BillingMonth,
		reading.BillingYear, reading.Notes, reading.UpdatedAt); err != nil {
		return fmt.Errorf("update utility reading: %w", err)
	}
	return nil
}

// Delete removes a reading. A missing row yields sql.ErrNoRows.
func (r *UtilityReadingRepository) Delete(ctx context.Context, id string) error {
	if err := execAffecting(ctx, r.db, "DELETE FROM utility_readings WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete utility reading: %w", err)
	}
	return nil
}
