package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

// ErrRoomUnavailable is returned when a guarded occupancy increment matches no row.
var ErrRoomUnavailable = errors.New("room is full or unavailable")

// ErrCapacityBelowOccupancy is returned when a room update would leave more
// residents than beds.
var ErrCapacityBelowOccupancy = errors.New("capacity below current occupancy")

// dbtx is satisfied by both *sqlx.DB and *sqlx.Tx.
type dbtx interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// listPage runs the count query and then the page query for the same predicate.
// dest must be a pointer to a slice.
func listPage(ctx context.Context, db dbtx, dest interface{}, columns, from string, where *listing.Predicate, orderBy string, page listing.Page) (int, error) {
	if page.Limit <= 0 || page.Number < 1 {
		page = listing.NewPage(page.Number, page.Limit)
	}
	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s%s", from, where.Where())
	if err := db.GetContext(ctx, &total, countQuery, where.Args()...); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	query := fmt.Sprintf("SELECT %s %s%s ORDER BY %s LIMIT %d OFFSET %d", columns, from, where.Where(), orderBy, page.Limit, page.Offset())
	if err := db.SelectContext(ctx, dest, query, where.Args()...); err != nil {
		return 0, fmt.Errorf("select: %w", err)
	}
	return total, nil
}

// execAffecting runs a statement and maps "no rows affected" to sql.ErrNoRows.
func execAffecting(ctx context.Context, db dbtx, query string, args ...interface{}) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// withTx runs fn inside a transaction, committing on success.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const occupyRoomQuery = `UPDATE rooms SET occupancy = occupancy + 1,
        status = CASE WHEN occupancy + 1 >= capacity THEN 'FULL' ELSE status END,
        updated_at = NOW()
        WHERE id = $1 AND occupancy < capacity AND status IN ('AVAILABLE', 'FULL')`

const vacateRoomQuery = `UPDATE rooms SET occupancy = GREATEST(occupancy - 1, 0),
        status = CASE WHEN status = 'FULL' THEN 'AVAILABLE' ELSE status END,
        updated_at = NOW()
        WHERE id = $1`

// occupyRoom increments occupancy only while a bed is free.
func occupyRoom(ctx context.Context, tx dbtx, roomID string) error {
	if err := execAffecting(ctx, tx, occupyRoomQuery, roomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomUnavailable
		}
		return fmt.Errorf("occupy room: %w", err)
	}
	return nil
}

// vacateRoom releases one bed.
func vacateRoom(ctx context.Context, tx dbtx, roomID string) error {
	if _, err := tx.ExecContext(ctx, vacateRoomQuery, roomID); err != nil {
		return fmt.Errorf("vacate room: %w", err)
	}
	return nil
}
