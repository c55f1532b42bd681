package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

const roomUpdatePattern = `(?s)UPDATE rooms SET building_id = \$2.+WHERE id = \$1 AND occupancy <= \$5`

func TestRoomRepositoryListFeeRangeAndRoomSearch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	minFee, maxFee := 1000000.0, 2000000.0
	available := true
	where := " WHERE r.status IN ($1) AND r.monthly_fee >= $2 AND r.monthly_fee <= $3 AND r.occupancy < r.capacity AND r.number ILIKE $4 AND b.name ILIKE $5"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) " + roomFrom + where)).
		WithArgs("AVAILABLE", minFee, maxFee, "%306%", "%B3%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(where + " ORDER BY b.name ASC, r.number ASC LIMIT 20 OFFSET 0")).
		WithArgs("AVAILABLE", minFee, maxFee, "%306%", "%B3%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "number", "capacity", "occupancy", "monthly_fee", "building_name"}).
			AddRow("room-306", "306", 4, 1, 1500000.0, "B3"))

	rooms, total, err := repo.List(context.Background(), models.RoomFilter{
		Status:    listing.EnumFilter{Values: []string{"AVAILABLE"}},
		MinFee:    &minFee,
		MaxFee:    &maxFee,
		Available: &available,
		Search:    "306 (B3)",
		Page:      listing.NewPage(1, 20),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, rooms, 1)
	assert.Equal(t, 1500000.0, rooms[0].MonthlyFee)
	assert.Equal(t, "B3", rooms[0].BuildingName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryUpdate(t *testing.T) {
	room := &models.Room{ID: "r-1", BuildingID: "b-1", Number: "306", Floor: 3, Capacity: 2, MonthlyFee: 1200000,
		Status: models.RoomStatusFull, Type: models.RoomTypeStandard}

	t.Run("guarded write succeeds", func(t *testing.T) {
		db, mock, cleanup := newMock(t)
		defer cleanup()
		mock.ExpectExec(roomUpdatePattern).
			WithArgs("r-1", "b-1", "306", 3, 2, 1200000.0, "FULL", "STANDARD", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewRoomRepository(db).Update(context.Background(), room))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("occupancy above new capacity", func(t *testing.T) {
		db, mock, cleanup := newMock(t)
		defer cleanup()
		mock.ExpectExec(roomUpdatePattern).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM rooms WHERE id = $1)")).
			WithArgs("r-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := NewRoomRepository(db).Update(context.Background(), room)
		assert.True(t, errors.Is(err, ErrCapacityBelowOccupancy))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing room", func(t *testing.T) {
		db, mock, cleanup := newMock(t)
		defer cleanup()
		mock.ExpectExec(roomUpdatePattern).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM rooms WHERE id = $1)")).
			WithArgs("r-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		err := NewRoomRepository(db).Update(context.Background(), room)
		assert.True(t, errors.Is(err, sql.ErrNoRows))
		assert.False(t, errors.Is(err, ErrCapacityBelowOccupancy))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
