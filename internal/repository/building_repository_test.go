package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/pkg/database"
	appErrors "github.com/noah-isme/dorm-adp-api/pkg/errors"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

func TestBuildingRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBuildingRepository(db)

	active := true
	where := " WHERE b.active = $1 AND (b.code ILIKE $2 OR b.name ILIKE $2)"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM buildings b" + where)).
		WithArgs(true, "%B%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(where + " ORDER BY b.code ASC LIMIT 20 OFFSET 0")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "address", "floors", "active", "created_at", "updated_at", "room_count"}).
			AddRow("b-1", "B3", "Building B3", "Campus road", 5, true, now, now, 40))

	buildings, total, err := repo.List(context.Background(), models.BuildingFilter{Active: &active, Search: "B", Page: listing.NewPage(1, 20)})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 40, buildings[0].RoomCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildingRepositoryDeleteWithRoomsConflicts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBuildingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM buildings WHERE id = $1")).
		WithArgs("b-1").
		WillReturnError(&pq.Error{Code: "23503"})

	err := database.TranslateError(repo.Delete(context.Background(), "b-1"), "building")
	assert.True(t, appErrors.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildingRepositoryCreateNamed(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBuildingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO buildings (id, code, name, address, floors, active, created_at, updated_at)")).
		WithArgs(sqlmock.AnyArg(), "B3", "Building B3", "", 5, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), &models.Building{Code: "B3", Name: "Building B3", Floors: 5, Active: true}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
