package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

func TestMaintenanceRepositoryListBuildingSearch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMaintenanceRepository(db)

	where := " WHERE m.status IN ($1) AND m.priority NOT IN ($2) AND b.name ILIKE $3 AND (m.title ILIKE $4 OR m.description ILIKE $4)"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) " + maintenanceFrom + where)).
		WithArgs("PENDING", "LOW", "%Dahlia%", "%leak%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(where + " ORDER BY CASE m.priority WHEN 'URGENT' THEN 0 WHEN 'HIGH' THEN 1 WHEN 'MEDIUM' THEN 2 ELSE 3 END, m.created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	requests, total, err := repo.List(context.Background(), models.MaintenanceFilter{
		Status:     listing.EnumFilter{Values: []string{"PENDING"}},
		Priority:   listing.EnumFilter{Exclude: []string{"LOW"}},
		RoomNumber: "Dahlia",
		Search:     "leak",
		Page:       listing.NewPage(1, 20),
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, requests)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMaintenanceRepositoryUpdate(t *testing.T) {
	resolved := time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC)
	tech := "Tran Binh"
	request := &models.MaintenanceRequest{ID: "m-1", Title: "Leaking tap", Priority: models.PriorityHigh,
		Status: models.MaintenanceCompleted, AssignedTo: &tech, ResolvedAt: &resolved}
	const query = "UPDATE maintenance_requests SET title = $2, description = $3, priority = $4, status = $5, assigned_to = $6, resolved_at = $7, updated_at = $8 WHERE id = $1"

	t.Run("persists resolution", func(t *testing.T) {
		db, mock, cleanup := newMock(t)
		defer cleanup()
		mock.ExpectExec(regexp.QuoteMeta(query)).
			WithArgs("m-1", "Leaking tap", nil, "HIGH", "COMPLETED", "Tran Binh", resolved, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewMaintenanceRepository(db).Update(context.Background(), request))
		assert.False(t, request.UpdatedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing request", func(t *testing.T) {
		db, mock, cleanup := newMock(t)
		defer cleanup()
		mock.ExpectExec(regexp.QuoteMeta(query)).WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewMaintenanceRepository(db).Update(context.Background(), request)
		assert.True(t, errors.Is(err, sql.ErrNoRows))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
