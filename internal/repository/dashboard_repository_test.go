package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardRepositorySummary(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDashboardRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM buildings").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("AS capacity").WillReturnRows(sqlmock.NewRows([]string{"rooms", "capacity", "occupancy"}).AddRow(10, 40, 30))
	mock.ExpectQuery("GROUP BY status").WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("AVAILABLE", 6).AddRow("FULL", 4))
	mock.ExpectQuery("FROM students WHERE status").WithArgs("ACTIVE").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(30))
	mock.ExpectQuery("AS outstanding").WillReturnRows(sqlmock.NewRows([]string{"unpaid", "outstanding"}).AddRow(3, 450.5))
	mock.ExpectQuery("FROM transfer_requests").WithArgs("PENDING").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("FROM maintenance_requests").WithArgs("PENDING", "IN_PROGRESS").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	summary, err := repo.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Buildings)
	assert.Equal(t, 4, summary.RoomsByStatus["FULL"])
	assert.InDelta(t, 0.75, summary.OccupancyRate, 0.0001)
	assert.Equal(t, 450.5, summary.OutstandingAmount)
	assert.Equal(t, 5, summary.OpenMaintenance)
	assert.NoError(t, mock.ExpectationsWereMet())
}
