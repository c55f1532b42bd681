package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

func TestVehicleRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVehicleRepository(db)

	where := " WHERE v.student_id = $1 AND v.type IN ($2, $3) AND v.status NOT IN ($4) AND (v.plate_number ILIKE $5 OR v.parking_card_number ILIKE $5)"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) " + vehicleFrom + where)).
		WithArgs("s-1", "MOTORBIKE", "BICYCLE", "INACTIVE", "%59%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(where + " ORDER BY v.registered_at DESC LIMIT 5 OFFSET 0")).
		WithArgs("s-1", "MOTORBIKE", "BICYCLE", "INACTIVE", "%59%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "plate_number", "type", "parking_card_number", "student_name"}).
			AddRow("v-1", "59X1-12345", "MOTORBIKE", "P0001", "Nguyen An"))

	vehicles, total, err := repo.List(context.Background(), models.VehicleFilter{
		StudentID: "s-1",
		Type:      listing.EnumFilter{Values: []string{"MOTORBIKE", "BICYCLE"}},
		Status:    listing.EnumFilter{Exclude: []string{"INACTIVE"}},
		Search:    "59",
		Page:      listing.NewPage(1, 5),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, vehicles, 1)
	assert.Equal(t, models.VehicleMotorbike, vehicles[0].Type)
	assert.Equal(t, "Nguyen An", vehicles[0].StudentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVehicleRepositoryCreateBindsNamedColumns(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVehicleRepository(db)

	brand := "Honda"
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO vehicles (id, student_id, plate_number")).
		WithArgs(sqlmock.AnyArg(), "s-1", "59X1-12345", "MOTORBIKE", "Honda", nil, "P0001", "ACTIVE",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	vehicle := &models.Vehicle{StudentID: "s-1", PlateNumber: "59X1-12345", Type: models.VehicleMotorbike, Brand: &brand,
		ParkingCardNumber: "P0001", Status: "ACTIVE"}
	require.NoError(t, repo.Create(context.Background(), vehicle))
	assert.NotEmpty(t, vehicle.ID)
	assert.False(t, vehicle.RegisteredAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
