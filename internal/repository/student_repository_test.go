package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	where := " WHERE r.building_id = $1 AND s.status IN ($2) AND (s.full_name ILIKE $3 OR s.student_code ILIKE $3)"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) " + studentFrom + where)).
		WithArgs("b-1", "ACTIVE", "%an%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(where + " ORDER BY s.full_name ASC, s.created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	students, total, err := repo.List(context.Background(), models.StudentFilter{
		BuildingID: "b-1",
		Status:     listing.EnumFilter{Values: []string{"ACTIVE"}},
		Search:     "an",
		Page:       listing.NewPage(1, 20),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, students)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryAssignRoomMovesBed(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT room_id FROM students WHERE id = $1 FOR UPDATE")).
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}).AddRow("room-old"))
	mock.ExpectExec("UPDATE rooms SET occupancy = occupancy \\+ 1").
		WithArgs("room-new").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE rooms SET occupancy = GREATEST").
		WithArgs("room-old").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET room_id = $2")).
		WithArgs("s-1", "room-new", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.AssignRoom(context.Background(), "s-1", "room-new"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryAssignRoomFull(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT room_id FROM students WHERE id = $1 FOR UPDATE")).
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}).AddRow(nil))
	mock.ExpectExec("UPDATE rooms SET occupancy = occupancy \\+ 1").
		WithArgs("room-full").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.AssignRoom(context.Background(), "s-1", "room-full")
	assert.True(t, errors.Is(err, ErrRoomUnavailable))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCheckoutWithoutRoom(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT room_id FROM students WHERE id = $1 FOR UPDATE")).
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}).AddRow(nil))
	mock.ExpectRollback()

	err := repo.Checkout(context.Background(), "s-1")
	assert.True(t, errors.Is(err, ErrNoRoomAssigned))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WithArgs(sqlmock.AnyArg(), "SV001", "Nguyen An", "MALE", nil, nil, nil, models.StudentStatusActive, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), &models.Student{StudentCode: "SV001", FullName: "Nguyen An", Gender: "MALE", Status: models.StudentStatusActive})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
