package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dorm-adp-api/internal/models"
)

type vehicleRepoStub struct {
	vehicles   map[string]*models.VehicleDetail
	createErrs []error
	cards      []string
	updated    *models.Vehicle
}

func (s *vehicleRepoStub) List(ctx context.Context, filter models.VehicleFilter) ([]models.VehicleDetail, int, error) {
	return []models.VehicleDetail{}, 0, nil
}

func (s *vehicleRepoStub) FindByID(ctx context.Context, id string) (*models.VehicleDetail, error) {
	if v, ok := s.vehicles[id]; ok {
		clone := *v
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *vehicleRepoStub) Create(ctx context.Context, vehicle *models.Vehicle) error {
	s.cards = append(s.cards, vehicle.ParkingCardNumber)
	if len(s.createErrs) > 0 {
		err := s.createErrs[0]
		s.createErrs = s.createErrs[1:]
		return err
	}
	vehicle.ID = "vehicle-new"
	s.vehicles[vehicle.ID] = &models.VehicleDetail{Vehicle: *vehicle}
	return nil
}

func (s *vehicleRepoStub) Update(ctx context.Context, vehicle *models.Vehicle) error {
	s.updated = vehicle
	return nil
}

func (s *vehicleRepoStub) Delete(ctx context.Context, id string) error {
	return nil
}

func newVehicleService(repo *vehicleRepoStub) *VehicleService {
	students := studentLookupStub{students: map[string]*models.StudentDetail{
		testStudentID: {Student: models.Student{ID: testStudentID}},
	}}
	svc := NewVehicleService(repo, students, nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC) }
	return svc
}

func TestVehicleCreateIssuesCard(t *testing.T) {
	repo := &vehicleRepoStub{vehicles: map[string]*models.VehicleDetail{}}
	svc := newVehicleService(repo)

	vehicle, err := svc.Create(context.Background(), CreateVehicleRequest{StudentID: testStudentID, PlateNumber: " 29a1   12345 ", Type: "motorbike"})
	require.NoError(t, err)
	assert.Equal(t, "29A1 12345", vehicle.PlateNumber)
	assert.Equal(t, "ACTIVE", vehicle.Status)
	assert.Equal(t, "M25", vehicle.ParkingCardNumber[:3])
	assert.True(t, ValidateParkingCard(vehicle.ParkingCardNumber))
}

func TestVehicleCreateRetriesCardCollision(t *testing.T) {
	cardDup := fmt.Errorf("create vehicle: %w", &pq.Error{Code: "23505", Constraint: "vehicles_parking_card_number_key"})
	repo := &vehicleRepoStub{vehicles: map[string]*models.VehicleDetail{}, createErrs: []error{cardDup, cardDup}}
	svc := newVehicleService(repo)

	_, err := svc.Create(context.Background(), CreateVehicleRequest{StudentID: testStudentID, PlateNumber: "29A112345", Type: "CAR"})
	require.NoError(t, err)
	assert.Len(t, repo.cards, 3)

	repo = &vehicleRepoStub{vehicles: map[string]*models.VehicleDetail{}, createErrs: []error{cardDup, cardDup, cardDup}}
	svc = newVehicleService(repo)
	_, err = svc.Create(context.Background(), CreateVehicleRequest{StudentID: testStudentID, PlateNumber: "29A112345", Type: "CAR"})
	require.Error(t, err)
	assert.Len(t, repo.cards, parkingCardAttempts)
}

func TestVehicleCreateDuplicatePlateNotRetried(t *testing.T) {
	plateDup := &pq.Error{Code: "23505", Constraint: "vehicles_plate_number_key"}
	repo := &vehicleRepoStub{vehicles: map[string]*models.VehicleDetail{}, createErrs: []error{plateDup}}
	svc := newVehicleService(repo)

	_, err := svc.Create(context.Background(), CreateVehicleRequest{StudentID: testStudentID, PlateNumber: "29A112345", Type: "CAR"})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, appError(err).Status)
	assert.Len(t, repo.cards, 1)
}

func TestVehicleUpdateKeepsCard(t *testing.T) {
	repo := &vehicleRepoStub{vehicles: map[string]*models.VehicleDetail{
		"v1": {Vehicle: models.Vehicle{ID: "v1", PlateNumber: "OLD", Type: models.VehicleBicycle, ParkingCardNumber: "B25000001X", Status: "ACTIVE"}},
	}}
	svc := newVehicleService(repo)

	vehicle, err := svc.Update(context.Background(), "v1", UpdateVehicleRequest{Status: strPtr("inactive"), Color: strPtr("red")})
	require.NoError(t, err)
	assert.Equal(t, "INACTIVE", vehicle.Status)
	assert.Equal(t, "B25000001X", repo.updated.ParkingCardNumber)
	assert.Equal(t, "OLD", repo.updated.PlateNumber)
	assert.Equal(t, "red", *repo.updated.Color)
}
