package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/internal/repository"
)

const testFullRoomID = "9a8b7c6d-5e4f-4321-8fed-cba987654321"

type transferRepoStub struct {
	transfers map[string]*models.TransferRequestDetail
	created   *models.TransferRequest
	reviewErr error
	reviewed  struct {
		id, reviewer string
		status       models.TransferStatus
		note         *string
	}
}

func (s *transferRepoStub) List(ctx context.Context, filter models.TransferFilter) ([]models.TransferRequestDetail, int, error) {
	return []models.TransferRequestDetail{}, 0, nil
}

func (s *transferRepoStub) FindByID(ctx context.Context, id string) (*models.TransferRequestDetail, error) {
	if t, ok := s.transfers[id]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (s *transferRepoStub) Create(ctx context.Context, transfer *models.TransferRequest) error {
	transfer.ID = "transfer-new"
	transfer.Status = models.TransferPending
	s.created = transfer
	s.transfers[transfer.ID] = &models.TransferRequestDetail{TransferRequest: *transfer}
	return nil
}

func (s *transferRepoStub) Review(ctx context.Context, id string, status models.TransferStatus, note *string, reviewer string) error {
	s.reviewed.id, s.reviewed.status, s.reviewed.note, s.reviewed.reviewer = id, status, note, reviewer
	if s.reviewErr != nil {
		return s.reviewErr
	}
	if t, ok := s.transfers[id]; ok {
		t.Status = status
		return nil
	}
	return sql.ErrNoRows
}

func (s *transferRepoStub) Delete(ctx context.Context, id string) error {
	return nil
}

func newTransferService(repo *transferRepoStub) *TransferService {
	students := studentLookupStub{students: map[string]*models.StudentDetail{
		testStudentID: {Student: models.Student{ID: testStudentID, RoomID: strPtr(testRoomID)}},
		"homeless":    {Student: models.Student{ID: "homeless"}},
	}}
	rooms := roomLookupStub{rooms: map[string]*models.RoomDetail{
		testRoomID:     {Room: models.Room{ID: testRoomID, Capacity: 4, Occupancy: 2, Status: models.RoomStatusAvailable}},
		testRoomID2:    {Room: models.Room{ID: testRoomID2, Capacity: 4, Occupancy: 1, Status: models.RoomStatusAvailable}},
		testFullRoomID: {Room: models.Room{ID: testFullRoomID, Capacity: 2, Occupancy: 2, Status: models.RoomStatusFull}},
	}}
	return NewTransferService(repo, students, rooms, nil, nil, nil)
}

func TestTransferCreateUsesCurrentRoom(t *testing.T) {
	repo := &transferRepoStub{transfers: map[string]*models.TransferRequestDetail{}}
	svc := newTransferService(repo)

	transfer, err := svc.Create(context.Background(), CreateTransferRequest{StudentID: testStudentID, ToRoomID: testRoomID2, Reason: strPtr("quieter floor")})
	require.NoError(t, err)
	assert.Equal(t, testRoomID, transfer.FromRoomID)
	assert.Equal(t, testRoomID2, transfer.ToRoomID)
	assert.Equal(t, models.TransferPending, transfer.Status)
}

func TestTransferCreateRules(t *testing.T) {
	svc := newTransferService(&transferRepoStub{transfers: map[string]*models.TransferRequestDetail{}})
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateTransferRequest{StudentID: testStudentID, ToRoomID: testRoomID})
	require.Error(t, err)
	assert.Equal(t, "toRoomId", appError(err).Fields[0].Field)

	_, err = svc.Create(ctx, CreateTransferRequest{StudentID: testStudentID, ToRoomID: testFullRoomID})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, appError(err).Status)

	_, err = svc.Create(ctx, CreateTransferRequest{StudentID: testStudentID, ToRoomID: testBuildingID})
	assert.Equal(t, http.StatusNotFound, appError(err).Status)
}

func TestTransferCreateStudentWithoutRoom(t *testing.T) {
	repo := &transferRepoStub{transfers: map[string]*models.TransferRequestDetail{}}
	students := studentLookupStub{students: map[string]*models.StudentDetail{
		testStudentID: {Student: models.Student{ID: testStudentID}},
	}}
	svc := NewTransferService(repo, students, roomLookupStub{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateTransferRequest{StudentID: testStudentID, ToRoomID: testRoomID2})
	require.Error(t, err)
	assert.Equal(t, "student has no room assigned", appError(err).Message)
	assert.Nil(t, repo.created)
}

func TestTransferReview(t *testing.T) {
	repo := &transferRepoStub{transfers: map[string]*models.TransferRequestDetail{
		"t1": {TransferRequest: models.TransferRequest{ID: "t1", Status: models.TransferPending}},
	}}
	svc := newTransferService(repo)

	transfer, err := svc.Review(context.Background(), "t1", "admin-1", ReviewTransferRequest{Status: "approved", Note: strPtr("ok")})
	require.NoError(t, err)
	assert.Equal(t, models.TransferApproved, transfer.Status)
	assert.Equal(t, "admin-1", repo.reviewed.reviewer)
	assert.Equal(t, "ok", *repo.reviewed.note)

	_, err = svc.Review(context.Background(), "t1", "admin-1", ReviewTransferRequest{Status: "PENDING"})
	require.Error(t, err)
	assert.Equal(t, "status", appError(err).Fields[0].Field)
}

func TestTransferReviewErrors(t *testing.T) {
	repo := &transferRepoStub{transfers: map[string]*models.TransferRequestDetail{}}
	svc := newTransferService(repo)
	ctx := context.Background()

	repo.reviewErr = fmt.Errorf("review: %w", repository.ErrTransferNotPending)
	_, err := svc.Review(ctx, "t1", "admin-1", ReviewTransferRequest{Status: "REJECTED"})
	assert.Equal(t, "transfer request already reviewed", appError(err).Message)

	repo.reviewErr = repository.ErrRoomUnavailable
	_, err = svc.Review(ctx, "t1", "admin-1", ReviewTransferRequest{Status: "APPROVED"})
	assert.Equal(t, http.StatusConflict, appError(err).Status)

	repo.reviewErr = sql.ErrNoRows
	_, err = svc.Review(ctx, "t1", "admin-1", ReviewTransferRequest{Status: "APPROVED"})
	assert.Equal(t, "transfer request not found", appError(err).Message)
}
