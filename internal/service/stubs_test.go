package service

import (
	"context"
	"database/sql"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	appErrors "github.com/noah-isme/dorm-adp-api/pkg/errors"
)

type roomLookupStub struct {
	rooms map[string]*models.RoomDetail
}

func (s roomLookupStub) FindByID(ctx context.Context, id string) (*models.RoomDetail, error) {
	if room, ok := s.rooms[id]; ok {
		return room, nil
	}
	return nil, sql.ErrNoRows
}

type buildingLookupStub struct {
	buildings map[string]*models.BuildingDetail
}

func (s buildingLookupStub) FindByID(ctx context.Context, id string) (*models.BuildingDetail, error) {
	if building, ok := s.buildings[id]; ok {
		return building, nil
	}
	return nil, sql.ErrNoRows
}

type studentLookupStub struct {
	students map[string]*models.StudentDetail
}

func (s studentLookupStub) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if student, ok := s.students[id]; ok {
		return student, nil
	}
	return nil, sql.ErrNoRows
}

func strPtr(v string) *string { return &v }

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func appError(err error) *appErrors.Error {
	return appErrors.FromError(err)
}
