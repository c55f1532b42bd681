package models

import (
	"time"

	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

// Building is a dormitory block housing rooms.
type Building struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address"`
	Floors    int       `db:"floors" json:"floors"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// BuildingDetail adds the number of rooms registered in the building.
type BuildingDetail struct {
	Building
	RoomCount int `db:"room_count" json:"roomCount"`
}

// BuildingFilter encapsulates list parameters for buildings.
type BuildingFilter struct {
	Active *bool
	Search string
	Page   listing.Page
}
