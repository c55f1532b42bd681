package models

import (
	"time"

	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

// RoomStatus describes whether a room can take residents.
type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "AVAILABLE"
	RoomStatusFull        RoomStatus = "FULL"
	RoomStatusMaintenance RoomStatus = "MAINTENANCE"
	RoomStatusInactive    RoomStatus = "INACTIVE"
)

// RoomStatuses lists every accepted room status.
var RoomStatuses = []string{
	string(RoomStatusAvailable),
	string(RoomStatusFull),
	string(RoomStatusMaintenance),
	string(RoomStatusInactive),
}

// RoomType classifies rooms by comfort level.
type RoomType string

const (
	RoomTypeStandard RoomType = "STANDARD"
	RoomTypeDeluxe   RoomType = "DELUXE"
	RoomTypeSuite    RoomType = "SUITE"
)

// RoomTypes lists every accepted room type.
var RoomTypes = []string{string(RoomTypeStandard), string(RoomTypeDeluxe), string(RoomTypeSuite)}

// Room is a rentable unit inside a building. Occupancy never exceeds capacity.
type Room struct {
	ID         string     `db:"id" json:"id"`
	BuildingID string     `db:"building_id" json:"buildingId"`
	Number     string     `db:"number" json:"number"`
	Floor      int        `db:"floor" json:"floor"`
	Capacity   int        `db:"capacity" json:"capacity"`
	Occupancy  int        `db:"occupancy" json:"occupancy"`
	MonthlyFee float64    `db:"monthly_fee" json:"monthlyFee"`
	Status     RoomStatus `db:"status" json:"status"`
	Type       RoomType   `db:"type" json:"type"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt"`
}

// RoomDetail carries the owning building alongside the room.
type RoomDetail struct {
	Room
	BuildingCode string `db:"building_code" json:"buildingCode"`
	BuildingName string `db:"building_name" json:"buildingName"`
}

// RoomFilter encapsulates list parameters for rooms.
type RoomFilter struct {
	BuildingID  string
	Status      listing.EnumFilter
	Type        listing.EnumFilter
	MinCapacity *int
	MinFee      *float64
	MaxFee      *float64
	Available   *bool
	Search      string
	Page        listing.Page
}
