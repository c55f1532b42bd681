package models

import (
	"time"

	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

// UtilityKind identifies the metered utility.
type UtilityKind string

const (
	UtilityElectricity UtilityKind = "ELECTRICITY"
	UtilityWater       UtilityKind = "WATER"
	UtilityOther       UtilityKind = "OTHER"
)

// UtilityKinds lists every accepted utility kind.
var UtilityKinds = []string{string(UtilityElectricity), string(UtilityWater), string(UtilityOther)}

// UtilityReading is a meter index captured for a room on a given date.
type UtilityReading struct {
	ID           string      `db:"id" json:"id"`
	RoomID       string      `db:"room_id" json:"roomId"`
	Type         UtilityKind `db:"type" json:"type"`
	ReadingDate  time.Time   `db:"reading_date" json:"readingDate"`
	IndexValue   float64     `db:"index_value" json:"indexValue"`
	BillingMonth int         `db:"billing_month" json:"billingMonth"`
	BillingYear  int         `db:"billing_year" json:"billingYear"`
	Notes        *string     `db:"notes" json:"notes"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updatedAt"`
}

// UtilityReadingDetail adds room and building labels to a reading.
type UtilityReadingDetail struct {
	UtilityReading
	RoomNumber   string `db:"room_number" json:"roomNumber"`
	BuildingName string `db:"building_name" json:"buildingName"`
}

// UtilityReadingFilter holds normalised list parameters for readings.
type UtilityReadingFilter struct {
	RoomID     string
	Type       listing.EnumFilter
	Month      *int
	Year       *int
	Search     string
	RoomNumber string
	Page       listing.Page
}

// UtilityConsumption compares a reading with the previous one of the same room and kind.
type UtilityConsumption struct {
	Reading     UtilityReadingDetail `json:"reading"`
	Previous    *UtilityReading      `json:"previous"`
	Consumption *float64             `json:"consumption"`
	Warnings    []string             `json:"warnings,omitempty"`
}
