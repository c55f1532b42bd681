package models

import (
	"time"

	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

// VehicleType classifies registered vehicles.
type VehicleType string

const (
	VehicleMotorbike VehicleType = "MOTORBIKE"
	VehicleBicycle   VehicleType = "BICYCLE"
	VehicleCar       VehicleType = "CAR"
	VehicleOther     VehicleType = "OTHER"
)

// VehicleTypes lists every accepted vehicle type.
var VehicleTypes = []string{string(VehicleMotorbike), string(VehicleBicycle), string(VehicleCar), string(VehicleOther)}

// VehicleStatuses lists accepted registration statuses.
var VehicleStatuses = []string{"ACTIVE", "INACTIVE"}

// Vehicle is a student vehicle registered for parking.
type Vehicle struct {
	ID                string      `db:"id" json:"id"`
	StudentID         string      `db:"student_id" json:"studentId"`
	PlateNumber       string      `db:"plate_number" json:"plateNumber"`
	Type              VehicleType `db:"type" json:"type"`
	Brand             *string     `db:"brand" json:"brand"`
	Color             *string     `db:"color" json:"color"`
	ParkingCardNumber string      `db:"parking_card_number" json:"parkingCardNumber"`
	Status            string      `db:"status" json:"status"`
	RegisteredAt      time.Time   `db:"registered_at" json:"registeredAt"`
	CreatedAt         time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time   `db:"updated_at" json:"updatedAt"`
}

// VehicleDetail adds the owning student.
type VehicleDetail struct {
	Vehicle
	StudentName string `db:"student_name" json:"studentName"`
	StudentCode string `db:"student_code" json:"studentCode"`
}

// VehicleFilter holds normalised list parameters for vehicles.
type VehicleFilter struct {
	StudentID string
	Type      listing.EnumFilter
	Status    listing.EnumFilter
	Search    string
	Page      listing.Page
}
