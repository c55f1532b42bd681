package models

import (
	"time"

	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

// StudentStatus tracks residency of a student.
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "ACTIVE"
	StudentStatusInactive  StudentStatus = "INACTIVE"
	StudentStatusGraduated StudentStatus = "GRADUATED"
)

// StudentStatuses lists every accepted student status.
var StudentStatuses = []string{string(StudentStatusActive), string(StudentStatusInactive), string(StudentStatusGraduated)}

// Genders lists accepted gender values.
var Genders = []string{"MALE", "FEMALE"}

// Student represents a dormitory resident.
type Student struct {
	ID          string        `db:"id" json:"id"`
	StudentCode string        `db:"student_code" json:"studentCode"`
	FullName    string        `db:"full_name" json:"fullName"`
	Gender      string        `db:"gender" json:"gender"`
	Email       *string       `db:"email" json:"email,omitempty"`
	Phone       *string       `db:"phone" json:"phone,omitempty"`
	Faculty     *string       `db:"faculty" json:"faculty,omitempty"`
	RoomID      *string       `db:"room_id" json:"roomId"`
	Status      StudentStatus `db:"status" json:"status"`
	CheckedInAt *time.Time    `db:"checked_in_at" json:"checkedInAt,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updatedAt"`
}

// StudentDetail contains student information with room context.
type StudentDetail struct {
	Student
	RoomNumber   *string `db:"room_number" json:"roomNumber,omitempty"`
	BuildingName *string `db:"building_name" json:"buildingName,omitempty"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	RoomID     string
	BuildingID string
	Status     listing.EnumFilter
	Gender     listing.EnumFilter
	Search     string
	Page       listing.Page
}
