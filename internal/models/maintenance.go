package models

import (
	"time"

	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

// MaintenancePriority ranks urgency of a request.
type MaintenancePriority string

const (
	PriorityLow    MaintenancePriority = "LOW"
	PriorityMedium MaintenancePriority = "MEDIUM"
	PriorityHigh   MaintenancePriority = "HIGH"
	PriorityUrgent MaintenancePriority = "URGENT"
)

// MaintenancePriorities lists every accepted priority.
var MaintenancePriorities = []string{string(PriorityLow), string(PriorityMedium), string(PriorityHigh), string(PriorityUrgent)}

// MaintenanceStatus tracks handling of a request.
type MaintenanceStatus string

const (
	MaintenancePending    MaintenanceStatus = "PENDING"
	MaintenanceInProgress MaintenanceStatus = "IN_PROGRESS"
	MaintenanceCompleted  MaintenanceStatus = "COMPLETED"
	MaintenanceCancelled  MaintenanceStatus = "CANCELLED"
)

// MaintenanceStatuses lists every accepted maintenance status.
var MaintenanceStatuses = []string{
	string(MaintenancePending),
	string(MaintenanceInProgress),
	string(MaintenanceCompleted),
	string(MaintenanceCancelled),
}

// MaintenanceRequest reports a problem in a room.
type MaintenanceRequest struct {
	ID          string              `db:"id" json:"id"`
	RoomID      string              `db:"room_id" json:"roomId"`
	StudentID   *string             `db:"student_id" json:"studentId"`
	Title       string              `db:"title" json:"title"`
	Description *string             `db:"description" json:"description"`
	Priority    MaintenancePriority `db:"priority" json:"priority"`
	Status      MaintenanceStatus   `db:"status" json:"status"`
	AssignedTo  *string             `db:"assigned_to" json:"assignedTo"`
	ResolvedAt  *time.Time          `db:"resolved_at" json:"resolvedAt"`
	CreatedAt   time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time           `db:"updated_at" json:"updatedAt"`
}

// MaintenanceRequestDetail adds room and reporter labels.
type MaintenanceRequestDetail struct {
	MaintenanceRequest
	RoomNumber   string  `db:"room_number" json:"roomNumber"`
	BuildingName string  `db:"building_name" json:"buildingName"`
	StudentName  *string `db:"student_name" json:"studentName,omitempty"`
}

// MaintenanceFilter holds normalised list parameters for maintenance requests.
type MaintenanceFilter struct {
	RoomID     string
	Status     listing.EnumFilter
	Priority   listing.EnumFilter
	RoomNumber string
	Search     string
	Page       listing.Page
}
