package models

import (
	"time"

	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

// TransferStatus of a room transfer request.
type TransferStatus string

const (
	TransferPending  TransferStatus = "PENDING"
	TransferApproved TransferStatus = "APPROVED"
	TransferRejected TransferStatus = "REJECTED"
)

// TransferStatuses lists every accepted transfer status.
var TransferStatuses = []string{string(TransferPending), string(TransferApproved), string(TransferRejected)}

// TransferRequest asks to move a student from their current room to another.
type TransferRequest struct {
	ID         string         `db:"id" json:"id"`
	StudentID  string         `db:"student_id" json:"studentId"`
	FromRoomID string         `db:"from_room_id" json:"fromRoomId"`
	ToRoomID   string         `db:"to_room_id" json:"toRoomId"`
	Reason     *string        `db:"reason" json:"reason"`
	Status     TransferStatus `db:"status" json:"status"`
	ReviewNote *string        `db:"review_note" json:"reviewNote"`
	ReviewedBy *string        `db:"reviewed_by" json:"reviewedBy"`
	ReviewedAt *time.Time     `db:"reviewed_at" json:"reviewedAt"`
	CreatedAt  time.Time      `db:"created_at" json:"createdAt"`
}

// TransferRequestDetail adds student and room labels.
type TransferRequestDetail struct {
	TransferRequest
	StudentName    string `db:"student_name" json:"studentName"`
	StudentCode    string `db:"student_code" json:"studentCode"`
	FromRoomNumber string `db:"from_room_number" json:"fromRoomNumber"`
	ToRoomNumber   string `db:"to_room_number" json:"toRoomNumber"`
}

// TransferFilter holds normalised list parameters for transfers.
type TransferFilter struct {
	StudentID string
	Status    listing.EnumFilter
	RoomID    string
	Search    string
	Page      listing.Page
}
