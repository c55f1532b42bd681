package models

import (
	"time"

	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

// InvoiceStatus is set manually by staff.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid        InvoiceStatus = "UNPAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusOverdue       InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"
)

// InvoiceStatuses lists every accepted invoice status.
var InvoiceStatuses = []string{
	string(InvoiceStatusUnpaid),
	string(InvoiceStatusPaid),
	string(InvoiceStatusPartiallyPaid),
	string(InvoiceStatusOverdue),
	string(InvoiceStatusCancelled),
}

// Invoice bills a student for a billing period.
type Invoice struct {
	ID            string        `db:"id" json:"id"`
	InvoiceNumber string        `db:"invoice_number" json:"invoiceNumber"`
	StudentID     string        `db:"student_id" json:"studentId"`
	RoomID        *string       `db:"room_id" json:"roomId"`
	BillingMonth  int           `db:"billing_month" json:"billingMonth"`
	BillingYear   int           `db:"billing_year" json:"billingYear"`
	Amount        float64       `db:"amount" json:"amount"`
	Status        InvoiceStatus `db:"status" json:"status"`
	DueDate       time.Time     `db:"due_date" json:"dueDate"`
	Notes         *string       `db:"notes" json:"notes"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updatedAt"`
}

// InvoiceItem is a single billed line.
type InvoiceItem struct {
	ID          string  `db:"id" json:"id"`
	InvoiceID   string  `db:"invoice_id" json:"invoiceId"`
	Description string  `db:"description" json:"description"`
	Kind        string  `db:"kind" json:"kind"`
	Quantity    float64 `db:"quantity" json:"quantity"`
	UnitPrice   float64 `db:"unit_price" json:"unitPrice"`
	Amount      float64 `db:"amount" json:"amount"`
}

// InvoiceDetail adds student, room and payment context.
type InvoiceDetail struct {
	Invoice
	StudentName string        `db:"student_name" json:"studentName"`
	StudentCode string        `db:"student_code" json:"studentCode"`
	RoomNumber  *string       `db:"room_number" json:"roomNumber,omitempty"`
	PaidAmount  float64       `db:"paid_amount" json:"paidAmount"`
	Items       []InvoiceItem `db:"-" json:"items,omitempty"`
}

// InvoiceFilter holds normalised list parameters for invoices.
type InvoiceFilter struct {
	StudentID string
	RoomID    string
	Status    listing.EnumFilter
	Month     *int
	Year      *int
	DueFrom   *time.Time
	DueTo     *time.Time
	Search    string
	Page      listing.Page
}
