package models

import (
	"time"

	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

// PaymentMethod describes how a payment was settled.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentCard         PaymentMethod = "CARD"
	PaymentOther        PaymentMethod = "OTHER"
)

// PaymentMethods lists every accepted payment method.
var PaymentMethods = []string{string(PaymentCash), string(PaymentBankTransfer), string(PaymentCard), string(PaymentOther)}

// Payment records money received against an invoice.
type Payment struct {
	ID        string        `db:"id" json:"id"`
	InvoiceID string        `db:"invoice_id" json:"invoiceId"`
	StudentID string        `db:"student_id" json:"studentId"`
	Amount    float64       `db:"amount" json:"amount"`
	Method    PaymentMethod `db:"method" json:"method"`
	PaidAt    time.Time     `db:"paid_at" json:"paidAt"`
	Reference *string       `db:"reference" json:"reference"`
	Notes     *string       `db:"notes" json:"notes"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
}

// PaymentDetail adds invoice and student labels.
type PaymentDetail struct {
	Payment
	InvoiceNumber string `db:"invoice_number" json:"invoiceNumber"`
	StudentName   string `db:"student_name" json:"studentName"`
}

// PaymentFilter holds normalised list parameters for payments.
type PaymentFilter struct {
	InvoiceID string
	StudentID string
	Method    listing.EnumFilter
	From      *time.Time
	To        *time.Time
	Search    string
	Page      listing.Page
}
