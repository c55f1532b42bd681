package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

func TestInvoiceRepositoryListWithPaidAmount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	month, year := 3, 2024
	where := " WHERE i.student_id = $1 AND i.status NOT IN ($2) AND i.billing_month = $3 AND i.billing_year = $4 AND (i.invoice_number ILIKE $5 OR s.full_name ILIKE $5)"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) " + invoiceFrom + where)).
		WithArgs("s-1", "CANCELLED", 3, 2024, "%INV%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(regexp.QuoteMeta("AS paid_amount " + invoiceFrom + where +
		" ORDER BY i.billing_year DESC, i.billing_month DESC, i.created_at DESC LIMIT 10 OFFSET 10")).
		WithArgs("s-1", "CANCELLED", 3, 2024, "%INV%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "invoice_number", "status", "amount", "student_name", "paid_amount"}).
			AddRow("i-1", "INV-202403-0001", "PARTIALLY_PAID", 1500000.0, "Nguyen An", 500000.0))

	invoices, total, err := repo.List(context.Background(), models.InvoiceFilter{
		StudentID: "s-1",
		Status:    listing.EnumFilter{Exclude: []string{"CANCELLED"}},
		Month:     &month,
		Year:      &year,
		Search:    "INV",
		Page:      listing.NewPage(2, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, invoices, 1)
	assert.Equal(t, 500000.0, invoices[0].PaidAmount)
	assert.Equal(t, models.InvoiceStatusPartiallyPaid, invoices[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositoryCreateWritesItemsInOneTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	due := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoices (id, invoice_number")).
		WithArgs(sqlmock.AnyArg(), "INV-202403-0001", "s-1", nil, 3, 2024, 1650000.0, "UNPAID", due, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoice_items")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "Room fee", "ROOM", 1.0, 1500000.0, 1500000.0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoice_items")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "Electricity", "ELECTRICITY", 50.0, 3000.0, 150000.0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	invoice := &models.Invoice{InvoiceNumber: "INV-202403-0001", StudentID: "s-1", BillingMonth: 3, BillingYear: 2024,
		Amount: 1650000, Status: models.InvoiceStatusUnpaid, DueDate: due}
	items := []models.InvoiceItem{
		{Description: "Room fee", Kind: "ROOM", Quantity: 1, UnitPrice: 1500000, Amount: 1500000},
		{Description: "Electricity", Kind: "ELECTRICITY", Quantity: 50, UnitPrice: 3000, Amount: 150000},
	}
	require.NoError(t, repo.Create(context.Background(), invoice, items))
	assert.NotEmpty(t, invoice.ID)
	for _, item := range items {
		assert.Equal(t, invoice.ID, item.InvoiceID)
		assert.NotEmpty(t, item.ID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositoryCreateRollsBackOnItemFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoices (id, invoice_number")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoice_items")).WillReturnError(errors.New("check violation"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Invoice{InvoiceNumber: "INV-1", StudentID: "s-1"},
		[]models.InvoiceItem{{Description: "Room fee", Kind: "ROOM", Quantity: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create invoice item")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositoryUpdateStatusMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE invoices SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("i-404", "PAID", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "i-404", models.InvoiceStatusPaid)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}
