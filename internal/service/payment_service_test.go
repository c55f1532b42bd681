package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dorm-adp-api/internal/models"
)

const (
	testInvoiceID          = "3f2e1d0c-9b8a-4765-8432-1a0b9c8d7e6f"
	testCancelledInvoiceID = "6a5b4c3d-2e1f-4a0b-9c8d-7e6f5a4b3c2d"
)

type paymentRepoStub struct {
	payments map[string]*models.PaymentDetail
	created  *models.Payment
}

func (s *paymentRepoStub) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error) {
	return []models.PaymentDetail{}, 0, nil
}

func (s *paymentRepoStub) FindByID(ctx context.Context, id string) (*models.PaymentDetail, error) {
	if p, ok := s.payments[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func (s *paymentRepoStub) Create(ctx context.Context, payment *models.Payment) error {
	payment.ID = "payment-new"
	s.created = payment
	s.payments[payment.ID] = &models.PaymentDetail{Payment: *payment, InvoiceNumber: "INV-202405-AAAAAA"}
	return nil
}

func (s *paymentRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.payments[id]; !ok {
		return sql.ErrNoRows
	}
	return nil
}

type invoiceLookupStub map[string]*models.InvoiceDetail

func (s invoiceLookupStub) FindByID(ctx context.Context, id string) (*models.InvoiceDetail, error) {
	if inv, ok := s[id]; ok {
		return inv, nil
	}
	return nil, sql.ErrNoRows
}

func newPaymentService(repo *paymentRepoStub) *PaymentService {
	invoices := invoiceLookupStub{
		testInvoiceID:          {Invoice: models.Invoice{ID: testInvoiceID, StudentID: testStudentID, Status: models.InvoiceStatusUnpaid}},
		testCancelledInvoiceID: {Invoice: models.Invoice{ID: testCancelledInvoiceID, StudentID: testStudentID, Status: models.InvoiceStatusCancelled}},
	}
	svc := NewPaymentService(repo, invoices, nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC) }
	return svc
}

func TestPaymentCreate(t *testing.T) {
	repo := &paymentRepoStub{payments: map[string]*models.PaymentDetail{}}
	svc := newPaymentService(repo)

	payment, err := svc.Create(context.Background(), CreatePaymentRequest{
		InvoiceID: testInvoiceID, StudentID: testStudentID, Amount: 500000, Method: "bank_transfer", Reference: strPtr(" TRX-1 "),
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentMethod("BANK_TRANSFER"), payment.Method)
	assert.Equal(t, time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC), payment.PaidAt)
	require.NotNil(t, payment.Reference)
	assert.Equal(t, "TRX-1", *payment.Reference)
}

func TestPaymentCreatePaidAtDate(t *testing.T) {
	repo := &paymentRepoStub{payments: map[string]*models.PaymentDetail{}}
	svc := newPaymentService(repo)

	_, err := svc.Create(context.Background(), CreatePaymentRequest{InvoiceID: testInvoiceID, StudentID: testStudentID, Amount: 1, Method: "CASH", PaidAt: "2024-05-20"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), repo.created.PaidAt)

	_, err = svc.Create(context.Background(), CreatePaymentRequest{InvoiceID: testInvoiceID, StudentID: testStudentID, Amount: 1, Method: "CASH", PaidAt: "soon"})
	require.Error(t, err)
	assert.Equal(t, "paidAt", appError(err).Fields[0].Field)
}

func TestPaymentCreateRules(t *testing.T) {
	svc := newPaymentService(&paymentRepoStub{payments: map[string]*models.PaymentDetail{}})
	ctx := context.Background()

	_, err := svc.Create(ctx, CreatePaymentRequest{InvoiceID: testInvoiceID, StudentID: testStudentID, Amount: 0, Method: "CASH"})
	require.Error(t, err)
	assert.Equal(t, "amount", appError(err).Fields[0].Field)

	_, err = svc.Create(ctx, CreatePaymentRequest{InvoiceID: testCancelledInvoiceID, StudentID: testStudentID, Amount: 10, Method: "CASH"})
	require.Error(t, err)
	assert.Equal(t, "invoiceId", appError(err).Fields[0].Field)

	_, err = svc.Create(ctx, CreatePaymentRequest{InvoiceID: testInvoiceID, StudentID: testRoomID, Amount: 10, Method: "CASH"})
	require.Error(t, err)
	assert.Equal(t, "studentId", appError(err).Fields[0].Field)

	_, err = svc.Create(ctx, CreatePaymentRequest{InvoiceID: testRoomID2, StudentID: testStudentID, Amount: 10, Method: "CASH"})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appError(err).Status)
}
