package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/pkg/database"
	appErrors "github.com/noah-isme/dorm-adp-api/pkg/errors"
	"github.com/noah-isme/dorm-adp-api/pkg/export"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

type readingLister interface {
	List(ctx context.Context, filter models.UtilityReadingFilter) ([]models.UtilityReadingDetail, int, error)
}

type invoiceLister interface {
	List(ctx context.Context, filter models.InvoiceFilter) ([]models.InvoiceDetail, int, error)
}

type exportRenderer interface {
	Render(format export.Format, data export.Dataset) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	MaxRows int
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
	Total       int
}

// Truncated reports whether more rows matched than were exported.
func (f *ExportFile) Truncated() bool {
	return f.Total > f.Rows
}

// ExportService renders filtered listings as CSV, PDF or XLSX.
type ExportService struct {
	readings readingLister
	invoices invoiceLister
	renderer exportRenderer
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      ExportConfig
	now      func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(readings readingLister, invoices invoiceLister, renderer exportRenderer, cfg ExportConfig, metrics *MetricsService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = export.NewRegistry()
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 5000
	}
	return &ExportService{
		readings: readings,
		invoices: invoices,
		renderer: renderer,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// UtilityReadings exports readings matching filter; its page is ignored.
func (s *ExportService) UtilityReadings(ctx context.Context, filter models.UtilityReadingFilter, format export.Format) (*ExportFile, error) {
	filter.Page = s.page()
	start := time.Now()
	readings, total, err := s.readings.List(ctx, filter)
	if err != nil {
		return nil, database.TranslateError(err, "utility readings")
	}
	s.metrics.ObserveDBQuery("utility_readings.export", time.Since(start))

	data := export.Dataset{
		Title:   "Utility Readings",
		Headers: []string{"Building", "Room", "Type", "Reading Date", "Index", "Month", "Year", "Notes"},
		Rows:    make([][]string, 0, len(readings)),
	}
	for _, r := range readings {
		data.Rows = append(data.Rows, []string{
			r.BuildingName,
			r.RoomNumber,
			string(r.Type),
			r.ReadingDate.Format("2006-01-02"),
			strconv.FormatFloat(r.IndexValue, 'f', -1, 64),
			strconv.Itoa(r.BillingMonth),
			strconv.Itoa(r.BillingYear),
			deref(r.Notes),
		})
	}
	return s.render("utility-readings", format, data, total)
}

// Invoices exports invoices matching filter; its page is ignored.
func (s *ExportService) Invoices(ctx context.Context, filter models.InvoiceFilter, format export.Format) (*ExportFile, error) {
	filter.Page = s.page()
	start := time.Now()
	invoices, total, err := s.invoices.List(ctx, filter)
	if err != nil {
		return nil, database.TranslateError(err, "invoices")
	}
	s.metrics.ObserveDBQuery("invoices.export", time.Since(start))

	data := export.Dataset{
		Title:   "Invoices",
		Headers: []string{"Number", "Student Code", "Student", "Room", "Period", "Amount", "Paid", "Status", "Due Date"},
		Rows:    make([][]string, 0, len(invoices)),
	}
	for _, inv := range invoices {
		data.Rows = append(data.Rows, []string{
			inv.InvoiceNumber,
			inv.StudentCode,
			inv.StudentName,
			deref(inv.RoomNumber),
			fmt.Sprintf("%04d-%02d", inv.BillingYear, inv.BillingMonth),
			strconv.FormatFloat(inv.Amount, 'f', 2, 64),
			strconv.FormatFloat(inv.PaidAmount, 'f', 2, 64),
			string(inv.Status),
			inv.DueDate.Format("2006-01-02"),
		})
	}
	return s.render("invoices", format, data, total)
}

func (s *ExportService) page() listing.Page {
	return listing.Page{Number: 1, Limit: s.cfg.MaxRows}
}

func (s *ExportService) render(name string, format export.Format, data export.Dataset, total int) (*ExportFile, error) {
	payload, err := s.renderer.Render(format, data)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}
	file := &ExportFile{
		Filename:    fmt.Sprintf("%s-%s.%s", name, s.now().UTC().Format("20060102-150405"), format),
		ContentType: format.ContentType(),
		Data:        payload,
		Rows:        len(data.Rows),
		Total:       total,
	}
	s.metrics.RecordExport(name, string(format), file.Rows, file.Truncated())
	if file.Truncated() {
		s.logger.Warn("export truncated", zap.String("export", name), zap.Int("rows", file.Rows), zap.Int("total", total))
	}
	return file, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
