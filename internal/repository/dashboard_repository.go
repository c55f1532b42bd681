package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dorm-adp-api/internal/models"
)

// DashboardRepository runs the aggregate queries behind the dashboard summary.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs the repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// Summary aggregates counts across the dormitory tables.
func (r *DashboardRepository) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	summary := &models.DashboardSummary{RoomsByStatus: map[string]int{}}

	if err := r.db.GetContext(ctx, &summary.Buildings, "SELECT COUNT(*) FROM buildings WHERE active = true"); err != nil {
		return nil, fmt.Errorf("count buildings: %w", err)
	}

	var capacity struct {
		Rooms     int `db:"rooms"`
		Capacity  int `db:"capacity"`
		Occupancy int `db:"occupancy"`
	}
	const capacityQuery = `SELECT COUNT(*) AS rooms, COALESCE(SUM(capacity), 0) AS capacity, COALESCE(SUM(occupancy), 0) AS occupancy FROM rooms`
	if err := r.db.GetContext(ctx, &capacity, capacityQuery); err != nil {
		return nil, fmt.Errorf("sum room capacity: %w", err)
	}
	summary.Rooms = capacity.Rooms
	summary.TotalCapacity = capacity.Capacity
	summary.TotalOccupancy = capacity.Occupancy

	var statuses []models.RoomStatusCount
	if err := r.db.SelectContext(ctx, &statuses, "SELECT status, COUNT(*) AS count FROM rooms GROUP BY status"); err != nil {
		return nil, fmt.Errorf("count rooms by status: %w", err)
	}
	for _, s := range statuses {
		summary.RoomsByStatus[s.Status] = s.Count
	}

	if err := r.db.GetContext(ctx, &summary.ActiveStudents, "SELECT COUNT(*) FROM students WHERE status = $1", models.StudentStatusActive); err != nil {
		return nil, fmt.Errorf("count active students: %w", err)
	}

	var billing struct {
		Unpaid      int     `db:"unpaid"`
		Outstanding float64 `db:"outstanding"`
	}
	const billingQuery = `SELECT COUNT(*) AS unpaid,
        COALESCE(SUM(i.amount - COALESCE((SELECT SUM(p.amount) FROM payments p WHERE p.invoice_id = i.id), 0)), 0) AS outstanding
        FROM invoices i WHERE i.status IN ('UNPAID', 'PARTIALLY_PAID', 'OVERDUE')`
	if err := r.db.GetContext(ctx, &billing, billingQuery); err != nil {
		return nil, fmt.Errorf("sum outstanding invoices: %w", err)
	}
	summary.UnpaidInvoices = billing.Unpaid
	summary.OutstandingAmount = billing.Outstanding

	if err := r.db.GetContext(ctx, &summary.PendingTransfers, "SELECT COUNT(*) FROM transfer_requests WHERE status = $1", models.TransferPending); err != nil {
		return nil, fmt.Errorf("count pending transfers: %w", err)
	}
	if err := r.db.GetContext(ctx, &summary.OpenMaintenance, "SELECT COUNT(*) FROM maintenance_requests WHERE status IN ($1, $2)",
		models.MaintenancePending, models.MaintenanceInProgress); err != nil {
		return nil, fmt.Errorf("count open maintenance: %w", err)
	}

	if summary.TotalCapacity > 0 {
		summary.OccupancyRate = float64(summary.TotalOccupancy) / float64(summary.TotalCapacity)
	}
	return summary, nil
}
