package models

import "time"

// DashboardSummary aggregates headline figures for the back office.
type DashboardSummary struct {
	Buildings         int            `json:"buildings"`
	Rooms             int            `json:"rooms"`
	RoomsByStatus     map[string]int `json:"roomsByStatus"`
	TotalCapacity     int            `json:"totalCapacity"`
	TotalOccupancy    int            `json:"totalOccupancy"`
	OccupancyRate     float64        `json:"occupancyRate"` // 0..1
	ActiveStudents    int            `json:"activeStudents"`
	UnpaidInvoices    int            `json:"unpaidInvoices"`
	OutstandingAmount float64        `json:"outstandingAmount"`
	PendingTransfers  int            `json:"pendingTransfers"`
	OpenMaintenance   int            `json:"openMaintenance"`
	GeneratedAt       time.Time      `json:"generatedAt"`
}

// RoomStatusCount is one row of the rooms-by-status aggregate.
type RoomStatusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}
