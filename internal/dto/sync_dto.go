package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SyncStatus is what the pending-count indicator renders.
type SyncStatus struct {
	IsOnline    bool       `json:"isOnline"`
	PendingSync int        `json:"pendingSync"`
	LastSync    *time.Time `json:"lastSync,omitempty"`
}

// DashboardStats mirrors the remote GET /dashboard/stats response.
type DashboardStats struct {
	TodaysSales        int             `json:"todaysSales"`
	TodaysTransactions int             `json:"todaysTransactions"`
	TodaysRevenue      decimal.Decimal `json:"todaysRevenue"`
	PopularServices    []ServiceCount  `json:"popularServices"`
}
