package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevenueTotal sums successful transactions over a window.
type RevenueTotal struct {
	Sales  int
	Amount decimal.Decimal
}

// DashboardStats is the admin overview: all-time totals plus the current calendar month.
type DashboardStats struct {
	Users           int
	NewUsersInMonth int
	Products        int
	Revenue         RevenueTotal
	MonthRevenue    RevenueTotal
	Currency        string
	MonthStart      time.Time
}

// StartOfMonth returns midnight UTC on the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
