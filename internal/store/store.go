// Package store defines the backing-store boundary. Every tool handler makes
// exactly one logical call here; a populated payload, ErrNoData, and a
// transport error are three distinct, expected outcomes.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNoData signals that the operation succeeded but found no applicable
// records for the given scope. It is not a failure.
var ErrNoData = errors.New("store: no data for scope")

// DailySummary aggregates one calendar day.
type DailySummary struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// SalesSummary aggregates an inclusive date range.
type SalesSummary struct {
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	Total         decimal.Decimal `json:"total"`
	Count         int             `json:"count"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

// ExpensesSummary aggregates expenses over an inclusive date range.
type ExpensesSummary struct {
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Total     decimal.Decimal `json:"total"`
	Count     int             `json:"count"`
}

// Sale is one recorded sale.
type Sale struct {
	ID          string          `json:"id"`
	CustomerID  string          `json:"customer_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Date        string          `json:"date"`
	Time        string          `json:"time,omitempty"`
	CreatedAt   string          `json:"created_at,omitempty"`
}

// NewSale is the write payload for recording a sale.
type NewSale struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Date        string          `json:"date"`
	Time        string          `json:"time,omitempty"`
	Source      string          `json:"source"` // "chat" or "reminder_reply"
}

// ProductStat is one entry in a top-products ranking.
type ProductStat struct {
	Product  string          `json:"product"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// Appointment is one scheduled appointment.
type Appointment struct {
	ID           string `json:"id"`
	CustomerName string `json:"customer_name"`
	Service      string `json:"service,omitempty"`
	Date         string `json:"date"`
	Time         string `json:"time"`
}

// Store is the remote-call interface the tool handlers consume. Each method
// is one logical operation and one network round trip.
type Store interface {
	DailySales(ctx context.Context, merchantID, date string) (*DailySummary, error)
	SalesSummary(ctx context.Context, merchantID, startDate, endDate string) (*SalesSummary, error)
	RecentSales(ctx context.Context, merchantID string, limit int) ([]Sale, error)
	TopProducts(ctx context.Context, merchantID, startDate, endDate string, limit int) ([]ProductStat, error)
	ExpensesSummary(ctx context.Context, merchantID, startDate, endDate string) (*ExpensesSummary, error)
	UpcomingAppointments(ctx context.Context, merchantID string, daysAhead int) ([]Appointment, error)
	CustomerHistory(ctx context.Context, merchantID, customerID string, limit int) ([]Sale, error)
	RecordSale(ctx context.Context, merchantID string, sale NewSale) (*Sale, error)
}
