package tools

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balcaohq/balcao/internal/config"
	"github.com/balcaohq/balcao/internal/store"
)

const testMerchant = "7b1d2f3e-9c4a-4d5b-8e6f-0a1b2c3d4e5f"

// fakeStore counts calls so tests can assert that validation failures never
// reach the backing store.
type fakeStore struct {
	calls int

	daily    *store.DailySummary
	summary  *store.SalesSummary
	expenses *store.ExpensesSummary
	sales    []store.Sale
	products []store.ProductStat
	appts    []store.Appointment
	recorded *store.Sale
	err      error
}

func (f *fakeStore) DailySales(ctx context.Context, merchantID, date string) (*store.DailySummary, error) {
	f.calls++
	return f.daily, f.err
}

func (f *fakeStore) SalesSummary(ctx context.Context, merchantID, startDate, endDate string) (*store.SalesSummary, error) {
	f.calls++
	return f.summary, f.err
}

func (f *fakeStore) RecentSales(ctx context.Context, merchantID string, limit int) ([]store.Sale, error) {
	f.calls++
	return f.sales, f.err
}

func (f *fakeStore) TopProducts(ctx context.Context, merchantID, startDate, endDate string, limit int) ([]store.ProductStat, error) {
	f.calls++
	return f.products, f.err
}

func (f *fakeStore) ExpensesSummary(ctx context.Context, merchantID, startDate, endDate string) (*store.ExpensesSummary, error) {
	f.calls++
	return f.expenses, f.err
}

func (f *fakeStore) UpcomingAppointments(ctx context.Context, merchantID string, daysAhead int) ([]store.Appointment, error) {
	f.calls++
	return f.appts, f.err
}

func (f *fakeStore) CustomerHistory(ctx context.Context, merchantID, customerID string, limit int) ([]store.Sale, error) {
	f.calls++
	return f.sales, f.err
}

func (f *fakeStore) RecordSale(ctx context.Context, merchantID string, sale store.NewSale) (*store.Sale, error) {
	f.calls++
	f.recorded = &store.Sale{
		ID:     "s-new",
		Amount: sale.Amount,
		Date:   sale.Date,
		Time:   sale.Time,
	}
	return f.recorded, f.err
}

func testRegistry(fs *fakeStore) *Registry {
	cfg := config.ToolsConfig{
		DefaultTimezone: "America/Sao_Paulo",
		MaxListLimit:    100,
		MaxTopProducts:  25,
		MaxDaysAhead:    365,
	}
	fixed := time.Date(2025, 9, 24, 15, 0, 0, 0, time.UTC)
	return NewRegistry(fs, cfg).WithClock(func() time.Time { return fixed })
}

func TestDispatchUnknownTool(t *testing.T) {
	fs := &fakeStore{}
	res := testRegistry(fs).Dispatch(context.Background(), Invocation{Name: "drop_tables"})
	assert.True(t, res.IsError)
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "drop_tables")
	assert.Zero(t, fs.calls)
}

func TestDaysAheadOutOfRangeSkipsStore(t *testing.T) {
	fs := &fakeStore{}
	res := testRegistry(fs).Dispatch(context.Background(), Invocation{
		Name: ToolUpcomingAppointments,
		Args: map[string]any{"merchant_id": testMerchant, "days_ahead": 400},
	})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Message, "days_ahead")
	assert.Zero(t, fs.calls, "validation failure must not reach the store")
}

func TestMissingMerchantIDSkipsStore(t *testing.T) {
	fs := &fakeStore{}
	res := testRegistry(fs).Dispatch(context.Background(), Invocation{
		Name: ToolDailySales,
		Args: map[string]any{"date": "2025-09-24"},
	})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Message, "merchant_id")
	assert.Zero(t, fs.calls)
}

func TestDailySalesNoData(t *testing.T) {
	fs := &fakeStore{err: store.ErrNoData}
	res := testRegistry(fs).Dispatch(context.Background(), Invocation{
		Name: ToolDailySales,
		Args: map[string]any{"merchant_id": testMerchant, "date": "2025-09-24"},
	})
	assert.False(t, res.IsError)
	assert.Equal(t, StatusNoData, res.Status)
	assert.Equal(t, 1, fs.calls)
}

func TestDailySalesZeroTotalWithRecords(t *testing.T) {
	fs := &fakeStore{daily: &store.DailySummary{
		Date:  "2025-09-24",
		Total: decimal.Zero,
		Count: 3,
	}}
	res := testRegistry(fs).Dispatch(context.Background(), Invocation{
		Name: ToolDailySales,
		Args: map[string]any{"merchant_id": testMerchant, "date": "2025-09-24"},
	})
	assert.Equal(t, StatusZero, res.Status)
	assert.Contains(t, res.Message, "total is zero")
}

func TestDailySalesPopulated(t *testing.T) {
	total, err := decimal.NewFromString("320.50")
	require.NoError(t, err)
	fs := &fakeStore{daily: &store.DailySummary{
		Date:  "2025-09-24",
		Total: total,
		Count: 4,
	}}
	res := testRegistry(fs).Dispatch(context.Background(), Invocation{
		Name: ToolDailySales,
		Args: map[string]any{"merchant_id": testMerchant, "date": "2025-09-24"},
	})
	assert.Equal(t, StatusOK, res.Status)
	assert.Contains(t, res.Summary, "320.50")
	assert.Contains(t, res.Summary, "4 sales")
}

func TestSalesSummaryReversedRange(t *testing.T) {
	fs := &fakeStore{}
	res := testRegistry(fs).Dispatch(context.Background(), Invocation{
		Name: ToolSalesSummary,
		Args: map[string]any{
			"merchant_id": testMerchant,
			"start_date":  "2025-09-30",
			"end_date":    "2025-09-01",
		},
	})
	assert.True(t, res.IsError)
	assert.Zero(t, fs.calls)
}

func TestSalesForPeriodResolvesPhrase(t *testing.T) {
	total, _ := decimal.NewFromString("1000")
	fs := &fakeStore{summary: &store.SalesSummary{Total: total, Count: 10, AverageTicket: total.Div(decimal.NewFromInt(10))}}
	res := testRegistry(fs).Dispatch(context.Background(), Invocation{
		Name: ToolSalesForPeriod,
		Args: map[string]any{"merchant_id": testMerchant, "period": "esta semana"},
	})
	require.Equal(t, StatusOK, res.Status)
	// Reference 2025-09-24 is a Wednesday; the Monday-anchored week is 22..28.
	assert.Contains(t, res.Summary, "2025-09-22")
	assert.Contains(t, res.Summary, "2025-09-28")
}

func TestSalesForPeriodUnsupportedPhrase(t *testing.T) {
	fs := &fakeStore{}
	res := testRegistry(fs).Dispatch(context.Background(), Invocation{
		Name: ToolSalesForPeriod,
		Args: map[string]any{"merchant_id": testMerchant, "period": "no carnaval passado"},
	})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Message, "no carnaval passado")
	assert.Zero(t, fs.calls)
}

func TestRecentSalesDefaultsAndEmpty(t *testing.T) {
	fs := &fakeStore{sales: []store.Sale{}}
	res := testRegistry(fs).Dispatch(context.Background(), Invocation{
		Name: ToolRecentSales,
		Args: map[string]any{"merchant_id": testMerchant},
	})
	assert.Equal(t, StatusNoData, res.Status)
	assert.Equal(t, 1, fs.calls)
}

func TestTopProductsLimitTooLarge(t *testing.T) {
	fs := &fakeStore{}
	res := testRegistry(fs).Dispatch(context.Background(), Invocation{
		Name: ToolTopProducts,
		Args: map[string]any{
			"merchant_id": testMerchant,
			"start_date":  "2025-09-01",
			"end_date":    "2025-09-30",
			"limit":       26,
		},
	})
	assert.True(t, res.IsError)
	assert.Zero(t, fs.calls)
}

func TestCurrentDateUsesClockAndTimezone(t *testing.T) {
	fs := &fakeStore{}
	res := testRegistry(fs).Dispatch(context.Background(), Invocation{
		Name: ToolCurrentDate,
		Args: map[string]any{"merchant_id": testMerchant},
	})
	require.Equal(t, StatusOK, res.Status)
	// 15:00 UTC is 12:00 in São Paulo, still the 24th.
	assert.Contains(t, res.Summary, "2025-09-24")
	assert.Contains(t, res.Summary, "Wednesday")
	assert.Zero(t, fs.calls)
}

func TestRecordSaleDefaultsDateToToday(t *testing.T) {
	fs := &fakeStore{}
	res := testRegistry(fs).Dispatch(context.Background(), Invocation{
		Name: ToolRecordSale,
		Args: map[string]any{"merchant_id": testMerchant, "amount": 150.5},
	})
	require.Equal(t, StatusOK, res.Status)
	require.NotNil(t, fs.recorded)
	assert.Equal(t, "2025-09-24", fs.recorded.Date)
}

func TestRecordSaleRejectsNonPositiveAmount(t *testing.T) {
	fs := &fakeStore{}
	res := testRegistry(fs).Dispatch(context.Background(), Invocation{
		Name: ToolRecordSale,
		Args: map[string]any{"merchant_id": testMerchant, "amount": -5},
	})
	assert.True(t, res.IsError)
	assert.Zero(t, fs.calls)
}

func TestCatalogMatchesDispatchTable(t *testing.T) {
	r := testRegistry(&fakeStore{})
	for _, def := range Catalog() {
		_, ok := r.handlers[def.Name]
		assert.True(t, ok, "catalog tool %s has no handler", def.Name)
	}
	assert.Len(t, Catalog(), len(r.handlers))
}

func TestResultContentIsJSON(t *testing.T) {
	res := noDataResult("nothing here")
	assert.Contains(t, res.Content(), `"status":"no_data"`)
}
