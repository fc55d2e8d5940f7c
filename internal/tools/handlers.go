package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	berrors "github.com/balcaohq/balcao/internal/errors"
	"github.com/balcaohq/balcao/internal/period"
	"github.com/balcaohq/balcao/internal/store"
	"github.com/balcaohq/balcao/internal/validate"
)

// Typed inputs, one per tool. Constructed right after validation so handler
// code past the guard clauses is fully typed; the untyped map exists only at
// the dispatch boundary.

type currentDateInput struct {
	MerchantID string `json:"merchant_id"`
}

type dailySalesInput struct {
	MerchantID string `json:"merchant_id"`
	Date       string `json:"date"`
}

type rangeInput struct {
	MerchantID string `json:"merchant_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

type periodInput struct {
	MerchantID string `json:"merchant_id"`
	Period     string `json:"period"`
}

type recentSalesInput struct {
	MerchantID string `json:"merchant_id"`
	Limit      int    `json:"limit"`
}

type topProductsInput struct {
	MerchantID string `json:"merchant_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Limit      int    `json:"limit"`
}

type appointmentsInput struct {
	MerchantID string `json:"merchant_id"`
	DaysAhead  int    `json:"days_ahead"`
}

type customerHistoryInput struct {
	MerchantID string `json:"merchant_id"`
	CustomerID string `json:"customer_id"`
	Limit      int    `json:"limit"`
}

type recordSaleInput struct {
	MerchantID  string  `json:"merchant_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
}

func loadLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, berrors.NewViolation("timezone", "unknown timezone %q", name)
	}
	return loc, nil
}

func handleCurrentDate(ctx context.Context, r *Registry, args map[string]any) Result {
	var in currentDateInput
	if err := decodeInput(args, &in); err != nil {
		return errorResult(err.Error())
	}

	loc, err := loadLocation(r.cfg.DefaultTimezone)
	if err != nil {
		return errorResult(err.Error())
	}
	now := r.now().In(loc)

	payload := map[string]any{
		"date":     now.Format(validate.DateLayout),
		"weekday":  now.Weekday().String(),
		"timezone": r.cfg.DefaultTimezone,
	}
	return okResult(payload, fmt.Sprintf("Today is %s (%s, %s)",
		now.Format(validate.DateLayout), now.Weekday(), r.cfg.DefaultTimezone))
}

func handleDailySales(ctx context.Context, r *Registry, args map[string]any) Result {
	var in dailySalesInput
	if err := decodeInput(args, &in); err != nil {
		return errorResult(err.Error())
	}
	if err := validate.Identifier("merchant_id", in.MerchantID); err != nil {
		return errorResult(err.Error())
	}
	if _, err := validate.Date("date", in.Date); err != nil {
		return errorResult(err.Error())
	}

	summary, err := r.store.DailySales(ctx, in.MerchantID, in.Date)
	if errors.Is(err, store.ErrNoData) {
		return noDataResult(fmt.Sprintf("No sales recorded on %s", in.Date))
	}
	if err != nil {
		return storeFailure(ToolDailySales, err)
	}

	if summary.Count == 0 {
		return noDataResult(fmt.Sprintf("No sales recorded on %s", in.Date))
	}
	line := fmt.Sprintf("Sales on %s: R$ %s across %d sales",
		in.Date, summary.Total.StringFixed(2), summary.Count)
	if summary.Total.IsZero() {
		return zeroResult(summary, fmt.Sprintf("%d sales recorded on %s but the total is zero", summary.Count, in.Date))
	}
	return okResult(summary, line)
}

func handleSalesSummary(ctx context.Context, r *Registry, args map[string]any) Result {
	var in rangeInput
	if err := decodeInput(args, &in); err != nil {
		return errorResult(err.Error())
	}
	if err := validate.Identifier("merchant_id", in.MerchantID); err != nil {
		return errorResult(err.Error())
	}
	if _, _, err := validate.DateRange("start_date", "end_date", in.StartDate, in.EndDate); err != nil {
		return errorResult(err.Error())
	}

	return salesSummaryResult(ctx, r, ToolSalesSummary, in.MerchantID, in.StartDate, in.EndDate, "")
}

func handleSalesForPeriod(ctx context.Context, r *Registry, args map[string]any) Result {
	var in periodInput
	if err := decodeInput(args, &in); err != nil {
		return errorResult(err.Error())
	}
	if err := validate.Identifier("merchant_id", in.MerchantID); err != nil {
		return errorResult(err.Error())
	}
	phrase, err := validate.NonEmpty("period", in.Period)
	if err != nil {
		return errorResult(err.Error())
	}

	rng, err := period.Resolve(period.Query{
		Phrase:    phrase,
		Timezone:  r.cfg.DefaultTimezone,
		Reference: r.now(),
	})
	if err != nil {
		// Surfaced verbatim so the caller can rephrase; never guessed.
		return errorResult(err.Error())
	}

	return salesSummaryResult(ctx, r, ToolSalesForPeriod, in.MerchantID, rng.StartDate(), rng.EndDate(), string(rng.Kind))
}

// salesSummaryResult is the shared range-aggregate path for the explicit
// and phrase-resolved sales tools. One store call.
func salesSummaryResult(ctx context.Context, r *Registry, toolName, merchantID, start, end, kind string) Result {
	summary, err := r.store.SalesSummary(ctx, merchantID, start, end)
	if errors.Is(err, store.ErrNoData) {
		return noDataResult(fmt.Sprintf("No sales recorded between %s and %s", start, end))
	}
	if err != nil {
		return storeFailure(toolName, err)
	}

	if summary.Count == 0 {
		return noDataResult(fmt.Sprintf("No sales recorded between %s and %s", start, end))
	}

	payload := any(summary)
	if kind != "" {
		payload = map[string]any{
			"period_kind": kind,
			"start_date":  start,
			"end_date":    end,
			"summary":     summary,
		}
	}
	if summary.Total.IsZero() {
		return zeroResult(payload, fmt.Sprintf("%d sales recorded between %s and %s but the total is zero",
			summary.Count, start, end))
	}
	return okResult(payload, fmt.Sprintf("Sales %s to %s: R$ %s across %d sales (avg R$ %s)",
		start, end, summary.Total.StringFixed(2), summary.Count, summary.AverageTicket.StringFixed(2)))
}

func handleRecentSales(ctx context.Context, r *Registry, args map[string]any) Result {
	var in recentSalesInput
	if err := decodeInput(args, &in); err != nil {
		return errorResult(err.Error())
	}
	if err := validate.Identifier("merchant_id", in.MerchantID); err != nil {
		return errorResult(err.Error())
	}
	if in.Limit == 0 {
		in.Limit = 10
	}
	if err := validate.IntRange("limit", in.Limit, 1, r.cfg.MaxListLimit); err != nil {
		return errorResult(err.Error())
	}

	sales, err := r.store.RecentSales(ctx, in.MerchantID, in.Limit)
	if errors.Is(err, store.ErrNoData) || (err == nil && len(sales) == 0) {
		return noDataResult("No sales recorded yet")
	}
	if err != nil {
		return storeFailure(ToolRecentSales, err)
	}
	return okResult(map[string]any{"sales": sales},
		fmt.Sprintf("Last %d sales, newest first", len(sales)))
}

func handleTopProducts(ctx context.Context, r *Registry, args map[string]any) Result {
	var in topProductsInput
	if err := decodeInput(args, &in); err != nil {
		return errorResult(err.Error())
	}
	if err := validate.Identifier("merchant_id", in.MerchantID); err != nil {
		return errorResult(err.Error())
	}
	if _, _, err := validate.DateRange("start_date", "end_date", in.StartDate, in.EndDate); err != nil {
		return errorResult(err.Error())
	}
	if in.Limit == 0 {
		in.Limit = 5
	}
	if err := validate.IntRange("limit", in.Limit, 1, r.cfg.MaxTopProducts); err != nil {
		return errorResult(err.Error())
	}

	products, err := r.store.TopProducts(ctx, in.MerchantID, in.StartDate, in.EndDate, in.Limit)
	if errors.Is(err, store.ErrNoData) || (err == nil && len(products) == 0) {
		return noDataResult(fmt.Sprintf("No product sales between %s and %s", in.StartDate, in.EndDate))
	}
	if err != nil {
		return storeFailure(ToolTopProducts, err)
	}
	return okResult(map[string]any{"products": products},
		fmt.Sprintf("Top %d products from %s to %s", len(products), in.StartDate, in.EndDate))
}

func handleExpensesSummary(ctx context.Context, r *Registry, args map[string]any) Result {
	var in rangeInput
	if err := decodeInput(args, &in); err != nil {
		return errorResult(err.Error())
	}
	if err := validate.Identifier("merchant_id", in.MerchantID); err != nil {
		return errorResult(err.Error())
	}
	if _, _, err := validate.DateRange("start_date", "end_date", in.StartDate, in.EndDate); err != nil {
		return errorResult(err.Error())
	}

	summary, err := r.store.ExpensesSummary(ctx, in.MerchantID, in.StartDate, in.EndDate)
	if errors.Is(err, store.ErrNoData) {
		return noDataResult(fmt.Sprintf("No expenses recorded between %s and %s", in.StartDate, in.EndDate))
	}
	if err != nil {
		return storeFailure(ToolExpensesSummary, err)
	}
	if summary.Count == 0 {
		return noDataResult(fmt.Sprintf("No expenses recorded between %s and %s", in.StartDate, in.EndDate))
	}
	if summary.Total.IsZero() {
		return zeroResult(summary, fmt.Sprintf("%d expenses recorded between %s and %s but the total is zero",
			summary.Count, in.StartDate, in.EndDate))
	}
	return okResult(summary, fmt.Sprintf("Expenses %s to %s: R$ %s across %d entries",
		in.StartDate, in.EndDate, summary.Total.StringFixed(2), summary.Count))
}

func handleUpcomingAppointments(ctx context.Context, r *Registry, args map[string]any) Result {
	var in appointmentsInput
	if err := decodeInput(args, &in); err != nil {
		return errorResult(err.Error())
	}
	if err := validate.Identifier("merchant_id", in.MerchantID); err != nil {
		return errorResult(err.Error())
	}
	if in.DaysAhead == 0 {
		in.DaysAhead = 7
	}
	if err := validate.IntRange("days_ahead", in.DaysAhead, 1, r.cfg.MaxDaysAhead); err != nil {
		return errorResult(err.Error())
	}

	appts, err := r.store.UpcomingAppointments(ctx, in.MerchantID, in.DaysAhead)
	if errors.Is(err, store.ErrNoData) || (err == nil && len(appts) == 0) {
		return noDataResult(fmt.Sprintf("No appointments in the next %d days", in.DaysAhead))
	}
	if err != nil {
		return storeFailure(ToolUpcomingAppointments, err)
	}
	return okResult(map[string]any{"appointments": appts},
		fmt.Sprintf("%d appointments in the next %d days", len(appts), in.DaysAhead))
}

func handleCustomerHistory(ctx context.Context, r *Registry, args map[string]any) Result {
	var in customerHistoryInput
	if err := decodeInput(args, &in); err != nil {
		return errorResult(err.Error())
	}
	if err := validate.Identifier("merchant_id", in.MerchantID); err != nil {
		return errorResult(err.Error())
	}
	if err := validate.Identifier("customer_id", in.CustomerID); err != nil {
		return errorResult(err.Error())
	}
	if in.Limit == 0 {
		in.Limit = 10
	}
	if err := validate.IntRange("limit", in.Limit, 1, r.cfg.MaxListLimit); err != nil {
		return errorResult(err.Error())
	}

	sales, err := r.store.CustomerHistory(ctx, in.MerchantID, in.CustomerID, in.Limit)
	if errors.Is(err, store.ErrNoData) || (err == nil && len(sales) == 0) {
		return noDataResult("No sales recorded for this customer")
	}
	if err != nil {
		return storeFailure(ToolCustomerHistory, err)
	}
	return okResult(map[string]any{"sales": sales},
		fmt.Sprintf("%d past sales for customer", len(sales)))
}

func handleRecordSale(ctx context.Context, r *Registry, args map[string]any) Result {
	var in recordSaleInput
	if err := decodeInput(args, &in); err != nil {
		return errorResult(err.Error())
	}
	if err := validate.Identifier("merchant_id", in.MerchantID); err != nil {
		return errorResult(err.Error())
	}
	if err := validate.PositiveAmount("amount", in.Amount); err != nil {
		return errorResult(err.Error())
	}
	if in.Date == "" {
		loc, err := loadLocation(r.cfg.DefaultTimezone)
		if err != nil {
			return errorResult(err.Error())
		}
		in.Date = r.now().In(loc).Format(validate.DateLayout)
	} else if _, err := validate.Date("date", in.Date); err != nil {
		return errorResult(err.Error())
	}
	if in.Time != "" {
		if err := validate.TimeOfDay("time", in.Time); err != nil {
			return errorResult(err.Error())
		}
	}

	sale, err := r.store.RecordSale(ctx, in.MerchantID, store.NewSale{
		Amount:      decimal.NewFromFloat(in.Amount),
		Description: in.Description,
		Date:        in.Date,
		Time:        in.Time,
		Source:      "chat",
	})
	if err != nil {
		return storeFailure(ToolRecordSale, err)
	}
	return okResult(sale, fmt.Sprintf("Recorded sale of R$ %s on %s",
		sale.Amount.StringFixed(2), sale.Date))
}
