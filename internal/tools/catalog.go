// Package tools holds the static tool catalog and the dispatch table the
// orchestrator drives. The catalog is built once at startup and reused for
// every turn so the LLM's view of available capabilities never shifts
// mid-conversation.
package tools

import "github.com/balcaohq/balcao/internal/llm"

// Tool names. The LLM selects tools by these identifiers; they are stable.
const (
	ToolCurrentDate          = "get_current_date"
	ToolDailySales           = "get_daily_sales"
	ToolSalesSummary         = "get_sales_summary"
	ToolSalesForPeriod       = "get_sales_for_period"
	ToolRecentSales          = "list_recent_sales"
	ToolTopProducts          = "get_top_products"
	ToolExpensesSummary      = "get_expenses_summary"
	ToolUpcomingAppointments = "get_upcoming_appointments"
	ToolCustomerHistory      = "get_customer_history"
	ToolRecordSale           = "record_sale"
)

// AnchorTool is the designated first-iteration tool: every conversation is
// time-anchored before any other reasoning happens.
const AnchorTool = ToolCurrentDate

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

// Catalog returns the ordered tool definitions. Call once at startup; the
// result must be treated as immutable.
func Catalog() []llm.ToolDef {
	return []llm.ToolDef{
		{
			Name:        ToolCurrentDate,
			Description: "Get today's date, weekday, and timezone for the merchant. Call this before reasoning about any date.",
			InputSchema: objectSchema(map[string]any{
				"merchant_id": prop("string", "Merchant identifier (UUID)"),
			}),
		},
		{
			Name:        ToolDailySales,
			Description: "Get the sales total and count for one calendar day.",
			InputSchema: objectSchema(map[string]any{
				"merchant_id": prop("string", "Merchant identifier (UUID)"),
				"date":        prop("string", "Day to query, YYYY-MM-DD"),
			}, "date"),
		},
		{
			Name:        ToolSalesSummary,
			Description: "Get total sales, sale count, and average ticket for an inclusive date range.",
			InputSchema: objectSchema(map[string]any{
				"merchant_id": prop("string", "Merchant identifier (UUID)"),
				"start_date":  prop("string", "Range start, YYYY-MM-DD"),
				"end_date":    prop("string", "Range end (inclusive), YYYY-MM-DD"),
			}, "start_date", "end_date"),
		},
		{
			Name:        ToolSalesForPeriod,
			Description: "Get the sales summary for a natural-language period like 'esta semana', 'mês passado', or 'last 30 days'. Prefer this when the user names a relative period.",
			InputSchema: objectSchema(map[string]any{
				"merchant_id": prop("string", "Merchant identifier (UUID)"),
				"period":      prop("string", "Relative period phrase, e.g. 'semana passada'"),
			}, "period"),
		},
		{
			Name:        ToolRecentSales,
			Description: "List the most recent sales, newest first.",
			InputSchema: objectSchema(map[string]any{
				"merchant_id": prop("string", "Merchant identifier (UUID)"),
				"limit":       prop("integer", "Maximum sales to return (1-100, default 10)"),
			}),
		},
		{
			Name:        ToolTopProducts,
			Description: "Rank the best-selling products by revenue over an inclusive date range.",
			InputSchema: objectSchema(map[string]any{
				"merchant_id": prop("string", "Merchant identifier (UUID)"),
				"start_date":  prop("string", "Range start, YYYY-MM-DD"),
				"end_date":    prop("string", "Range end (inclusive), YYYY-MM-DD"),
				"limit":       prop("integer", "Maximum products to return (1-25, default 5)"),
			}, "start_date", "end_date"),
		},
		{
			Name:        ToolExpensesSummary,
			Description: "Get total expenses and expense count for an inclusive date range.",
			InputSchema: objectSchema(map[string]any{
				"merchant_id": prop("string", "Merchant identifier (UUID)"),
				"start_date":  prop("string", "Range start, YYYY-MM-DD"),
				"end_date":    prop("string", "Range end (inclusive), YYYY-MM-DD"),
			}, "start_date", "end_date"),
		},
		{
			Name:        ToolUpcomingAppointments,
			Description: "List scheduled appointments from today forward.",
			InputSchema: objectSchema(map[string]any{
				"merchant_id": prop("string", "Merchant identifier (UUID)"),
				"days_ahead":  prop("integer", "How many days forward to look (1-365, default 7)"),
			}),
		},
		{
			Name:        ToolCustomerHistory,
			Description: "List a customer's past sales, newest first.",
			InputSchema: objectSchema(map[string]any{
				"merchant_id": prop("string", "Merchant identifier (UUID)"),
				"customer_id": prop("string", "Customer identifier (UUID)"),
				"limit":       prop("integer", "Maximum sales to return (1-100, default 10)"),
			}, "customer_id"),
		},
		{
			Name:        ToolRecordSale,
			Description: "Record a new sale for the merchant. Use when the user states they made a sale.",
			InputSchema: objectSchema(map[string]any{
				"merchant_id": prop("string", "Merchant identifier (UUID)"),
				"amount":      prop("number", "Sale amount, must be greater than zero"),
				"description": prop("string", "Optional free-text description"),
				"date":        prop("string", "Sale date YYYY-MM-DD (default: today)"),
				"time":        prop("string", "Sale time HH:MM (optional)"),
			}, "amount"),
		},
	}
}
