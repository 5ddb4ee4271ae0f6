// Package tools exposes the data capabilities as eino tools for the analyst
// react loops. Every tool resolves through the vendor router; no tool binds a
// data source directly.
package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"boardroom/internal/dataflows"
)

const dateLayout = "2006-01-02"

type stockDataInput struct {
	Symbol    string `json:"symbol"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type indicatorInput struct {
	Symbol    string `json:"symbol"`
	Indicator string `json:"indicator"`
	CurrDate  string `json:"curr_date"`
	LookBack  int    `json:"look_back_days"`
}

type symbolInput struct {
	Symbol   string `json:"symbol"`
	CurrDate string `json:"curr_date"`
}

type newsInput struct {
	Symbol    string `json:"symbol"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type globalNewsInput struct {
	CurrDate string `json:"curr_date"`
	LookBack int    `json:"look_back_days"`
}

type textOutput struct {
	Report string `json:"report"`
}

func parseDate(value string, fallback time.Time) time.Time {
	if value == "" {
		return fallback
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return t
}

// NewStockDataTool returns OHLCV price history for a date window.
func NewStockDataTool(router *dataflows.Router) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: dataflows.CapStockData,
			Desc: "Get daily OHLCV price history for a stock symbol over a date range",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"symbol": {
					Type:     "string",
					Desc:     "The stock ticker symbol",
					Required: true,
				},
				"start_date": {
					Type:     "string",
					Desc:     "Start date in YYYY-MM-DD format",
					Required: true,
				},
				"end_date": {
					Type:     "string",
					Desc:     "End date in YYYY-MM-DD format",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input stockDataInput) (*textOutput, error) {
			if input.Symbol == "" {
				return nil, fmt.Errorf("symbol parameter is required")
			}
			end := parseDate(input.EndDate, time.Now())
			start := parseDate(input.StartDate, end.AddDate(0, 0, -30))
			report, err := router.Call(ctx, dataflows.CapStockData, dataflows.Request{
				Symbol:    input.Symbol,
				StartDate: start,
				EndDate:   end,
			})
			if err != nil {
				return nil, err
			}
			return &textOutput{Report: report}, nil
		},
	)
}

// NewIndicatorTool computes one technical indicator over a lookback window.
func NewIndicatorTool(router *dataflows.Router) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: dataflows.CapIndicators,
			Desc: "Compute a technical indicator for a symbol. Supported: " +
				strings.Join(dataflows.SupportedIndicators(), ", "),
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"symbol": {
					Type:     "string",
					Desc:     "The stock ticker symbol",
					Required: true,
				},
				"indicator": {
					Type:     "string",
					Desc:     "Exact indicator name, e.g. close_50_sma or rsi",
					Required: true,
				},
				"curr_date": {
					Type:     "string",
					Desc:     "Analysis date in YYYY-MM-DD format",
					Required: true,
				},
				"look_back_days": {
					Type:     "integer",
					Desc:     "Days of indicator values to report (default 30)",
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input indicatorInput) (*textOutput, error) {
			if input.Symbol == "" || input.Indicator == "" {
				return nil, fmt.Errorf("symbol and indicator parameters are required")
			}
			lookBack := input.LookBack
			if lookBack <= 0 {
				lookBack = 30
			}
			end := parseDate(input.CurrDate, time.Now())
			report, err := router.Call(ctx, dataflows.CapIndicators, dataflows.Request{
				Symbol:       input.Symbol,
				StartDate:    end.AddDate(0, 0, -lookBack),
				EndDate:      end,
				CurrDate:     end,
				Indicator:    input.Indicator,
				LookBackDays: lookBack,
			})
			if err != nil {
				return nil, err
			}
			return &textOutput{Report: report}, nil
		},
	)
}

func newSymbolTool(router *dataflows.Router, capability, desc string) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: capability,
			Desc: desc,
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"symbol": {
					Type:     "string",
					Desc:     "The stock ticker symbol",
					Required: true,
				},
				"curr_date": {
					Type:     "string",
					Desc:     "Analysis date in YYYY-MM-DD format",
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input symbolInput) (*textOutput, error) {
			if input.Symbol == "" {
				return nil, fmt.Errorf("symbol parameter is required")
			}
			report, err := router.Call(ctx, capability, dataflows.Request{
				Symbol:   input.Symbol,
				CurrDate: parseDate(input.CurrDate, time.Now()),
			})
			if err != nil {
				return nil, err
			}
			return &textOutput{Report: report}, nil
		},
	)
}

// NewFundamentalsTool returns the company overview with key ratios.
func NewFundamentalsTool(router *dataflows.Router) tool.BaseTool {
	return newSymbolTool(router, dataflows.CapFundamentals,
		"Get a fundamental overview of a company: valuation ratios, margins, growth metrics")
}

// NewBalanceSheetTool returns the latest annual balance sheet.
func NewBalanceSheetTool(router *dataflows.Router) tool.BaseTool {
	return newSymbolTool(router, dataflows.CapBalanceSheet,
		"Get the company's most recent annual balance sheet")
}

// NewCashflowTool returns the latest annual cash flow statement.
func NewCashflowTool(router *dataflows.Router) tool.BaseTool {
	return newSymbolTool(router, dataflows.CapCashflow,
		"Get the company's most recent annual cash flow statement")
}

// NewIncomeStatementTool returns the latest annual income statement.
func NewIncomeStatementTool(router *dataflows.Router) tool.BaseTool {
	return newSymbolTool(router, dataflows.CapIncomeStatement,
		"Get the company's most recent annual income statement")
}

// NewCompanyNewsTool returns recent company-specific news.
func NewCompanyNewsTool(router *dataflows.Router) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: dataflows.CapCompanyNews,
			Desc: "Get recent news articles about a specific company",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"symbol": {
					Type:     "string",
					Desc:     "The stock ticker symbol",
					Required: true,
				},
				"start_date": {
					Type:     "string",
					Desc:     "Earliest publication date in YYYY-MM-DD format",
					Required: false,
				},
				"end_date": {
					Type:     "string",
					Desc:     "Latest publication date in YYYY-MM-DD format",
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input newsInput) (*textOutput, error) {
			if input.Symbol == "" {
				return nil, fmt.Errorf("symbol parameter is required")
			}
			end := parseDate(input.EndDate, time.Now())
			report, err := router.Call(ctx, dataflows.CapCompanyNews, dataflows.Request{
				Symbol:    input.Symbol,
				StartDate: parseDate(input.StartDate, end.AddDate(0, 0, -7)),
				EndDate:   end,
			})
			if err != nil {
				return nil, err
			}
			return &textOutput{Report: report}, nil
		},
	)
}

// NewGlobalNewsTool returns macro and world news for a lookback window.
func NewGlobalNewsTool(router *dataflows.Router) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: dataflows.CapGlobalNews,
			Desc: "Get recent global macroeconomic and market news",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"curr_date": {
					Type:     "string",
					Desc:     "Analysis date in YYYY-MM-DD format",
					Required: true,
				},
				"look_back_days": {
					Type:     "integer",
					Desc:     "How many days of news to include (default 7)",
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input globalNewsInput) (*textOutput, error) {
			lookBack := input.LookBack
			if lookBack <= 0 {
				lookBack = 7
			}
			end := parseDate(input.CurrDate, time.Now())
			report, err := router.Call(ctx, dataflows.CapGlobalNews, dataflows.Request{
				StartDate:    end.AddDate(0, 0, -lookBack),
				EndDate:      end,
				CurrDate:     end,
				LookBackDays: lookBack,
			})
			if err != nil {
				return nil, err
			}
			return &textOutput{Report: report}, nil
		},
	)
}

// Catalog groups the tools each analyst role binds. Keys are role names.
func Catalog(router *dataflows.Router) map[string][]tool.BaseTool {
	return map[string][]tool.BaseTool{
		"market": {
			NewStockDataTool(router),
			NewIndicatorTool(router),
		},
		"social": {
			NewCompanyNewsTool(router),
		},
		"news": {
			NewCompanyNewsTool(router),
			NewGlobalNewsTool(router),
		},
		"fundamentals": {
			NewFundamentalsTool(router),
			NewBalanceSheetTool(router),
			NewCashflowTool(router),
			NewIncomeStatementTool(router),
		},
	}
}
