package dataflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"boardroom/internal/config"
	"boardroom/internal/market"
)

// Capability names. Tools call these, never vendor APIs directly.
const (
	CapStockData       = "get_stock_data"
	CapIndicators      = "get_indicators"
	CapFundamentals    = "get_fundamentals"
	CapBalanceSheet    = "get_balance_sheet"
	CapCashflow        = "get_cashflow"
	CapIncomeStatement = "get_income_statement"
	CapCompanyNews     = "get_company_news"
	CapGlobalNews      = "get_global_news"
)

// Vendor names accepted in configuration.
const (
	VendorYFinance     = "yfinance"
	VendorAlphaVantage = "alpha_vantage"
	VendorAKShare      = "akshare"
	VendorGoogle       = "google"
)

var (
	ErrCapabilityNotFound  = errors.New("capability not found")
	ErrVendorNotRegistered = errors.New("vendor not registered for capability")
)

// capabilityCategories maps each capability to its configuration category.
var capabilityCategories = map[string]string{
	CapStockData:       config.CategoryCoreStock,
	CapIndicators:      config.CategoryIndicators,
	CapFundamentals:    config.CategoryFundamentals,
	CapBalanceSheet:    config.CategoryFundamentals,
	CapCashflow:        config.CategoryFundamentals,
	CapIncomeStatement: config.CategoryFundamentals,
	CapCompanyNews:     config.CategoryNews,
	CapGlobalNews:      config.CategoryNews,
}

// CategoryForCapability returns the vendor category a capability belongs to.
func CategoryForCapability(capability string) (string, error) {
	cat, ok := capabilityCategories[capability]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrCapabilityNotFound, capability)
	}
	return cat, nil
}

type handler func(ctx context.Context, req Request) (string, error)

// Router resolves capability calls to vendor implementations. Resolution
// order: per-capability tool override, China auto-route when akshare serves
// the capability, then the category default.
type Router struct {
	cfg      *config.Config
	log      *logrus.Entry
	handlers map[string]map[string]handler
}

// NewRouter wires the vendor implementations and their capability registry.
func NewRouter(cfg *config.Config, log *logrus.Entry) *Router {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	yf := newYFinanceVendor(cfg)
	av := newAlphaVantageVendor(cfg)
	ak := newAKShareVendor(cfg)
	gn := newGoogleNewsVendor(cfg)

	r := &Router{cfg: cfg, log: log}
	r.handlers = map[string]map[string]handler{
		CapStockData: {
			VendorYFinance:     yf.stockData,
			VendorAlphaVantage: av.stockData,
			VendorAKShare:      ak.stockData,
		},
		CapIndicators: {
			VendorYFinance:     yf.indicators,
			VendorAlphaVantage: av.indicators,
			VendorAKShare:      ak.indicators,
		},
		CapFundamentals: {
			VendorAlphaVantage: av.fundamentals,
			VendorAKShare:      ak.fundamentals,
		},
		CapBalanceSheet: {
			VendorAlphaVantage: av.balanceSheet,
		},
		CapCashflow: {
			VendorAlphaVantage: av.cashflow,
		},
		CapIncomeStatement: {
			VendorAlphaVantage: av.incomeStatement,
		},
		CapCompanyNews: {
			VendorAlphaVantage: av.companyNews,
			VendorGoogle:       gn.companyNews,
			VendorAKShare:      ak.companyNews,
		},
		CapGlobalNews: {
			VendorAlphaVantage: av.globalNews,
			VendorGoogle:       gn.globalNews,
		},
	}
	return r
}

// ResolveVendor returns the vendor that will serve a capability for a symbol.
func (r *Router) ResolveVendor(capability, symbol string) (string, error) {
	vendors, ok := r.handlers[capability]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrCapabilityNotFound, capability)
	}

	if override, ok := r.cfg.ToolVendors[capability]; ok && override != "" {
		if _, ok := vendors[override]; !ok {
			return "", fmt.Errorf("%w: %s via %s", ErrVendorNotRegistered, capability, override)
		}
		return override, nil
	}

	// China A-share symbols route to akshare when it serves the capability,
	// regardless of the category default. Capabilities akshare does not
	// serve fall through to the default.
	if market.IsChina(symbol) {
		if _, ok := vendors[VendorAKShare]; ok {
			return VendorAKShare, nil
		}
	}

	category := capabilityCategories[capability]
	vendor := r.cfg.DataVendors[category]
	if _, ok := vendors[vendor]; !ok {
		return "", fmt.Errorf("%w: %s via %s", ErrVendorNotRegistered, capability, vendor)
	}
	return vendor, nil
}

// Call resolves and invokes a capability, returning prompt-ready text.
func (r *Router) Call(ctx context.Context, capability string, req Request) (string, error) {
	started := time.Now()
	vendor, err := r.ResolveVendor(capability, req.Symbol)
	if err != nil {
		return "", err
	}

	out, err := r.handlers[capability][vendor](ctx, req)
	entry := r.log.WithFields(logrus.Fields{
		"capability": capability,
		"vendor":     vendor,
		"symbol":     req.Symbol,
		"elapsed":    time.Since(started).Round(time.Millisecond).String(),
	})
	if err != nil {
		entry.WithError(err).Warn("capability call failed")
		return "", fmt.Errorf("%s via %s: %w", capability, vendor, err)
	}
	entry.Debug("capability call served")
	return out, nil
}

// Capabilities returns the registered capability names.
func (r *Router) Capabilities() []string {
	caps := make([]string, 0, len(r.handlers))
	for c := range r.handlers {
		caps = append(caps, c)
	}
	return caps
}
