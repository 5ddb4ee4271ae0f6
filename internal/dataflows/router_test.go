package dataflows

import (
	"errors"
	"testing"

	"boardroom/internal/config"
)

func newTestRouter(t *testing.T, mutate func(*config.Config)) *Router {
	t.Helper()
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	if mutate != nil {
		mutate(cfg)
	}
	return NewRouter(cfg, nil)
}

func TestResolveVendorCategoryDefaults(t *testing.T) {
	r := newTestRouter(t, nil)

	cases := []struct {
		capability string
		want       string
	}{
		{CapStockData, VendorYFinance},
		{CapIndicators, VendorYFinance},
		{CapFundamentals, VendorAlphaVantage},
		{CapBalanceSheet, VendorAlphaVantage},
		{CapCompanyNews, VendorAlphaVantage},
		{CapGlobalNews, VendorAlphaVantage},
	}
	for _, tc := range cases {
		got, err := r.ResolveVendor(tc.capability, "AAPL")
		if err != nil {
			t.Fatalf("%s: %v", tc.capability, err)
		}
		if got != tc.want {
			t.Errorf("%s resolved to %s, want %s", tc.capability, got, tc.want)
		}
	}
}

func TestResolveVendorToolOverride(t *testing.T) {
	r := newTestRouter(t, func(cfg *config.Config) {
		cfg.ToolVendors[CapStockData] = VendorAlphaVantage
	})

	got, err := r.ResolveVendor(CapStockData, "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if got != VendorAlphaVantage {
		t.Fatalf("override ignored, resolved to %s", got)
	}

	// Other capabilities in the same category keep the default.
	got, err = r.ResolveVendor(CapIndicators, "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if got != VendorYFinance {
		t.Fatalf("unrelated capability moved to %s", got)
	}
}

func TestResolveVendorChinaAutoRoute(t *testing.T) {
	r := newTestRouter(t, nil)

	got, err := r.ResolveVendor(CapStockData, "600519")
	if err != nil {
		t.Fatal(err)
	}
	if got != VendorAKShare {
		t.Fatalf("A-share symbol resolved to %s, want akshare", got)
	}

	// Capabilities akshare does not serve fall back to the default.
	got, err = r.ResolveVendor(CapGlobalNews, "600519")
	if err != nil {
		t.Fatal(err)
	}
	if got != VendorAlphaVantage {
		t.Fatalf("global news for A-share symbol resolved to %s", got)
	}

	// US symbols are unaffected by the China route.
	got, err = r.ResolveVendor(CapStockData, "NVDA")
	if err != nil {
		t.Fatal(err)
	}
	if got != VendorYFinance {
		t.Fatalf("US symbol resolved to %s", got)
	}
}

func TestResolveVendorOverrideBeatsChinaRoute(t *testing.T) {
	r := newTestRouter(t, func(cfg *config.Config) {
		cfg.ToolVendors[CapStockData] = VendorYFinance
	})

	got, err := r.ResolveVendor(CapStockData, "600519")
	if err != nil {
		t.Fatal(err)
	}
	if got != VendorYFinance {
		t.Fatalf("tool override lost to auto-route, resolved to %s", got)
	}
}

func TestResolveVendorErrors(t *testing.T) {
	r := newTestRouter(t, func(cfg *config.Config) {
		cfg.ToolVendors[CapBalanceSheet] = "bloomberg"
	})

	if _, err := r.ResolveVendor("get_weather", "AAPL"); !errors.Is(err, ErrCapabilityNotFound) {
		t.Fatalf("unknown capability error = %v", err)
	}
	if _, err := r.ResolveVendor(CapBalanceSheet, "AAPL"); !errors.Is(err, ErrVendorNotRegistered) {
		t.Fatalf("unregistered override error = %v", err)
	}
}

func TestCategoryForCapability(t *testing.T) {
	cat, err := CategoryForCapability(CapCashflow)
	if err != nil {
		t.Fatal(err)
	}
	if cat != config.CategoryFundamentals {
		t.Fatalf("cashflow category = %s", cat)
	}
	if _, err := CategoryForCapability("nope"); !errors.Is(err, ErrCapabilityNotFound) {
		t.Fatalf("expected capability not found, got %v", err)
	}
}
