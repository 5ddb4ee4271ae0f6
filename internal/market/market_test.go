package market

import "testing"

func TestIdentifyChina(t *testing.T) {
	tickers := []string{"600519", "000001", "300750", "600519.SH", "000001.SZ", "830799.BJ", "601398.SS", " 600519 ", "000001.sz"}
	for _, tk := range tickers {
		if got := Identify(tk); got != China {
			t.Fatalf("Identify(%q) = %q, want china", tk, got)
		}
	}
}

func TestIdentifyHK(t *testing.T) {
	tickers := []string{"0700", "9988", "09988", "0700.HK", "09988.hk", "1299"}
	for _, tk := range tickers {
		if got := Identify(tk); got != HK {
			t.Fatalf("Identify(%q) = %q, want hk", tk, got)
		}
	}
}

func TestSixDigitNeverHK(t *testing.T) {
	if got := Identify("600519"); got == HK {
		t.Fatal("six-digit numeric classified as HK")
	}
}

func TestIdentifyUS(t *testing.T) {
	tickers := []string{"AAPL", "NVDA", "T", "tsla", "GOOGL"}
	for _, tk := range tickers {
		if got := Identify(tk); got != US {
			t.Fatalf("Identify(%q) = %q, want us", tk, got)
		}
	}
}

func TestIdentifyUnknown(t *testing.T) {
	tickers := []string{"", "BRK.B", "1234567", "TOOLONGX", "60.519"}
	for _, tk := range tickers {
		if got := Identify(tk); got != Unknown {
			t.Fatalf("Identify(%q) = %q, want unknown", tk, got)
		}
	}
}

func TestInfoFor(t *testing.T) {
	cases := []struct {
		ticker   string
		market   Market
		name     string
		currency string
		symbol   string
		source   string
	}{
		{"600519", China, "China A-shares", "CNY", "¥", "akshare"},
		{"0700.HK", HK, "Hong Kong", "HKD", "HK$", "yfinance"},
		{"NVDA", US, "US", "USD", "$", "yfinance"},
		{"???", Unknown, "Unknown", "USD", "$", "yfinance"},
	}
	for _, c := range cases {
		info := InfoFor(c.ticker)
		if info.Market != c.market || info.MarketName != c.name ||
			info.CurrencyName != c.currency || info.CurrencySymbol != c.symbol ||
			info.DataSource != c.source {
			t.Fatalf("InfoFor(%q) = %+v", c.ticker, info)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"0700":      "0700.HK",
		"9988.HK":   "9988.HK",
		"600519.SH": "600519",
		"000001.SZ": "000001",
		"aapl":      "AAPL",
		" nvda ":    "NVDA",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
