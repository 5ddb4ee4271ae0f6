package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.-]+$`)

// PromptForTicker asks for a stock ticker symbol.
func PromptForTicker() (string, error) {
	var ticker string
	prompt := &survey.Input{
		Message: "Enter the stock ticker symbol (e.g., AAPL, 600519, 0700.HK):",
		Help:    "US tickers, China A-share codes and Hong Kong codes are supported",
	}

	err := survey.AskOne(prompt, &ticker, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(strings.ToUpper(val.(string)))
		if str == "" {
			return fmt.Errorf("ticker symbol cannot be empty")
		}
		if len(str) > 10 {
			return fmt.Errorf("ticker symbol too long (max 10 characters)")
		}
		if !tickerPattern.MatchString(str) {
			return fmt.Errorf("invalid ticker format (use letters, numbers, dots, and hyphens only)")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.ToUpper(ticker)), nil
}

// PromptForTradeDate asks for an analysis date, defaulting to today.
func PromptForTradeDate() (string, error) {
	var dateStr string
	prompt := &survey.Input{
		Message: "Enter the trade date (YYYY-MM-DD):",
		Help:    "Format: YYYY-MM-DD. Press Enter for today's date.",
		Default: time.Now().Format("2006-01-02"),
	}

	err := survey.AskOne(prompt, &dateStr, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(val.(string))
		if str == "" {
			return nil
		}
		if _, err := time.Parse("2006-01-02", str); err != nil {
			return fmt.Errorf("invalid date format, use YYYY-MM-DD")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}

	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		dateStr = time.Now().Format("2006-01-02")
	}
	return dateStr, nil
}

// PromptForReturns asks for realized position returns after a run, for
// reflection. A negative answer to the confirm skips reflection.
func PromptForReturns() (float64, bool, error) {
	var wantReflect bool
	confirm := &survey.Confirm{
		Message: "Record realized returns and reflect on this run?",
		Default: false,
	}
	if err := survey.AskOne(confirm, &wantReflect); err != nil {
		return 0, false, err
	}
	if !wantReflect {
		return 0, false, nil
	}

	var returnsStr string
	prompt := &survey.Input{
		Message: "Realized position returns in percent (e.g., -3.5):",
	}
	err := survey.AskOne(prompt, &returnsStr, survey.WithValidator(func(val interface{}) error {
		if _, err := strconv.ParseFloat(strings.TrimSpace(val.(string)), 64); err != nil {
			return fmt.Errorf("enter a number, e.g. 12.5 or -3.5")
		}
		return nil
	}))
	if err != nil {
		return 0, false, err
	}
	returns, err := strconv.ParseFloat(strings.TrimSpace(returnsStr), 64)
	if err != nil {
		return 0, false, err
	}
	return returns, true, nil
}

// PromptForAnotherRun asks whether to start a new analysis after one completes.
func PromptForAnotherRun() (bool, error) {
	var again bool
	prompt := &survey.Confirm{
		Message: "Run another analysis?",
		Default: false,
	}
	err := survey.AskOne(prompt, &again)
	return again, err
}
