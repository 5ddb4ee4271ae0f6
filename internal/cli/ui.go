package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"boardroom/internal/processing"
	"boardroom/internal/storage"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 2)

	buyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#10B981"))

	sellStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#EF4444"))

	holdStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F59E0B"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#EF4444"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))
)

// DisplayBanner prints the program banner.
func DisplayBanner() {
	fmt.Println(titleStyle.Render("boardroom"))
	fmt.Println(dimStyle.Render("Multi-agent trading deliberation"))
	fmt.Println()
}

func decisionStyle(d processing.Decision) lipgloss.Style {
	switch d {
	case processing.DecisionBuy:
		return buyStyle
	case processing.DecisionSell:
		return sellStyle
	default:
		return holdStyle
	}
}

// DisplayResult renders the outcome of one deliberation run.
func DisplayResult(res *Result) {
	header := fmt.Sprintf("%s | %s | %s", res.Symbol, res.Date, res.Market)
	fmt.Println(headerStyle.Render(header))
	fmt.Println()

	fmt.Printf("Decision: %s\n", decisionStyle(res.Decision).Render(string(res.Decision)))
	if res.Signal != nil {
		fmt.Printf("Confidence: %.0f%%\n", res.Signal.Confidence*100)
		if res.Signal.EntryPrice > 0 {
			fmt.Printf("Entry: %.2f\n", res.Signal.EntryPrice)
		}
		if res.Signal.StopLoss > 0 {
			fmt.Printf("Stop loss: %.2f\n", res.Signal.StopLoss)
		}
		if res.Signal.TakeProfit > 0 {
			fmt.Printf("Take profit: %.2f\n", res.Signal.TakeProfit)
		}
	}
	fmt.Println()
	fmt.Println(dimStyle.Render(fmt.Sprintf("Run ID: %s | model calls: %d", res.RunID, res.Calls)))
}

// DisplayBatchResults prints a one-line summary per symbol, ordered by symbol.
func DisplayBatchResults(results map[string]*Result, failures map[string]error) {
	symbols := make([]string, 0, len(results)+len(failures))
	for s := range results {
		symbols = append(symbols, s)
	}
	for s := range failures {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	for _, s := range symbols {
		if err, ok := failures[s]; ok {
			fmt.Printf("%-10s %s\n", s, errorStyle.Render("error: "+err.Error()))
			continue
		}
		res := results[s]
		fmt.Printf("%-10s %s\n", s, decisionStyle(res.Decision).Render(string(res.Decision)))
	}
}

// DisplayRuns prints recorded runs as a table.
func DisplayRuns(runs []storage.RunWithMeta) {
	if len(runs) == 0 {
		fmt.Println(dimStyle.Render("No recorded runs."))
		return
	}
	fmt.Printf("%-38s %-10s %-12s %-8s %-8s %s\n", "RUN ID", "SYMBOL", "DATE", "DECISION", "STATUS", "CREATED")
	fmt.Println(dimStyle.Render(strings.Repeat("-", 92)))
	for _, run := range runs {
		fmt.Printf("%-38s %-10s %-12s %-8s %-8s %s\n",
			run.ID, run.Symbol, run.TradeDate, run.Decision, run.Status, run.CreatedAt)
	}
}

// DisplayError prints an error message.
func DisplayError(err error) {
	fmt.Println(errorStyle.Render("Error: " + err.Error()))
}

// DisplaySuccess prints a success message.
func DisplaySuccess(message string) {
	fmt.Println(successStyle.Render(message))
}
