package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteMarkdown writes one report file under dir, creating dir as needed.
func WriteMarkdown(dir, fileName, content string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create results dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// renderSummary flattens one run into a single markdown document.
func renderSummary(res *Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s deliberation summary\n\n", res.Symbol)
	fmt.Fprintf(&b, "- Run ID: %s\n", res.RunID)
	fmt.Fprintf(&b, "- Trade date: %s\n", res.Date)
	fmt.Fprintf(&b, "- Market: %s\n", res.Market)
	fmt.Fprintf(&b, "- Decision: %s\n", res.Decision)
	if res.Signal != nil {
		fmt.Fprintf(&b, "- Confidence: %.0f%%\n", res.Signal.Confidence*100)
		if res.Signal.EntryPrice > 0 {
			fmt.Fprintf(&b, "- Entry: %.2f\n", res.Signal.EntryPrice)
		}
		if res.Signal.StopLoss > 0 {
			fmt.Fprintf(&b, "- Stop loss: %.2f\n", res.Signal.StopLoss)
		}
		if res.Signal.TakeProfit > 0 {
			fmt.Fprintf(&b, "- Take profit: %.2f\n", res.Signal.TakeProfit)
		}
	}
	b.WriteString("\n## Final decision\n\n")
	b.WriteString(res.State.FinalTradeDecision)
	b.WriteString("\n")
	return b.String()
}
