package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tally/internal/report"
)

var (
	flagTimeframe string
	flagFrom      string
	flagTo        string
	flagTop       int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Spending summary by category",
	RunE:  withApp(runReport),
}

func init() {
	reportCmd.Flags().StringVarP(&flagTimeframe, "timeframe", "t", "month", "Timeframe (week|month|year|all)")
	reportCmd.Flags().StringVar(&flagFrom, "from", "", "Custom interval start (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&flagTo, "to", "", "Custom interval end (YYYY-MM-DD)")
	reportCmd.Flags().IntVar(&flagTop, "top", 0, "Show only the top N categories")

	rootCmd.AddCommand(reportCmd)
}

func parseTimeframe() (report.Timeframe, error) {
	if flagFrom != "" || flagTo != "" {
		if flagFrom == "" || flagTo == "" {
			return report.Timeframe{}, fmt.Errorf("custom interval needs both --from and --to")
		}
		start, err := time.Parse("2006-01-02", flagFrom)
		if err != nil {
			return report.Timeframe{}, fmt.Errorf("parse --from: %w", err)
		}
		end, err := time.Parse("2006-01-02", flagTo)
		if err != nil {
			return report.Timeframe{}, fmt.Errorf("parse --to: %w", err)
		}
		return report.Timeframe{Kind: report.Custom, Start: start, End: end}, nil
	}

	switch report.TimeframeKind(flagTimeframe) {
	case report.Week, report.Month, report.Year, report.AllTime:
		return report.Timeframe{Kind: report.TimeframeKind(flagTimeframe)}, nil
	default:
		return report.Timeframe{}, fmt.Errorf("unknown timeframe %q", flagTimeframe)
	}
}

func runReport(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	tf, err := parseTimeframe()
	if err != nil {
		return err
	}

	summary := report.Summarize(a.store.Expenses(), tf, time.Now())
	if summary.Count == 0 {
		fmt.Fprintln(out(cmd), "No expenses in the selected timeframe.")
		return nil
	}

	shares := summary.Categories
	if flagTop > 0 {
		shares = summary.TopCategories(flagTop)
	}

	var maxCents int64
	for _, s := range shares {
		if s.Amount.Cents > maxCents {
			maxCents = s.Amount.Cents
		}
	}

	fmt.Fprintln(out(cmd))
	fmt.Fprintln(out(cmd), RenderTitle(fmt.Sprintf("SPENDING  %s", flagTimeframe)))
	fmt.Fprintln(out(cmd))

	rows := make([][]string, 0, len(shares)+2)
	for _, s := range shares {
		rows = append(rows, []string{
			string(s.Category),
			RenderHorizontalBar(float64(s.Amount.Cents), float64(maxCents), 20),
			FormatMoney(s.Amount),
			FormatPercent(s.Percent),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"TOTAL", "", FormatMoney(summary.Total), ""})

	fmt.Fprint(out(cmd), RenderTable(Table{
		Headers: []string{"Category", "", "Spent", "Share"},
		Rows:    rows,
	}))
	fmt.Fprintf(out(cmd), "  %d expenses\n", summary.Count)
	return nil
}
