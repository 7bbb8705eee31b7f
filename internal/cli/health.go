package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"tally/internal/rules"
)

var flagInsightCategory string

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Financial health score and insights",
	RunE:  withApp(runHealth),
}

func init() {
	healthCmd.Flags().StringVar(&flagInsightCategory, "only", "",
		"Show only one insight category (warning|opportunity|planning|assessment|success)")

	rootCmd.AddCommand(healthCmd)
}

func insightStyle(cat rules.InsightCategory) lipgloss.Style {
	switch cat {
	case rules.Warning:
		return badStyle
	case rules.Success:
		return goodStyle
	case rules.Opportunity:
		return warnStyle
	default:
		return mutedStyle
	}
}

func runHealth(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	now := time.Now()
	score, rating := a.rules.Health(now)

	fmt.Fprintln(out(cmd))
	fmt.Fprintln(out(cmd), RenderTitle(fmt.Sprintf("FINANCIAL HEALTH  %d/100  %s", score, rating)))
	fmt.Fprintln(out(cmd))
	fmt.Fprintf(out(cmd), "  %s\n\n", RenderGauge(float64(score), 40))

	insights := a.rules.Insights(now)
	if flagInsightCategory != "" {
		insights = rules.FilterInsights(insights, rules.InsightCategory(flagInsightCategory))
	}
	if len(insights) == 0 {
		fmt.Fprintln(out(cmd), "  No insights for that filter.")
		return nil
	}

	for _, in := range insights {
		label := insightStyle(in.Category).Render(fmt.Sprintf("[%s]", in.Category))
		fmt.Fprintf(out(cmd), "  %s %s\n", label, headerStyle.Render(in.Title))
		fmt.Fprintf(out(cmd), "      %s\n", in.Description)
		for _, action := range in.Actions {
			fmt.Fprintf(out(cmd), "      %s %s\n", dimStyle.Render("->"), action)
		}
		fmt.Fprintln(out(cmd))
	}
	return nil
}
