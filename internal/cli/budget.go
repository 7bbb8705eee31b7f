package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tally/internal/core"
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Manage category budgets",
	RunE:  withApp(runBudgetList),
}

var budgetSetCmd = &cobra.Command{
	Use:   "set <category> <amount>",
	Short: "Set the allocation for a category",
	Args:  cobra.ExactArgs(2),
	RunE:  withApp(runBudgetSet),
}

func init() {
	budgetCmd.AddCommand(budgetSetCmd)
	rootCmd.AddCommand(budgetCmd)
}

func runBudgetSet(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	amount, err := core.ParseMoney(args[1])
	if err != nil {
		return err
	}

	b, err := a.store.SetBudgetAllocation(ctx, core.Category(args[0]), amount)
	if err != nil {
		return err
	}

	fmt.Fprintf(out(cmd), "Budget for %s set to %s (spent %s)\n",
		b.Category, FormatMoney(b.Allocated), FormatMoney(b.Spent))
	return nil
}

func runBudgetList(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	budgets := a.store.Budgets()
	if len(budgets) == 0 {
		fmt.Fprintln(out(cmd), "No budgets set. Use 'tally budget set <category> <amount>'.")
		return nil
	}

	rows := make([][]string, 0, len(budgets))
	var totalAllocated, totalSpent int64
	for _, b := range budgets {
		status := RenderGauge(b.Utilization()*100, 14)
		note := ""
		if b.IsOverBudget() {
			note = badStyle.Render("OVER")
		}
		rows = append(rows, []string{
			string(b.Category),
			status,
			FormatMoney(b.Spent),
			FormatMoney(b.Allocated),
			note,
		})
		totalAllocated += b.Allocated.Cents
		totalSpent += b.Spent.Cents
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{
		"TOTAL", "",
		FormatMoney(core.Money{Cents: totalSpent}),
		FormatMoney(core.Money{Cents: totalAllocated}),
		"",
	})

	fmt.Fprint(out(cmd), RenderTable(Table{
		Title:   "Budgets",
		Headers: []string{"Category", "", "Spent", "Allocated", ""},
		Rows:    rows,
	}))
	return nil
}
