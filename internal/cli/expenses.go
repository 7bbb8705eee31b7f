package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"tally/internal/core"
	"tally/internal/ledger"
)

var (
	flagMethod string
	flagDate   string
	flagRefund bool
	flagLimit  int

	flagEditAmount   string
	flagEditCategory string
	flagEditDesc     string
	flagEditDate     string
	flagEditMethod   string
)

var addCmd = &cobra.Command{
	Use:   "add <amount> <category> <description>",
	Short: "Record an expense",
	Long: "Record an expense. Amounts are stored as money spent; pass --refund\n" +
		"for credits and refunds.",
	Args: cobra.MinimumNArgs(3),
	RunE: withApp(runAdd),
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent expenses",
	RunE:  withApp(runList),
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit an expense",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runEdit),
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an expense",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runRemove),
}

func init() {
	addCmd.Flags().StringVarP(&flagMethod, "method", "m", "", "Payment method (cash|credit_card|bank)")
	addCmd.Flags().StringVarP(&flagDate, "date", "d", "", "Expense date (YYYY-MM-DD), defaults to today")
	addCmd.Flags().BoolVar(&flagRefund, "refund", false, "Record as a credit instead of spending")

	listCmd.Flags().IntVarP(&flagLimit, "limit", "n", 20, "Number of expenses to show")

	editCmd.Flags().StringVar(&flagEditAmount, "amount", "", "New amount")
	editCmd.Flags().StringVar(&flagEditCategory, "category", "", "New category")
	editCmd.Flags().StringVar(&flagEditDesc, "description", "", "New description")
	editCmd.Flags().StringVar(&flagEditDate, "date", "", "New date (YYYY-MM-DD)")
	editCmd.Flags().StringVar(&flagEditMethod, "method", "", "New payment method")

	rootCmd.AddCommand(addCmd, listCmd, editCmd, rmCmd)
}

func runAdd(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	amount, err := core.ParseMoney(args[0])
	if err != nil {
		return err
	}
	// Spending is stored negative unless explicitly a refund.
	if !flagRefund && amount.Cents > 0 {
		amount.Cents = -amount.Cents
	}
	if flagRefund {
		amount = amount.Abs()
	}

	draft := ledger.ExpenseDraft{
		Amount:      amount,
		Category:    core.Category(args[1]),
		Description: joinArgs(args[2:]),
		Method:      core.PaymentMethod(flagMethod),
	}
	if flagDate != "" {
		d, err := time.Parse("2006-01-02", flagDate)
		if err != nil {
			return fmt.Errorf("parse date: %w", err)
		}
		draft.Date = d
	}

	e, err := a.store.AddExpense(ctx, draft)
	if err != nil {
		return err
	}

	fmt.Fprintf(out(cmd), "Recorded %s for %s (%s)\n", FormatMoney(e.Amount), e.Category, e.ID)
	return reportAwards(ctx, a, cmd)
}

func runList(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	expenses := a.store.Expenses()
	if len(expenses) == 0 {
		fmt.Fprintln(out(cmd), "No expenses recorded.")
		return nil
	}

	sort.Slice(expenses, func(i, j int) bool {
		return expenses[i].Date.After(expenses[j].Date)
	})
	if flagLimit > 0 && len(expenses) > flagLimit {
		expenses = expenses[:flagLimit]
	}

	rows := make([][]string, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, []string{
			Truncate(e.ID, 8),
			FormatDate(e.Date),
			string(e.Category),
			Truncate(e.Description, 30),
			FormatMoney(e.Amount),
		})
	}

	fmt.Fprint(out(cmd), RenderTable(Table{
		Title:   "Expenses",
		Headers: []string{"ID", "Date", "Category", "Description", "Amount"},
		Rows:    rows,
	}))
	return nil
}

func runEdit(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	id, err := resolveExpenseID(a, args[0])
	if err != nil {
		return err
	}

	var patch ledger.ExpensePatch
	if flagEditAmount != "" {
		amount, err := core.ParseMoney(flagEditAmount)
		if err != nil {
			return err
		}
		patch.Amount = &amount
	}
	if flagEditCategory != "" {
		cat := core.Category(flagEditCategory)
		patch.Category = &cat
	}
	if flagEditDesc != "" {
		patch.Description = &flagEditDesc
	}
	if flagEditDate != "" {
		d, err := time.Parse("2006-01-02", flagEditDate)
		if err != nil {
			return fmt.Errorf("parse date: %w", err)
		}
		patch.Date = &d
	}
	if flagEditMethod != "" {
		m := core.PaymentMethod(flagEditMethod)
		patch.Method = &m
	}

	e, err := a.store.UpdateExpense(ctx, id, patch)
	if err != nil {
		return err
	}

	fmt.Fprintf(out(cmd), "Updated %s: %s %s %s\n", Truncate(e.ID, 8), FormatDate(e.Date), e.Category, FormatMoney(e.Amount))
	return nil
}

func runRemove(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	id, err := resolveExpenseID(a, args[0])
	if err != nil {
		return err
	}
	if err := a.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(out(cmd), "Deleted expense %s\n", Truncate(id, 8))
	return nil
}

// resolveExpenseID accepts a full id or a unique prefix.
func resolveExpenseID(a *app, prefix string) (string, error) {
	var match string
	for _, e := range a.store.Expenses() {
		if e.ID == prefix {
			return e.ID, nil
		}
		if len(prefix) >= 4 && len(e.ID) > len(prefix) && e.ID[:len(prefix)] == prefix {
			if match != "" {
				return "", fmt.Errorf("ambiguous expense id prefix %q", prefix)
			}
			match = e.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("expense %s: %w", prefix, core.ErrNotFound)
	}
	return match, nil
}

func joinArgs(args []string) string {
	s := ""
	for i, a := range args {
		if i > 0 {
			s += " "
		}
		s += a
	}
	return s
}
