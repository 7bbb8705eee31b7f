package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tally/internal/core"
	"tally/internal/goals"
	"tally/internal/ledger"
)

var flagGoalType string

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Manage savings goals",
	RunE:  withApp(runGoalsList),
}

var goalsAddCmd = &cobra.Command{
	Use:   "add <name> <target> <date>",
	Short: "Create a savings goal",
	Args:  cobra.ExactArgs(3),
	RunE:  withApp(runGoalsAdd),
}

var goalsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a goal",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runGoalsRemove),
}

var contributeCmd = &cobra.Command{
	Use:   "contribute <goal-id> <amount>",
	Short: "Put money toward a goal",
	Args:  cobra.ExactArgs(2),
	RunE:  withApp(runContribute),
}

func init() {
	goalsAddCmd.Flags().StringVarP(&flagGoalType, "type", "t", "other",
		"Goal type (emergency|vacation|purchase|debt_payoff|retirement|other)")

	goalsCmd.AddCommand(goalsAddCmd, goalsRmCmd)
	rootCmd.AddCommand(goalsCmd, contributeCmd)
}

func runGoalsAdd(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	target, err := core.ParseMoney(args[1])
	if err != nil {
		return err
	}
	date, err := time.Parse("2006-01-02", args[2])
	if err != nil {
		return fmt.Errorf("parse target date: %w", err)
	}

	g, err := a.store.AddGoal(ctx, ledger.GoalDraft{
		Name:       args[0],
		Target:     target,
		Type:       core.GoalType(flagGoalType),
		TargetDate: date,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out(cmd), "Created goal %q: %s by %s (%s)\n",
		g.Name, FormatMoney(g.Target), FormatDate(g.TargetDate), Truncate(g.ID, 8))
	return reportAwards(ctx, a, cmd)
}

func runGoalsList(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	list := a.store.Goals()
	if len(list) == 0 {
		fmt.Fprintln(out(cmd), "No goals yet. Use 'tally goals add <name> <target> <date>'.")
		return nil
	}

	now := time.Now()
	rows := make([][]string, 0, len(list))
	for _, g := range list {
		pace := ""
		switch {
		case g.Completed():
			pace = goodStyle.Render("done")
		case goals.OnSchedule(g, now):
			pace = goodStyle.Render("on pace")
		case goals.TimeRemaining(g, now).PastDue:
			pace = badStyle.Render("past due")
		default:
			pace = warnStyle.Render("behind")
		}

		due := FormatDate(g.TargetDate)
		if amount, per, ok := goals.RequiredContribution(g, now); ok {
			due = fmt.Sprintf("%s (%s/%s)", due, FormatMoney(amount), shortPeriod(per))
		}

		rows = append(rows, []string{
			Truncate(g.ID, 8),
			Truncate(g.Name, 20),
			RenderGauge(g.Progress, 14),
			FormatPercent(g.Progress),
			FormatMoney(g.Current),
			FormatMoney(g.Target),
			due,
			pace,
		})
	}

	fmt.Fprint(out(cmd), RenderTable(Table{
		Title:   "Goals",
		Headers: []string{"ID", "Name", "", "Progress", "Saved", "Target", "Due", "Pace"},
		Rows:    rows,
	}))
	return nil
}

func runGoalsRemove(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	id, err := resolveGoalID(a, args[0])
	if err != nil {
		return err
	}
	if err := a.store.DeleteGoal(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(out(cmd), "Deleted goal %s\n", Truncate(id, 8))
	return nil
}

func runContribute(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	id, err := resolveGoalID(a, args[0])
	if err != nil {
		return err
	}
	amount, err := core.ParseMoney(args[1])
	if err != nil {
		return err
	}

	g, completed, err := a.store.ContributeToGoal(ctx, id, amount)
	if err != nil {
		return err
	}

	fmt.Fprintf(out(cmd), "%q is at %s of %s (%s)\n",
		g.Name, FormatMoney(g.Current), FormatMoney(g.Target), FormatPercent(g.Progress))
	if completed {
		fmt.Fprintln(out(cmd), goodStyle.Render("Goal reached!"))
	}
	return reportAwards(ctx, a, cmd)
}

func resolveGoalID(a *app, prefix string) (string, error) {
	var match string
	for _, g := range a.store.Goals() {
		if g.ID == prefix {
			return g.ID, nil
		}
		if len(prefix) >= 4 && len(g.ID) > len(prefix) && g.ID[:len(prefix)] == prefix {
			if match != "" {
				return "", fmt.Errorf("ambiguous goal id prefix %q", prefix)
			}
			match = g.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("goal %s: %w", prefix, core.ErrNotFound)
	}
	return match, nil
}

func shortPeriod(p goals.Period) string {
	switch p {
	case goals.Years:
		return "yr"
	case goals.Months:
		return "mo"
	default:
		return "day"
	}
}
