package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var awardsCmd = &cobra.Command{
	Use:   "awards",
	Short: "Achievements, challenges and points",
	RunE:  withApp(runAwards),
}

var acceptCmd = &cobra.Command{
	Use:   "accept <challenge-id>",
	Short: "Accept a challenge",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runAccept),
}

func init() {
	rootCmd.AddCommand(awardsCmd, acceptCmd)
}

// reportAwards re-evaluates the rule catalogs after a mutation and
// announces anything newly earned. Called from the mutating commands.
func reportAwards(ctx context.Context, a *app, cmd *cobra.Command) error {
	unlocked, completed, err := a.rules.Evaluate(ctx)
	if err != nil {
		return err
	}
	for _, r := range unlocked {
		fmt.Fprintf(out(cmd), "%s %s (+%d pts): %s\n",
			goodStyle.Render("Achievement unlocked:"), r.Title, r.Points, r.Description)
	}
	for _, r := range completed {
		fmt.Fprintf(out(cmd), "%s %s (+%d pts)\n",
			goodStyle.Render("Challenge completed:"), r.Title, r.Points)
	}
	return nil
}

func runAwards(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	if err := reportAwards(ctx, a, cmd); err != nil {
		return err
	}

	state := a.rules.State()
	engine := a.rules.Engine()

	achRows := make([][]string, 0, len(engine.Achievements()))
	for _, r := range engine.Achievements() {
		status := mutedStyle.Render("locked")
		if state.Achievements.Has(r.ID) {
			status = goodStyle.Render("unlocked")
		}
		achRows = append(achRows, []string{r.Title, r.Description, fmt.Sprintf("%d", r.Points), status})
	}

	chRows := make([][]string, 0, len(engine.Challenges()))
	for _, r := range engine.Challenges() {
		var status string
		switch {
		case state.CompletedChallenges.Has(r.ID):
			status = goodStyle.Render("completed")
		case state.ActiveChallenges.Has(r.ID):
			status = warnStyle.Render("active")
		default:
			status = mutedStyle.Render(r.ID)
		}
		chRows = append(chRows, []string{r.Title, r.Description, fmt.Sprintf("%d", r.Points), status})
	}

	fmt.Fprintln(out(cmd))
	fmt.Fprintln(out(cmd), RenderTitle(fmt.Sprintf("AWARDS  %d points", a.rules.Points())))
	fmt.Fprintln(out(cmd))
	fmt.Fprint(out(cmd), RenderTable(Table{
		Title:   "Achievements",
		Headers: []string{"Title", "Description", "Pts", "Status"},
		Rows:    achRows,
	}))
	fmt.Fprintln(out(cmd))
	fmt.Fprint(out(cmd), RenderTable(Table{
		Title:   "Challenges",
		Headers: []string{"Title", "Description", "Pts", "Status"},
		Rows:    chRows,
	}))
	fmt.Fprintln(out(cmd), "  Accept a challenge with 'tally accept <id>'.")
	return nil
}

func runAccept(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	if err := a.rules.Accept(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(out(cmd), "Challenge %s accepted. Progress is checked after every entry.\n", args[0])
	// A challenge whose predicate already holds completes immediately.
	return reportAwards(ctx, a, cmd)
}
