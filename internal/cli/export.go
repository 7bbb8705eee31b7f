package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tally/internal/export"
	"tally/internal/export/google"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export expenses to Google Sheets",
	Long: "Replace the configured spreadsheet's expense sheet with the current\n" +
		"ledger contents. Requires GOOGLE_SPREADSHEET_ID and service account\n" +
		"credentials in the environment.",
	RunE: withApp(runExport),
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	client, err := google.NewFromEnv(ctx)
	if err != nil {
		return fmt.Errorf("sheets client: %w", err)
	}

	rows, err := export.SyncAll(ctx, client, a.store.Expenses())
	if err != nil {
		return err
	}

	fmt.Fprintf(out(cmd), "Exported %d expenses to %s\n", rows, a.cfg.GoogleSheetName)
	return nil
}
