package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnithesh/productowl/internal/notify"
	"github.com/gnithesh/productowl/internal/scheduler"
	"github.com/gnithesh/productowl/internal/store"
	"github.com/gnithesh/productowl/internal/tracker"
	"github.com/gnithesh/productowl/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one price-check pass over all active subscriptions now",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	st, err := store.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return err
	}
	defer st.Close(ctx)

	scraper := buildScraper()
	defer scraper.Close()

	mailer := notify.NewMailer(nil, cfg.SendGridKey, cfg.FromEmail)
	tr := tracker.New(st.Products, st.Subscriptions, scraper, mailer)
	sched := scheduler.New(st.Subscriptions, tr, cfg.PacingDelay, cfg.CheckHour, cfg.Location())

	spin := ui.NewSpinner()
	spin.Start("Checking prices...")
	summary, err := sched.RunOnce(ctx)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("price check failed: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Checked:  %d\nUpdated:  %d\nNotified: %d\nSkipped:  %d\nFailed:   %d\n",
		summary.Checked, summary.Updated, summary.Notified, summary.Skipped, summary.Failed)
	return nil
}
