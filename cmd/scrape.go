package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnithesh/productowl/internal/ui"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [amazon-url]",
	Short: "Scrape a product page once and print the snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runScrape,
}

func init() {
	scrapeCmd.Flags().String("format", "json", "Output format: json, card")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	url := args[0]
	format, _ := cmd.Flags().GetString("format")

	scraper := buildScraper()
	defer scraper.Close()

	spin := ui.NewSpinner()
	spin.Start(fmt.Sprintf("Scraping %s...", url))
	snap, err := scraper.ScrapeProduct(context.Background(), url)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	switch format {
	case "card":
		printSnapshotCard(url, snap)
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(snap)
	}
	return nil
}
