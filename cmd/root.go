package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnithesh/productowl/config"
	"github.com/gnithesh/productowl/internal/scrape"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "productowl",
	Short: "ProductOwl - Amazon price tracker with drop alerts",
	Long:  "Tracks Amazon product prices, keeps a running history and emails subscribers when a price drops 30% below their subscribe-time baseline.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("timezone", "", "IANA timezone for the daily check")
	rootCmd.PersistentFlags().Int("check-hour", -1, "Wall-clock hour of the daily check (0-23)")
	rootCmd.PersistentFlags().Duration("pacing-delay", 0, "Delay between scrapes in a batch run")
	rootCmd.PersistentFlags().Bool("respect-robots", false, "Check robots.txt before scraping")
}

func initConfig() {
	cfg = config.DefaultConfig()
	cfg.LoadFromEnv()

	// Override from flags
	if v, _ := rootCmd.PersistentFlags().GetString("timezone"); v != "" {
		cfg.Timezone = v
	}
	if v, _ := rootCmd.PersistentFlags().GetInt("check-hour"); v >= 0 && v <= 23 {
		cfg.CheckHour = v
	}
	if v, _ := rootCmd.PersistentFlags().GetDuration("pacing-delay"); v > 0 {
		cfg.PacingDelay = v
	}
	if v, _ := rootCmd.PersistentFlags().GetBool("respect-robots"); v {
		cfg.RespectRobots = true
	}
}

// buildScraper assembles the browser-backed scraper from config. The browser
// process itself starts lazily on the first scrape.
func buildScraper() *scrape.Scraper {
	session := scrape.NewBrowserSession(cfg.UserAgent, cfg.BrowserBin, cfg.NavTimeout)
	robots := scrape.NewRobotsGate(nil, cfg.RespectRobots)
	return scrape.New(session, robots, cfg.UserAgent, cfg.SelectorTimeout)
}
