package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gnithesh/productowl/internal/api"
	"github.com/gnithesh/productowl/internal/notify"
	"github.com/gnithesh/productowl/internal/scheduler"
	"github.com/gnithesh/productowl/internal/store"
	"github.com/gnithesh/productowl/internal/tracker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and the daily price-check scheduler",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "HTTP port (default from $PORT or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return err
	}
	log.Println("connected to MongoDB")

	scraper := buildScraper()
	defer scraper.Close()

	mailer := notify.NewMailer(nil, cfg.SendGridKey, cfg.FromEmail)
	tr := tracker.New(st.Products, st.Subscriptions, scraper, mailer)
	sched := scheduler.New(st.Subscriptions, tr, cfg.PacingDelay, cfg.CheckHour, cfg.Location())

	wg := &sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.Run(ctx)
	}()

	port := cfg.HTTPPort
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: api.NewRouter(st, tr, cfg.JWTSecret),
	}

	go func() {
		log.Printf("server running on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}

	wg.Wait()
	if err := st.Close(shutdownCtx); err != nil {
		log.Printf("mongodb disconnect: %v", err)
	}
	log.Println("graceful shutdown complete")
	return nil
}
