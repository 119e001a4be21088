package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hasdouaaa/dashboard-autops/internal/api"
	"github.com/hasdouaaa/dashboard-autops/internal/auth"
	"github.com/hasdouaaa/dashboard-autops/internal/config"
	"github.com/hasdouaaa/dashboard-autops/internal/enrichment"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the AutOps server",
	Long:  `Starts the AutOps dashboard server and begins accepting log uploads.`,
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := config.Load(configPath)
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}

	// Demo accounts plus anything added via `autops user add`
	creds, err := auth.NewStore(auth.SeedUsers)
	if err != nil {
		log.Fatalf("Failed to seed credential store: %v", err)
	}
	for username, password := range extraUsers() {
		if err := creds.Register(username, password); err != nil {
			log.Fatalf("Failed to add user %q: %v", username, err)
		}
	}

	enricher := enrichment.New(cfg.GeoIPPath)
	defer enricher.Close()

	router := api.NewRouter(creds, enricher, cfg)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	// Graceful shutdown: let in-flight requests drain before exiting
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("AutOps %s starting on %s", Version, cfg.ListenAddr)
	if cfg.GeoIPPath != "" {
		log.Printf("GeoIP database: %s", cfg.GeoIPPath)
	}

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
