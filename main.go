package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Zhilg/Dvizhenie/config"
	"github.com/Zhilg/Dvizhenie/fixtures"
	"github.com/Zhilg/Dvizhenie/handlers"
	"github.com/Zhilg/Dvizhenie/jobs"
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	fixturesDir := flag.String("fixtures", "", "Directory overriding the embedded fixture catalog")
	flag.Parse()

	log.Println("Starting document-semantics mock backend")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *fixturesDir != "" {
		cfg.FixturesDir = *fixturesDir
	}

	catalog, err := fixtures.Load(cfg.FixturesDir)
	if err != nil {
		log.Fatalf("Failed to load fixture catalog: %v", err)
	}
	log.Printf("Fixture catalog loaded: %d models, corpus %s", len(catalog.Models), catalog.UploadResult.CorpusID)

	store := jobs.NewStore(nil)
	handler := handlers.NewHandler(catalog, store, nil)

	gin.SetMode(cfg.GinMode)
	router := handlers.NewRouter(handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server stopped gracefully")
}
