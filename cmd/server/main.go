package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HyunjoonKwak/page-maker/internal/api"
	"github.com/HyunjoonKwak/page-maker/internal/browser"
	"github.com/HyunjoonKwak/page-maker/internal/config"
	"github.com/HyunjoonKwak/page-maker/internal/core"
	"github.com/HyunjoonKwak/page-maker/internal/gemini"
	"github.com/HyunjoonKwak/page-maker/internal/imagen"
	"github.com/HyunjoonKwak/page-maker/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	// Initialize database store
	dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	// Seed the template registry from disk on first run
	seeded, err := dbStore.SeedTemplatesFromDir(config.AppConfig.TemplatesDir)
	if err != nil {
		log.Printf("Warning: template seeding failed: %v", err)
	} else if seeded > 0 {
		log.Printf("Seeded %d templates from %s", seeded, config.AppConfig.TemplatesDir)
	}

	// AI collaborators are optional: a nil client switches the interview and
	// renderer onto their fallback paths.
	var textGen core.TextGenerator
	var vision core.VisionAnalyzer
	if config.AppConfig.GeminiAPIKey != "" {
		geminiClient, err := gemini.NewClient(context.Background(), config.AppConfig.GeminiAPIKey)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		defer geminiClient.Close()
		textGen = geminiClient
		vision = geminiClient
	}

	var imageGen core.ImageGenerator
	if config.AppConfig.OpenAIAPIKey != "" {
		imageGen = imagen.NewClient(config.AppConfig.OpenAIAPIKey)
	}

	headlessBrowser := browser.New()

	// Initialize services
	interviewService := core.NewInterviewService(dbStore, textGen)
	renderer := core.NewRenderer(config.AppConfig.TemplatesDir, textGen)
	generationService := core.NewGenerationService(dbStore, renderer, headlessBrowser, config.AppConfig.GeneratedImagesDir())
	backgroundService := core.NewBackgroundService(imageGen)
	analyzerService := core.NewAnalyzerService(dbStore, headlessBrowser, vision, config.AppConfig.ScreenshotsDir())

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(interviewService, generationService, backgroundService, analyzerService, dbStore)
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // AI and browser calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give active connections time to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
