package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LydenCypher/Cut-Royale-Bot-Discord/internal/api"
	"github.com/LydenCypher/Cut-Royale-Bot-Discord/internal/bot"
	"github.com/LydenCypher/Cut-Royale-Bot-Discord/internal/config"
	"github.com/LydenCypher/Cut-Royale-Bot-Discord/internal/fal"
	"github.com/LydenCypher/Cut-Royale-Bot-Discord/internal/session"
	"github.com/LydenCypher/Cut-Royale-Bot-Discord/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Set up logging
	setupLogging(cfg.LogLevel)

	slog.Info("Starting Cut Royale Bot")

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to MongoDB
	connectCtx, connectCancel := context.WithTimeout(ctx, 15*time.Second)
	repo, err := storage.NewRepository(connectCtx, cfg.MongoURL, cfg.DBName)
	connectCancel()
	if err != nil {
		slog.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	// Image generation client
	imager := fal.NewClient(cfg.FALKey)

	// Session lifecycle manager
	manager := session.NewManager(repo, imager, nil, session.Options{
		StartQuorum:    cfg.StartQuorum,
		WinBias:        cfg.EncounterBias,
		TickMin:        time.Duration(cfg.TickMinSeconds) * time.Second,
		TickMax:        time.Duration(cfg.TickMaxSeconds) * time.Second,
		EncounterDelay: time.Duration(cfg.EncounterDelaySeconds) * time.Second,
	})

	// Create the Discord bot and wire it in as the renderer
	b, err := bot.New(cfg, repo, manager)
	if err != nil {
		slog.Error("Failed to create bot", "error", err)
		os.Exit(1)
	}
	manager.SetNotifier(b)

	// Start the bot
	if err := b.Start(ctx); err != nil {
		slog.Error("Failed to start bot", "error", err)
		os.Exit(1)
	}

	// Pick up games left running by a previous process
	if err := manager.ResumeActiveGames(ctx); err != nil {
		slog.Error("Failed to resume active games", "error", err)
	}

	// Start the read API
	apiServer := api.NewServer(cfg.APIAddr, repo, imager)
	go func() {
		if err := apiServer.Start(); err != nil {
			slog.Error("API server stopped", "error", err)
		}
	}()

	slog.Info("Bot is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
	cancel()

	// Stop game loops first so they stop emitting messages
	manager.StopAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Error stopping API server", "error", err)
	}

	if err := b.Stop(); err != nil {
		slog.Error("Error during shutdown", "error", err)
	}

	if err := repo.Close(shutdownCtx); err != nil {
		slog.Error("Error closing storage", "error", err)
	}

	slog.Info("Bot stopped")
}

func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
