package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/yourgrade/gradetrack/internal/app"
	"github.com/yourgrade/gradetrack/internal/export"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		logger.Debug.Printf("No .env file loaded: %v", err)
	}

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to init service: %v", err)
	}
	defer service.Close()

	scheduler, err := export.NewTranscriptExporter(service.Config, service.Store)
	if err != nil {
		logger.Error.Fatalf("Failed to initialize transcript exporter: %v", err)
	}
	defer scheduler.Stop()

	logger.Info.Println("Transcript exporter started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info.Println("Transcript exporter stopped")
}
