package main

import (
	"flag"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/yourgrade/gradetrack/internal/app"
	"github.com/yourgrade/gradetrack/internal/handlers"
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

	authHandler := handlers.NewAuthHandler(service)
	semesterHandler := handlers.NewSemesterHandler(service)
	subjectHandler := handlers.NewSubjectHandler(service)
	importHandler := handlers.NewImportHandler(service)
	feedbackHandler := handlers.NewFeedbackHandler(service)

	http.HandleFunc("POST /api/v1/auth/signup", authHandler.HandleSignup)
	http.HandleFunc("POST /api/v1/auth/login", authHandler.HandleLogin)
	http.HandleFunc("POST /api/v1/auth/logout", authHandler.HandleLogout)

	http.HandleFunc("GET /api/v1/semesters", semesterHandler.HandleList)
	http.HandleFunc("POST /api/v1/semesters", semesterHandler.HandleCreate)
	http.HandleFunc("PATCH /api/v1/semesters/{semesterID}", semesterHandler.HandleRename)
	http.HandleFunc("DELETE /api/v1/semesters/{semesterID}", semesterHandler.HandleDelete)

	http.HandleFunc("POST /api/v1/semesters/{semesterID}/subjects", subjectHandler.HandleCreate)
	http.HandleFunc("PUT /api/v1/semesters/{semesterID}/subjects/{subjectID}", subjectHandler.HandleUpdate)
	http.HandleFunc("DELETE /api/v1/semesters/{semesterID}/subjects/{subjectID}", subjectHandler.HandleDelete)

	http.HandleFunc("GET /api/v1/summary", semesterHandler.HandleSummary)
	http.HandleFunc("POST /api/v1/import", importHandler.HandleImport)
	http.HandleFunc("POST /api/v1/feedback", feedbackHandler.HandleSubmit)

	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting gradetrack server on %s", service.Config.Server.Port)
	if !service.Config.Server.EnableAuth {
		logger.Info.Printf("Auth is disabled, trusting %s header", service.Config.API.UserIDHeader)
	}
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Gradetrack server failed: %v", err)
	}
}
