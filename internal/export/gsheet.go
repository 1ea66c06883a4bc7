package export

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/yourgrade/gradetrack/internal/app"
	"github.com/yourgrade/gradetrack/internal/grading"
	"github.com/yourgrade/gradetrack/internal/models"
	"github.com/yourgrade/gradetrack/internal/store"
)

// TranscriptExporter periodically pushes a per-user transcript summary
// (semester GPAs, CGPA, classification) to a Google Sheet.
type TranscriptExporter struct {
	store         store.GradeStore
	scheduler     *gocron.Scheduler
	sheetsService *sheets.Service
	sheetCfg      app.SheetExportConfig
}

func NewTranscriptExporter(config *app.Config, gradeStore store.GradeStore) (*gocron.Scheduler, error) {
	ctx := context.Background()
	scheduler := gocron.NewScheduler(time.UTC)

	interval := config.Export.IntervalMinutes
	if interval <= 0 {
		interval = 60
	}

	for _, cfg := range config.Export.Sheets {
		svc, err := sheets.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath))
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets service: %w", err)
		}

		exporter := &TranscriptExporter{
			store:         gradeStore,
			scheduler:     scheduler,
			sheetsService: svc,
			sheetCfg:      cfg,
		}

		if _, err := scheduler.Every(interval).Minutes().Do(func() {
			if err := exporter.export(); err != nil {
				logger.Error.Printf("Export to %s failed: %v", cfg.SpreadsheetID, err)
			}
		}); err != nil {
			return nil, fmt.Errorf("failed to schedule export: %w", err)
		}
	}

	scheduler.StartAsync()
	return scheduler, nil
}

func (e *TranscriptExporter) export() error {
	users, err := e.store.ListUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	rows := [][]interface{}{
		{"email", "semester", "gpa", "cgpa", "classification", "awarded"},
	}

	for _, user := range users {
		semesters, err := e.store.ListSemesters(user.ID)
		if err != nil {
			return fmt.Errorf("failed to list semesters for %s: %w", user.Email, err)
		}
		subjects, err := e.store.ListAllSubjects(user.ID)
		if err != nil {
			return fmt.Errorf("failed to list subjects for %s: %w", user.Email, err)
		}

		bySemester := make(map[string][]models.Subject)
		for _, sub := range subjects {
			bySemester[sub.SemesterID] = append(bySemester[sub.SemesterID], sub)
		}
		for i := range semesters {
			semesters[i].Subjects = bySemester[semesters[i].ID]
		}

		cgpa := grading.CumulativeGPA(semesters)
		classification := grading.Classify(cgpa)

		for _, sem := range semesters {
			rows = append(rows, []interface{}{
				user.Email,
				sem.Name,
				grading.SemesterGPA(sem.Subjects),
				cgpa,
				classification.Label,
				classification.Awarded,
			})
		}
	}

	valueRange := &sheets.ValueRange{Values: rows}
	_, err = e.sheetsService.Spreadsheets.Values.Update(
		e.sheetCfg.SpreadsheetID,
		fmt.Sprintf("%s!A1", e.sheetCfg.SheetName),
		valueRange,
	).ValueInputOption("RAW").Do()
	if err != nil {
		return fmt.Errorf("failed to update sheet: %w", err)
	}

	logger.Info.Printf("Exported %d transcript rows to %s", len(rows)-1, e.sheetCfg.SpreadsheetID)
	return nil
}
