package app

import (
	"strings"

	"github.com/yourgrade/gradetrack/internal/store"
	"github.com/yourgrade/gradetrack/internal/store/postgres"
	"github.com/yourgrade/gradetrack/internal/store/sqlite"
)

func NewStore(dsn, migrationsDir string) (store.GradeStore, error) {
	if strings.HasPrefix(dsn, "postgres") {
		return postgres.NewPostgresStore(dsn, migrationsDir)
	}
	return sqlite.NewSQLiteStore(dsn, migrationsDir)
}
