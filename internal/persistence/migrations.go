package persistence

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// goose keeps its dialect and filesystem in package state.
var migrateMu sync.Mutex

// printfLogger routes goose and gorm output through zap.
type printfLogger struct {
	sugar *zap.SugaredLogger
}

func (l printfLogger) Printf(format string, args ...any) {
	l.sugar.Infof(format, args...)
}

func (l printfLogger) Fatalf(format string, args ...any) {
	l.sugar.Errorf(format, args...)
}

// RunMigrations applies the embedded migrations for the given driver ("postgres" or "sqlite").
func RunMigrations(ctx context.Context, db *sql.DB, driver string, logger *zap.Logger) error {
	dialect, dir, err := migrationTarget(driver)
	if err != nil {
		return err
	}

	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(printfLogger{logger.Sugar()})
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return err
	}
	logger.Info("migrations applied", zap.String("driver", driver), zap.Int64("version", version))
	return nil
}

func migrationTarget(driver string) (dialect, dir string, err error) {
	switch driver {
	case "postgres":
		return "postgres", "migrations/postgres", nil
	case "sqlite":
		return "sqlite3", "migrations/sqlite", nil
	}
	return "", "", fmt.Errorf("no migrations for driver %q", driver)
}
