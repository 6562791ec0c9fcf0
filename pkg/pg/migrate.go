package pg

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// Migrate applies all pending goose migrations from cfg.MigrationsPath.
// If log is nil a default slog logger is used.
func Migrate(ctx context.Context, conn *pgxpool.Pool, cfg Config, log logger) error {
	if log == nil {
		log = slog.Default()
	}

	if cfg.MigrationsPath == "" {
		return ErrMigrationPathNotProvided
	}
	if _, err := os.Stat(cfg.MigrationsPath); os.IsNotExist(err) {
		return errors.Join(ErrMigrationsDirNotFound, err)
	}

	goose.SetTableName(cfg.MigrationsTable)
	goose.SetLogger(&gooseLogger{ctx: ctx, log: log})

	db := stdlib.OpenDBFromPool(conn)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	if err := goose.UpContext(ctx, db, cfg.MigrationsPath); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	return nil
}

// gooseLogger adapts a structured logger to goose's printf-style interface.
type gooseLogger struct {
	ctx context.Context
	log logger
}

func (l *gooseLogger) Fatalf(format string, v ...any) {
	l.log.ErrorContext(l.ctx, "migration failed", slog.String("component", "goose"), slog.Any("args", v), slog.String("format", format))
}

func (l *gooseLogger) Printf(format string, v ...any) {
	l.log.InfoContext(l.ctx, "migration progress", slog.String("component", "goose"), slog.Any("args", v), slog.String("format", format))
}
