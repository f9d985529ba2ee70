package migration

import (
	"context"
	"embed"
	"path"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/database"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var embeddedMigrations embed.FS

func prepare(db *database.DB, logger zerolog.Logger) (string, error) {
	goose.SetBaseFS(embeddedMigrations)
	goose.SetLogger(NewGooseAdapter(logger))
	if err := goose.SetDialect(db.Dialect.GooseDialect()); err != nil {
		return "", errors.Wrapf(err, "set goose dialect %s", db.Dialect.GooseDialect())
	}
	return path.Join("migrations", db.Dialect.MigrationsSubdir()), nil
}

// RunMigrations applies every pending migration for the connection's dialect.
func RunMigrations(ctx context.Context, db *database.DB, logger zerolog.Logger) error {
	dir, err := prepare(db, logger)
	if err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db.DB, dir); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	logger.Info().Str("dialect", db.Dialect.GooseDialect()).Msg("Migrations completed successfully")
	return nil
}

// Rollback reverts the most recent migration.
func Rollback(ctx context.Context, db *database.DB, logger zerolog.Logger) error {
	dir, err := prepare(db, logger)
	if err != nil {
		return err
	}
	return errors.Wrap(goose.DownContext(ctx, db.DB, dir), "rollback migration")
}

// Status prints the applied state of every migration through the logger.
func Status(ctx context.Context, db *database.DB, logger zerolog.Logger) error {
	dir, err := prepare(db, logger)
	if err != nil {
		return err
	}
	return errors.Wrap(goose.StatusContext(ctx, db.DB, dir), "migration status")
}

// Version returns the current schema version.
func Version(ctx context.Context, db *database.DB, logger zerolog.Logger) (int64, error) {
	if _, err := prepare(db, logger); err != nil {
		return 0, err
	}
	v, err := goose.GetDBVersionContext(ctx, db.DB)
	return v, errors.Wrap(err, "read schema version")
}
