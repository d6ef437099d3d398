package db

import (
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"

	apperrors "github.com/lupppig/sitectl/internal/errors"
	"github.com/lupppig/sitectl/internal/logger"
	"github.com/lupppig/sitectl/internal/settings"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	RegisterAdapter("sqlite", func() DBAdapter { return &SqliteAdapter{} })
}

type SqliteAdapter struct {
	Logger *logger.Logger
}

func (sq *SqliteAdapter) Name() string {
	return "sqlite"
}

func (sq *SqliteAdapter) SetLogger(l *logger.Logger) {
	sq.Logger = l
}

// TestConnection pings an existing database file. A target that does not
// exist yet is fine as long as its directory does.
func (sq *SqliteAdapter) TestConnection(ctx context.Context, connParams ConnectionParams, runner Runner) error {
	path, err := sq.BuildConnection(ctx, connParams)
	if err != nil {
		return err
	}
	if sq.Logger != nil {
		sq.Logger.Debug("connecting to sqlite database...", "path", path)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if _, err := os.Stat(filepath.Dir(path)); err != nil {
			return apperrors.Wrap(err, apperrors.TypeResource, "sqlite database directory is missing", "Create the directory or fix the database name in settings.")
		}
		return nil
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return apperrors.Wrap(err, apperrors.TypeConfig, "failed to open SQLite DB", "Verify the file path and permissions.")
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.TypeResource, "failed to ping SQLite DB", "Ensure the file is a valid SQLite database.")
	}
	return nil
}

func (sq *SqliteAdapter) BuildConnection(ctx context.Context, connParams ConnectionParams) (string, error) {
	path := connParams.DBName
	if path == "" && connParams.DBUri != "" {
		path = connParams.DBUri
	}

	if path == "" {
		return "", apperrors.New(apperrors.TypeConfig, "sqlite DB path is empty", "Set databases.<alias>.name in settings.")
	}
	if path == settings.InMemoryDB {
		return "", apperrors.New(apperrors.TypeConfig, "cannot restore into an in-memory sqlite database", "Do not run restores while the screenshots database override is active.")
	}
	return path, nil
}

// RunRestore stages the backup next to the target, checks that it really is
// a SQLite database and then renames it into place.
func (sq *SqliteAdapter) RunRestore(ctx context.Context, conn ConnectionParams, runner Runner, r io.Reader) error {
	path, err := sq.BuildConnection(ctx, conn)
	if err != nil {
		return err
	}
	if sq.Logger != nil {
		sq.Logger.Info("restoring sqlite database...", "path", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.Wrap(err, apperrors.TypeResource, "failed to create database directory", "Check permissions on "+dir+".")
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".restore-*")
	if err != nil {
		return apperrors.Wrap(err, apperrors.TypeResource, "failed to create staging file", "Check permissions on "+dir+".")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return apperrors.Wrap(err, apperrors.TypeResource, "failed to write staging file", "Check free disk space.")
	}
	if n == 0 {
		return apperrors.New(apperrors.TypeIntegrity, "backup is empty", "Pick a different backup file.")
	}

	if err := validateSqlite(ctx, tmpPath); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return apperrors.Wrap(err, apperrors.TypeResource, "failed to replace database file", "Check permissions on "+path+".")
	}
	return nil
}

func validateSqlite(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return apperrors.Wrap(err, apperrors.TypeInternal, "failed to open staged backup", "")
	}
	defer db.Close()

	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA schema_version").Scan(&version); err != nil {
		return apperrors.Wrap(err, apperrors.TypeIntegrity, "backup is not a valid SQLite database", "The file may be corrupt or belong to another engine.")
	}
	return nil
}
