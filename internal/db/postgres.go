package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	_ "github.com/lib/pq"
	apperrors "github.com/lupppig/sitectl/internal/errors"
	"github.com/lupppig/sitectl/internal/logger"
)

func init() {
	RegisterAdapter("postgres", func() DBAdapter { return &PostgresAdapter{} })
}

type PostgresAdapter struct {
	logger *logger.Logger
}

func (pa *PostgresAdapter) Name() string {
	return "postgres"
}

func (pa *PostgresAdapter) SetLogger(l *logger.Logger) {
	pa.logger = l
}

func (pa *PostgresAdapter) TestConnection(ctx context.Context, conn ConnectionParams, runner Runner) error {
	dsn, err := pa.BuildConnection(ctx, conn)
	if err != nil {
		return err
	}
	if pa.logger != nil {
		pa.logger.Debug("Testing database connection...", "host", conn.Host, "db", conn.DBName)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return apperrors.Wrap(err, apperrors.TypeConfig, "failed to open Postgres connection", "Check the database settings.")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.TypeConnection, "failed to ping database", "Verify the database host, port, and credentials.")
	}
	return nil
}

func (pa *PostgresAdapter) BuildConnection(ctx context.Context, conn ConnectionParams) (string, error) {
	if conn.DBUri != "" {
		return conn.DBUri, nil
	}

	if conn.Host == "" || conn.User == "" || conn.DBName == "" {
		return "", apperrors.New(apperrors.TypeConfig, "missing required Postgres connection fields", "Set host, user and name for the database in settings.")
	}

	if conn.Port == 0 {
		conn.Port = 5432
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(conn.User, conn.Password),
		Host:   fmt.Sprintf("%s:%d", conn.Host, conn.Port),
		Path:   conn.DBName,
	}

	q := u.Query()
	if conn.TLS.Enabled {
		mode := conn.TLS.Mode
		if mode == "" {
			mode = "require"
		}
		q.Set("sslmode", mode)
		if conn.TLS.CACert != "" {
			q.Set("sslrootcert", conn.TLS.CACert)
		}
	} else {
		q.Set("sslmode", "disable")
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

// RunRestore replays a plain SQL dump through psql, stopping at the first error.
func (pa *PostgresAdapter) RunRestore(ctx context.Context, conn ConnectionParams, runner Runner, r io.Reader) error {
	dsn, err := pa.BuildConnection(ctx, conn)
	if err != nil {
		return err
	}
	if pa.logger != nil {
		pa.logger.Info("Restoring database...", "engine", pa.Name(), "db", conn.DBName)
	}

	args := []string{"--quiet", "--no-psqlrc", "--set", "ON_ERROR_STOP=1", "--dbname", dsn}
	if err := runner.RunWithIO(ctx, "psql", args, r, io.Discard); err != nil {
		if errors.Is(err, ErrToolNotFound) {
			return apperrors.Wrap(err, apperrors.TypeDependency, "psql not found", "Install the PostgreSQL client to enable restores.")
		}
		return apperrors.Wrap(err, apperrors.TypeInternal, "psql restore failed", "Check the dump and the psql output above.")
	}
	return nil
}
