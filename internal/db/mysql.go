package db

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-sql-driver/mysql"
	apperrors "github.com/lupppig/sitectl/internal/errors"
	"github.com/lupppig/sitectl/internal/logger"
)

func init() {
	RegisterAdapter("mysql", func() DBAdapter { return &MysqlAdapter{} })
}

type MysqlAdapter struct {
	logger *logger.Logger
}

func (ma *MysqlAdapter) SetLogger(l *logger.Logger) {
	ma.logger = l
}

func (ma *MysqlAdapter) Name() string {
	return "mysql"
}

func (ma *MysqlAdapter) TestConnection(ctx context.Context, conn ConnectionParams, runner Runner) error {
	if ma.logger != nil {
		ma.logger.Debug("Testing database connection...", "host", conn.Host, "db", conn.DBName)
	}
	dsn, err := ma.BuildConnection(ctx, conn)
	if err != nil {
		return err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return apperrors.Wrap(err, apperrors.TypeConfig, "failed to open MySQL connection", "Check the database settings.")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.TypeConnection, "failed to ping database", "Verify the database host, port, and credentials.")
	}
	return nil
}

func (ma *MysqlAdapter) BuildConnection(ctx context.Context, conn ConnectionParams) (string, error) {
	if conn.DBUri != "" {
		return conn.DBUri, nil
	}

	if conn.Host == "" || conn.User == "" || conn.DBName == "" {
		return "", apperrors.New(apperrors.TypeConfig, "missing required MySQL connection fields", "Set host, user and name for the database in settings.")
	}

	if conn.Port == 0 {
		conn.Port = 3306
	}

	cfg := mysql.NewConfig()
	cfg.User = conn.User
	cfg.Passwd = conn.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", conn.Host, conn.Port)
	cfg.DBName = conn.DBName

	if conn.TLS.Enabled {
		tlsName, err := ma.ensureTLSConfig(conn.TLS)
		if err != nil {
			return "", err
		}
		cfg.TLSConfig = tlsName
	}

	return cfg.FormatDSN(), nil
}

func (ma *MysqlAdapter) ensureTLSConfig(cfg TLSConfig) (string, error) {
	if cfg.CACert == "" {
		if cfg.Mode == "verify-ca" || cfg.Mode == "verify-full" {
			return "", apperrors.New(apperrors.TypeConfig, "sslmode "+cfg.Mode+" needs sslrootcert", "Point sslrootcert at the server CA certificate.")
		}
		return "true", nil
	}

	pem, err := os.ReadFile(cfg.CACert)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.TypeResource, "failed to read CA certificate", "Check the sslrootcert path.")
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return "", apperrors.New(apperrors.TypeConfig, "no certificates found in "+cfg.CACert, "sslrootcert must be a PEM bundle.")
	}

	const name = "sitectl-custom"
	if err := mysql.RegisterTLSConfig(name, &tls.Config{RootCAs: pool}); err != nil {
		return "", apperrors.Wrap(err, apperrors.TypeInternal, "failed to register TLS config", "")
	}
	return name, nil
}

func (ma *MysqlAdapter) RunRestore(ctx context.Context, conn ConnectionParams, runner Runner, r io.Reader) error {
	if ma.logger != nil {
		ma.logger.Info("Restoring database...", "engine", ma.Name(), "db", conn.DBName)
	}

	if conn.Host == "" || conn.DBName == "" {
		return apperrors.New(apperrors.TypeConfig, "missing required MySQL connection fields", "Set host and name for the database in settings.")
	}
	if conn.Port == 0 {
		conn.Port = 3306
	}

	args := []string{
		fmt.Sprintf("--host=%s", conn.Host),
		fmt.Sprintf("--port=%d", conn.Port),
		fmt.Sprintf("--user=%s", conn.User),
		fmt.Sprintf("--password=%s", conn.Password),
	}

	if conn.TLS.Enabled {
		if conn.TLS.CACert != "" {
			args = append(args, fmt.Sprintf("--ssl-ca=%s", conn.TLS.CACert))
		}
	} else {
		args = append(args, "--ssl=OFF")
	}

	args = append(args, conn.DBName)

	if err := runner.RunWithIO(ctx, "mysql", args, r, io.Discard); err != nil {
		if errors.Is(err, ErrToolNotFound) {
			return apperrors.Wrap(err, apperrors.TypeDependency, "mysql client not found", "Please install mysql to enable restores.")
		}
		return apperrors.Wrap(err, apperrors.TypeInternal, "mysql restore failed", "Check restore logs or input file.")
	}
	return nil
}
