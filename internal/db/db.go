package db

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/lupppig/sitectl/internal/logger"
	"github.com/lupppig/sitectl/internal/settings"
)

type TLSConfig struct {
	Enabled bool
	Mode    string // disable | require | verify-ca | verify-full
	CACert  string
}

type ConnectionParams struct {
	DBType   string
	DBName   string
	Password string
	User     string
	Host     string
	Port     int
	DBUri    string

	TLS TLSConfig
}

// DBAdapter restores a backup stream into one database engine.
type DBAdapter interface {
	Name() string
	SetLogger(l *logger.Logger)
	TestConnection(ctx context.Context, conn ConnectionParams, runner Runner) error
	BuildConnection(ctx context.Context, conn ConnectionParams) (string, error)
	RunRestore(ctx context.Context, conn ConnectionParams, runner Runner, r io.Reader) error
}

var adapters = map[string]func() DBAdapter{}

// RegisterAdapter makes an engine available to GetAdapter. Each GetAdapter
// call gets a fresh adapter from newAdapter.
func RegisterAdapter(name string, newAdapter func() DBAdapter) {
	adapters[name] = newAdapter
}

func GetAdapter(name string) (DBAdapter, error) {
	newAdapter, ok := adapters[NormalizeEngine(name)]
	if !ok {
		return nil, fmt.Errorf("unsupported database: %s", name)
	}
	return newAdapter(), nil
}

// Engines lists registered engine names.
func Engines() []string {
	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NormalizeEngine maps Django-style backend paths and common aliases onto
// adapter names: "django.db.backends.sqlite3" becomes "sqlite".
func NormalizeEngine(engine string) string {
	e := strings.ToLower(strings.TrimSpace(engine))
	if i := strings.LastIndex(e, "."); i >= 0 {
		e = e[i+1:]
	}
	switch e {
	case "sqlite3":
		return "sqlite"
	case "postgresql", "postgresql_psycopg2", "pgsql":
		return "postgres"
	case "mariadb":
		return "mysql"
	}
	return e
}

// FromSettings converts a configured database into connection parameters.
func FromSettings(d settings.Database) ConnectionParams {
	mode := strings.ToLower(d.SSLMode)
	return ConnectionParams{
		DBType:   NormalizeEngine(d.Engine),
		DBName:   d.Name,
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		TLS: TLSConfig{
			Enabled: mode != "" && mode != "disable",
			Mode:    mode,
			CACert:  d.SSLRootCert,
		},
	}
}
