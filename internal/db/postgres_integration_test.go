package db

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/lupppig/sitectl/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestPostgresIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	dbName := "kalite"
	dbUser := "postgres"
	dbPassword := "password"

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "postgres:17-alpine",
			Env: map[string]string{
				"POSTGRES_DB":       dbName,
				"POSTGRES_USER":     dbUser,
				"POSTGRES_PASSWORD": dbPassword,
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer postgresContainer.Terminate(ctx)

	connHost, err := postgresContainer.Host(ctx)
	require.NoError(t, err)

	connPort, err := postgresContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	pa := &PostgresAdapter{}
	pa.SetLogger(logger.Discard())

	connParams := ConnectionParams{
		DBType:   "postgres",
		Host:     connHost,
		Port:     connPort.Int(),
		User:     dbUser,
		Password: dbPassword,
		DBName:   dbName,
	}

	t.Run("TestConnection", func(t *testing.T) {
		assert.NoError(t, pa.TestConnection(ctx, connParams, &LocalRunner{}))
	})

	t.Run("RunRestore", func(t *testing.T) {
		if _, err := exec.LookPath("psql"); err != nil {
			t.Skip("psql not installed")
		}
		dump := "CREATE TABLE facility (id serial primary key, name text);\nINSERT INTO facility (name) VALUES ('restored');\n"
		assert.NoError(t, pa.RunRestore(ctx, connParams, &LocalRunner{}, strings.NewReader(dump)))
	})
}
