package postgresql

import (
	"context"
	"strconv"
	"testing"

	"github.com/shadabshaukat/DELTAV2/pkg/config"
	"github.com/shadabshaukat/DELTAV2/pkg/plugin"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestProbe_Container(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to cleanup postgres container: %v", err)
		}
	}()

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	mapped, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)
	port, err := strconv.Atoi(mapped.Port())
	require.NoError(t, err)

	base := config.PostgreSQLConfig{
		Host:     host,
		Port:     port,
		Database: "testdb",
		User:     "testuser",
		Password: "testpass",
		SSLMode:  "disable",
	}

	t.Run("select 1", func(t *testing.T) {
		probe, err := New(&config.Config{PostgreSQL: base})
		require.NoError(t, err)

		s, err := probe.Execute(ctx)
		require.NoError(t, err)
		require.Greater(t, s.Duration, 0.0)
		require.NotEmpty(t, s.Metadata.SID)
	})

	t.Run("wrong password is an auth error", func(t *testing.T) {
		bad := base
		bad.Password = "wrong"
		probe, err := New(&config.Config{PostgreSQL: bad})
		require.NoError(t, err)

		_, err = probe.Execute(ctx)
		require.Error(t, err)
		require.Equal(t, plugin.KindAuth, plugin.KindOf(err))
	})
}
