package sqlserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/shadabshaukat/DELTAV2/pkg/config"
	"github.com/shadabshaukat/DELTAV2/pkg/plugin"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.ServerConfig{Host: "mssql.internal", Port: 1433, Database: "app", User: "sa", Password: "Str0ng;Pass"})

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	require.Equal(t, "sqlserver", u.Scheme)
	require.Equal(t, "mssql.internal:1433", u.Host)
	require.Equal(t, "sa", u.User.Username())
	pw, _ := u.User.Password()
	require.Equal(t, "Str0ng;Pass", pw)
	require.Equal(t, "app", u.Query().Get("database"))
}

func TestIsAuthError(t *testing.T) {
	require.True(t, IsAuthError(fmt.Errorf("connect: %w", mssql.Error{Number: 18456, Message: "Login failed for user 'sa'."})))
	require.False(t, IsAuthError(mssql.Error{Number: 4060}))
	require.False(t, IsAuthError(errors.New("dial tcp: connection refused")))
}

func TestProbe_ConnectionRefused(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	probe, err := plugin.NewProbe("sqlserver", &config.Config{
		SQLServer: config.ServerConfig{Host: "127.0.0.1", Port: port, User: "sa", Password: "x"},
	})
	require.NoError(t, err)
	require.Equal(t, "sqlserver", probe.Name())

	_, err = probe.Execute(context.Background())
	require.Error(t, err)
	require.Equal(t, plugin.KindConnection, plugin.KindOf(err))
}
