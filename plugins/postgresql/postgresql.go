package postgresql

import (
	"errors"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/shadabshaukat/DELTAV2/pkg/config"
	"github.com/shadabshaukat/DELTAV2/pkg/plugin"
	"github.com/shadabshaukat/DELTAV2/pkg/sqlprobe"
)

const (
	Query        = "SELECT 1"
	SessionQuery = "SELECT pg_backend_pid()::text, inet_server_addr()::text"
)

func init() {
	plugin.RegisterProbe("postgresql", New)
}

func New(cfg *config.Config) (plugin.Probe, error) {
	p, err := sqlprobe.New(sqlprobe.Config{
		Backend:      "postgresql",
		Driver:       "pgx",
		DSN:          DSN(cfg.PostgreSQL),
		Query:        Query,
		SessionQuery: SessionQuery,
		IsAuthError:  IsAuthError,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DSN renders the connection section as a postgres:// URL.
func DSN(c config.PostgreSQLConfig) string {
	q := url.Values{}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	for k, v := range c.Options {
		q.Set(k, v)
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: q.Encode(),
	}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	return u.String()
}

// IsAuthError matches SQLSTATE class 28 (invalid authorization).
func IsAuthError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "28000" || pgErr.Code == "28P01"
}
