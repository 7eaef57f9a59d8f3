package sqlserver

import (
	"errors"
	"net"
	"net/url"
	"strconv"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/shadabshaukat/DELTAV2/pkg/config"
	"github.com/shadabshaukat/DELTAV2/pkg/plugin"
	"github.com/shadabshaukat/DELTAV2/pkg/sqlprobe"
)

const (
	Query        = "SELECT 1"
	SessionQuery = "SELECT CAST(@@SPID AS VARCHAR(16)), CAST(@@SERVERNAME AS NVARCHAR(128))"

	// loginFailed is error 18456, "Login failed for user".
	loginFailed = 18456
)

func init() {
	plugin.RegisterProbe("sqlserver", New)
}

func New(cfg *config.Config) (plugin.Probe, error) {
	p, err := sqlprobe.New(sqlprobe.Config{
		Backend:      "sqlserver",
		Driver:       "sqlserver",
		DSN:          DSN(cfg.SQLServer),
		Query:        Query,
		SessionQuery: SessionQuery,
		IsAuthError:  IsAuthError,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DSN renders the connection section as a sqlserver:// URL.
func DSN(c config.ServerConfig) string {
	q := url.Values{}
	if c.Database != "" {
		q.Set("database", c.Database)
	}
	u := url.URL{
		Scheme:   "sqlserver",
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		RawQuery: q.Encode(),
	}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	return u.String()
}

func IsAuthError(err error) bool {
	var msErr mssql.Error
	return errors.As(err, &msErr) && msErr.Number == loginFailed
}
