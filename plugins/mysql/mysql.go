package mysql

import (
	"errors"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/shadabshaukat/DELTAV2/pkg/config"
	"github.com/shadabshaukat/DELTAV2/pkg/plugin"
	"github.com/shadabshaukat/DELTAV2/pkg/sqlprobe"
)

const (
	Query        = "SELECT 1"
	SessionQuery = "SELECT CONNECTION_ID(), @@hostname"

	// erAccessDenied is ER_ACCESS_DENIED_ERROR.
	erAccessDenied = 1045
)

func init() {
	plugin.RegisterProbe("mysql", New)
}

func New(cfg *config.Config) (plugin.Probe, error) {
	p, err := sqlprobe.New(sqlprobe.Config{
		Backend:      "mysql",
		Driver:       "mysql",
		DSN:          DSN(cfg.MySQL),
		Query:        Query,
		SessionQuery: SessionQuery,
		IsAuthError:  IsAuthError,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func DSN(c config.ServerConfig) string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Database
	return mc.FormatDSN()
}

func IsAuthError(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == erAccessDenied
}
