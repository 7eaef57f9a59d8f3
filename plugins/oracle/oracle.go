package oracle

import (
	"errors"
	"strings"

	go_ora "github.com/sijms/go-ora/v2"
	"github.com/sijms/go-ora/v2/network"

	"github.com/shadabshaukat/DELTAV2/pkg/config"
	"github.com/shadabshaukat/DELTAV2/pkg/plugin"
	"github.com/shadabshaukat/DELTAV2/pkg/sqlprobe"
)

const (
	Query        = "SELECT 1 FROM DUAL"
	SessionQuery = "SELECT sys_context('USERENV','SID'), sys_context('USERENV','INSTANCE') FROM dual"

	// ora01017 is "invalid username/password; logon denied".
	ora01017 = 1017
)

func init() {
	plugin.RegisterProbe("oracle", New)
}

// New builds the Oracle probe. The session id and instance number of every
// probe are resolved before timing and a failure to resolve them fails the
// probe.
func New(cfg *config.Config) (plugin.Probe, error) {
	p, err := sqlprobe.New(sqlprobe.Config{
		Backend:        "oracle",
		Driver:         "oracle",
		DSN:            DSN(cfg.Oracle),
		Query:          Query,
		SessionQuery:   SessionQuery,
		RequireSession: true,
		IsAuthError:    IsAuthError,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DSN accepts an oracle:// URL as is; anything else (EZConnect or a connect
// descriptor) is passed to the driver as a JDBC-style connect string.
func DSN(c config.OracleConfig) string {
	if strings.HasPrefix(strings.ToLower(c.ConnectString), "oracle://") {
		return c.ConnectString
	}
	return go_ora.BuildJDBC(c.User, c.Password, c.ConnectString, nil)
}

func IsAuthError(err error) bool {
	var oraErr *network.OracleError
	return errors.As(err, &oraErr) && oraErr.ErrCode == ora01017
}
