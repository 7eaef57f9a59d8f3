// Package sqlprobe times a trivial query over a fresh database/sql
// connection. The database variants of delta are thin wrappers that supply a
// driver, a DSN and their error classification.
package sqlprobe

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/shadabshaukat/DELTAV2/pkg/plugin"
)

type Config struct {
	Backend string
	Driver  string
	DSN     string

	// Query is the timed round trip; its rows are read and discarded.
	Query string

	// SessionQuery, when set, runs before the timed query and must return
	// two columns: session id and instance name.
	SessionQuery string
	// RequireSession turns a failing SessionQuery into a probe failure
	// instead of leaving the metadata blank.
	RequireSession bool

	// IsAuthError reports whether a connection error was a rejected login.
	IsAuthError func(error) bool

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

type Probe struct {
	cfg Config
}

func New(cfg Config) (*Probe, error) {
	if cfg.Driver == "" {
		return nil, plugin.NewError(plugin.KindConfig, cfg.Backend, "new_probe", errors.New("driver is required"))
	}
	if cfg.Query == "" {
		return nil, plugin.NewError(plugin.KindConfig, cfg.Backend, "new_probe", errors.New("query is required"))
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Probe{cfg: cfg}, nil
}

func (p *Probe) Name() string { return p.cfg.Backend }

// Execute opens a dedicated connection, resolves session metadata, times the
// query including the consumption of every row, and closes the connection.
// Connection setup and teardown are outside the measured interval.
func (p *Probe) Execute(ctx context.Context) (plugin.Sample, error) {
	db, err := sql.Open(p.cfg.Driver, p.cfg.DSN)
	if err != nil {
		return plugin.Sample{}, plugin.NewError(plugin.KindConfig, p.cfg.Backend, "open", err)
	}
	defer db.Close()
	db.SetMaxIdleConns(0)

	conn, err := db.Conn(ctx)
	if err != nil {
		return plugin.Sample{}, p.connectError(err)
	}
	defer conn.Close()

	var meta plugin.Metadata
	if p.cfg.SessionQuery != "" {
		var sid, instance sql.NullString
		err := conn.QueryRowContext(ctx, p.cfg.SessionQuery).Scan(&sid, &instance)
		if err != nil {
			if p.cfg.RequireSession {
				return plugin.Sample{}, plugin.NewError(plugin.KindQuery, p.cfg.Backend, "session_info", err)
			}
			p.cfg.Logger.Debug("session info unavailable, metadata left blank", "backend", p.cfg.Backend, "error", err)
		}
		meta = plugin.Metadata{SID: sid.String, Instance: instance.String}
	}

	start := time.Now()
	rows, err := conn.QueryContext(ctx, p.cfg.Query)
	if err != nil {
		return plugin.Sample{}, plugin.NewError(plugin.KindQuery, p.cfg.Backend, "query", err)
	}
	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return plugin.Sample{}, plugin.NewError(plugin.KindQuery, p.cfg.Backend, "fetch", err)
	}
	if err := rows.Close(); err != nil {
		return plugin.Sample{}, plugin.NewError(plugin.KindQuery, p.cfg.Backend, "fetch", err)
	}
	elapsed := time.Since(start)

	return plugin.Sample{
		Backend:  p.cfg.Backend,
		Duration: plugin.Millis(elapsed),
		Metadata: meta,
	}, nil
}

func (p *Probe) connectError(err error) error {
	if p.cfg.IsAuthError != nil && p.cfg.IsAuthError(err) {
		return plugin.NewError(plugin.KindAuth, p.cfg.Backend, "connect", err)
	}
	return plugin.NewError(plugin.KindConnection, p.cfg.Backend, "connect", err)
}
