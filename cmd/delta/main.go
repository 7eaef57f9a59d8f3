package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/shadabshaukat/DELTAV2/pkg/config"
	"github.com/shadabshaukat/DELTAV2/pkg/daemon"
	"github.com/shadabshaukat/DELTAV2/pkg/logging"
	"github.com/shadabshaukat/DELTAV2/pkg/metrics"
	"github.com/shadabshaukat/DELTAV2/pkg/plugin"
	_ "github.com/shadabshaukat/DELTAV2/plugins/csv"
	_ "github.com/shadabshaukat/DELTAV2/plugins/influxdb"
	_ "github.com/shadabshaukat/DELTAV2/plugins/mysql"
	_ "github.com/shadabshaukat/DELTAV2/plugins/oracle"
	_ "github.com/shadabshaukat/DELTAV2/plugins/postgresql"
	_ "github.com/shadabshaukat/DELTAV2/plugins/sqlserver"
	_ "github.com/shadabshaukat/DELTAV2/plugins/url"
	_ "github.com/shadabshaukat/DELTAV2/plugins/ws"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"interval":      "interval",
	"period":        "period",
	"csvoutput":     "csvoutput",
	"db":            "db",
	"log-level":     "log_level",
	"metrics-addr":  "metrics_addr",
	"stop-on-error": "stop_on_error",
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	v := config.New()
	var cfgFile, envFile string

	cmd := &cobra.Command{
		Use:   "delta",
		Short: "Measure database and URL round-trip latency",
		Long: `delta runs a trivial probe (SELECT 1 or an HTTP GET) against one backend
at a fixed interval for a fixed period, records every timing and prints the
p99 latency when the period is over.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logLevel, _ := cmd.Flags().GetString("log-level")
			log := logging.New(stderr, logLevel)

			cfg, err := config.Load(v, cfgFile, envFile)
			if err != nil {
				log.Error("failed to load configuration", "error", err)
				return loggedError{err}
			}
			log = logging.New(stderr, cfg.LogLevel)
			slog.SetDefault(log)

			d, err := daemon.New(cfg, log)
			if err != nil {
				log.Error("invalid configuration", "error", err)
				return loggedError{err}
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			metrics.BuildInfo.WithLabelValues(version, commit, date).Set(1)
			if cfg.MetricsAddr != "" {
				go func() {
					if err := metrics.Serve(ctx, log, cfg.MetricsAddr); err != nil {
						log.Error("metrics server failed", "addr", cfg.MetricsAddr, "error", err)
					}
				}()
			}

			if err := d.Run(ctx, stdout); err != nil {
				log.Error("run aborted", "kind", string(plugin.KindOf(err)), "error", err)
				return loggedError{err}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Float64("interval", config.DefaultInterval, "seconds to sleep after each probe")
	flags.Int("period", config.DefaultPeriod, "length of the run in seconds")
	flags.String("csvoutput", "", "write every timing to the named CSV file")
	flags.String("db", "", "backend to probe: "+strings.Join(plugin.Probes(), ", "))
	flags.String("log-level", config.DefaultLogLevel, "log level: debug, info, warn or error")
	flags.String("metrics-addr", "", "serve prometheus metrics on this address")
	flags.Bool("stop-on-error", false, "abort the run on the first failed probe")
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (yaml, toml or json)")
	flags.StringVar(&envFile, "env-file", "", "dotenv file with DELTA_* settings")

	if err := bindFlags(v, flags); err != nil {
		panic(err)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "delta %s (commit: %s, built: %s)\n", version, commit, date)
		},
	})
	return cmd
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// loggedError marks errors that were already reported through the logger.
type loggedError struct{ error }

func (e loggedError) Unwrap() error { return e.error }

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(context.Background()); err != nil {
		var logged loggedError
		if !errors.As(err, &logged) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
