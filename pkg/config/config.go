package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. DELTA_POSTGRESQL_HOST.
const EnvPrefix = "DELTA"

// Backends are the accepted values of --db.
var Backends = []string{"oracle", "postgresql", "mysql", "sqlserver", "url"}

const (
	DefaultInterval  = 1.0
	DefaultPeriod    = 60
	DefaultLogLevel  = "info"
	DefaultURLTarget = "https://www.google.com.au"
)

type OracleConfig struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	// ConnectString is an EZConnect string (host:port/service), a full
	// connect descriptor or an oracle:// URL.
	ConnectString string `mapstructure:"connect_string"`
}

type PostgreSQLConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
	// Options are extra connection parameters, e.g. connect_timeout or
	// application_name.
	Options map[string]string `mapstructure:"options"`
}

type ServerConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

type URLConfig struct {
	Target          string            `mapstructure:"target"`
	Method          string            `mapstructure:"method"`
	Headers         map[string]string `mapstructure:"headers"`
	AllowedStatuses []int             `mapstructure:"allowed_statuses"`
}

type OutputConfig struct {
	Name   string `mapstructure:"name"`
	Type   string `mapstructure:"type"`
	Listen string `mapstructure:"listen,omitempty"`
	URL    string `mapstructure:"url,omitempty"`
	Token  string `mapstructure:"token,omitempty"`
	Org    string `mapstructure:"org,omitempty"`
	Bucket string `mapstructure:"bucket,omitempty"`
	Path   string `mapstructure:"path,omitempty"`
}

type Config struct {
	// Interval is the pause after each probe, in seconds.
	Interval float64 `mapstructure:"interval"`
	// Period is the run window, in seconds.
	Period      int    `mapstructure:"period"`
	CSVOutput   string `mapstructure:"csvoutput"`
	DB          string `mapstructure:"db"`
	LogLevel    string `mapstructure:"log_level"`
	MetricsAddr string `mapstructure:"metrics_addr"`
	StopOnError bool   `mapstructure:"stop_on_error"`

	Oracle     OracleConfig     `mapstructure:"oracle"`
	PostgreSQL PostgreSQLConfig `mapstructure:"postgresql"`
	MySQL      ServerConfig     `mapstructure:"mysql"`
	SQLServer  ServerConfig     `mapstructure:"sqlserver"`
	URL        URLConfig        `mapstructure:"url"`

	Outputs []OutputConfig `mapstructure:"outputs"`
}

func (c *Config) IntervalDuration() time.Duration {
	return time.Duration(c.Interval * float64(time.Second))
}

func (c *Config) PeriodDuration() time.Duration {
	return time.Duration(c.Period) * time.Second
}

// New returns a viper instance with defaults and environment overrides
// installed. Flags are bound by the caller.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers every known key so that environment variables are
// visible to Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("period", DefaultPeriod)
	v.SetDefault("csvoutput", "")
	v.SetDefault("db", "")
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("stop_on_error", false)

	v.SetDefault("oracle.user", "")
	v.SetDefault("oracle.password", "")
	v.SetDefault("oracle.connect_string", "")

	v.SetDefault("postgresql.host", "")
	v.SetDefault("postgresql.port", 5432)
	v.SetDefault("postgresql.database", "")
	v.SetDefault("postgresql.user", "")
	v.SetDefault("postgresql.password", "")
	v.SetDefault("postgresql.sslmode", "prefer")

	v.SetDefault("mysql.host", "")
	v.SetDefault("mysql.port", 3306)
	v.SetDefault("mysql.database", "")
	v.SetDefault("mysql.user", "")
	v.SetDefault("mysql.password", "")

	v.SetDefault("sqlserver.host", "")
	v.SetDefault("sqlserver.port", 1433)
	v.SetDefault("sqlserver.database", "")
	v.SetDefault("sqlserver.user", "")
	v.SetDefault("sqlserver.password", "")

	v.SetDefault("url.target", DefaultURLTarget)
	v.SetDefault("url.method", "GET")
}

// Load reads the optional dotenv and config files into v and decodes the
// result. Values already present in the process environment win over the
// dotenv file.
func Load(v *viper.Viper, path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}
