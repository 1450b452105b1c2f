package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/iancoleman/strcase"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "/config/circulation.yaml"
)

type Config struct {
	DatabaseDriver            string        `koanf:"database_driver" default:"sqlite" json:"-"`
	DatabaseFilePath          string        `koanf:"database_file_path" json:"-"`
	DatabaseURL               string        `koanf:"database_url" json:"-"`
	DatabaseDebug             bool          `koanf:"database_debug" json:"-"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count" default:"5" json:"-"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay" default:"2s" json:"-"`
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout" default:"5s" json:"-"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries" default:"3" json:"-"`
	DatabaseLockTimeout       time.Duration `koanf:"database_lock_timeout" default:"5s" json:"-"`
	DatabaseMaxOpenConns      int           `koanf:"database_max_open_conns" default:"10" json:"-"`
	ServerHost                string        `koanf:"server_host" default:"0.0.0.0" json:"-"`
	ServerPort                int           `koanf:"server_port" default:"3690" json:"-"`

	DefaultPageSize int `koanf:"default_page_size" default:"10" json:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size" default:"100" json:"max_page_size"`
	DefaultLoanDays int `koanf:"default_loan_days" default:"14" json:"default_loan_days"`
}

// New loads the config from defaults, then the YAML file named by CONFIG_FILE
// (if it exists), then environment variables. Environment variables are the
// upper-case version of the config keys, e.g. DATABASE_FILE_PATH.
func New() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	k := koanf.New(".")

	configFile := os.Getenv(configFileENV)
	if configFile == "" {
		configFile = defaultConfigFile
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", configFile)
		}
	}

	keys := configKeys()
	err := k.Load(env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if _, ok := keys[key]; !ok {
			// Only pick up env vars that map to a config key.
			return ""
		}
		return key
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewForTest returns a config suitable for tests: an in-memory SQLite
// database with defaults for everything else.
func NewForTest() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	cfg.DatabaseFilePath = ":memory:"
	cfg.ServerHost = "127.0.0.1"
	return cfg
}

func (cfg *Config) validate() error {
	var required []string
	switch cfg.DatabaseDriver {
	case DriverSQLite:
		required = append(required, "DatabaseFilePath")
	case DriverPostgres:
		required = append(required, "DatabaseURL")
	default:
		return errors.Errorf("unsupported database_driver %q", cfg.DatabaseDriver)
	}

	v := reflect.ValueOf(cfg).Elem()
	var missing []string
	for _, name := range required {
		if v.FieldByName(name).IsZero() {
			key := toSnakeCase(name)
			missing = append(missing, fmt.Sprintf("%s (env %s)", key, strings.ToUpper(key)))
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	if cfg.DefaultPageSize < 1 || cfg.MaxPageSize < cfg.DefaultPageSize {
		return errors.Errorf("invalid page sizes: default_page_size=%d max_page_size=%d", cfg.DefaultPageSize, cfg.MaxPageSize)
	}

	return nil
}

func configKeys() map[string]struct{} {
	keys := map[string]struct{}{}
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		if key := t.Field(i).Tag.Get("koanf"); key != "" {
			keys[key] = struct{}{}
		}
	}
	return keys
}

func toSnakeCase(s string) string {
	return strcase.ToSnake(s)
}
