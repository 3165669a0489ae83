package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

var validEnvs = map[string]bool{
	"local": true,
	"alpha": true,
	"beta":  true,
	"prod":  true,
}

var validLogFormats = map[string]bool{
	"json": true,
	"text": true,
}

var validBackends = map[string]bool{
	"postgres": true,
	"gorm":     true,
	"memory":   true,
}

var validDrivers = map[string]bool{
	"postgres": true,
	"pgx":      true,
}

type Config struct {
	ServerPort  string        `toml:"server_port"`
	AppEnv      string        `toml:"app_env"`
	LogLevel    string        `toml:"log_level"`
	LogFormat   string        `toml:"log_format"`
	AuthEnabled bool          `toml:"auth_enabled"`
	DB          DBConfig      `toml:"db"`
	Cognito     CognitoConfig `toml:"cognito"`
}

func (c Config) ParseLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		return fmt.Errorf("invalid SERVER_PORT %q: %w", c.ServerPort, err)
	}
	if !validEnvs[c.AppEnv] {
		return fmt.Errorf("invalid APP_ENV %q: must be one of local, alpha, beta, prod", c.AppEnv)
	}
	if !validLogFormats[c.LogFormat] {
		return fmt.Errorf("invalid LOG_FORMAT %q: must be one of json, text", c.LogFormat)
	}
	if !validBackends[c.DB.Backend] {
		return fmt.Errorf("invalid DB_BACKEND %q: must be one of postgres, gorm, memory", c.DB.Backend)
	}
	if !validDrivers[c.DB.Driver] {
		return fmt.Errorf("invalid DB_DRIVER %q: must be one of postgres, pgx", c.DB.Driver)
	}
	if c.DB.Backend != "memory" {
		if _, err := strconv.Atoi(c.DB.Port); err != nil {
			return fmt.Errorf("invalid DB_PORT %q: %w", c.DB.Port, err)
		}
	}
	if c.AuthEnabled {
		if c.Cognito.UserPoolID == "" {
			return fmt.Errorf("COGNITO_USER_POOL_ID is required when AUTH_ENABLED is true")
		}
		if c.Cognito.AppClientID == "" {
			return fmt.Errorf("COGNITO_APP_CLIENT_ID is required when AUTH_ENABLED is true")
		}
	}
	return nil
}

type DBConfig struct {
	// Backend selects the item store: postgres (database/sql), gorm or memory.
	Backend     string `toml:"backend"`
	Driver      string `toml:"driver"`
	AutoMigrate bool   `toml:"auto_migrate"`
	Host        string `toml:"host"`
	Port        string `toml:"port"`
	User        string `toml:"user"`
	Password    string `toml:"password"`
	Name        string `toml:"name"`
	SSLMode     string `toml:"sslmode"`
}

func (d DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     d.Name,
		RawQuery: fmt.Sprintf("sslmode=%s", url.QueryEscape(d.SSLMode)),
	}
	return u.String()
}

type CognitoConfig struct {
	Region      string `toml:"region"`
	UserPoolID  string `toml:"user_pool_id"`
	AppClientID string `toml:"app_client_id"`
}

func defaults() Config {
	return Config{
		ServerPort: "8080",
		AppEnv:     "local",
		LogLevel:   "info",
		LogFormat:  "json",
		DB: DBConfig{
			Backend:  "postgres",
			Driver:   "postgres",
			Host:     "localhost",
			Port:     "5432",
			User:     "todo",
			Password: "todo",
			Name:     "todo",
			SSLMode:  "disable",
		},
		Cognito: CognitoConfig{
			Region: "ap-northeast-1",
		},
	}
}

// Load builds the configuration from defaults, then the TOML file named by
// CONFIG_FILE (if any), then environment variables. Empty env vars are ignored.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return Config{}, fmt.Errorf("unknown keys in config file %s: %s", path, strings.Join(keys, ", "))
		}
	}

	cfg.ServerPort = envOrDefault("SERVER_PORT", cfg.ServerPort)
	cfg.AppEnv = envOrDefault("APP_ENV", cfg.AppEnv)
	cfg.LogLevel = envOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(envOrDefault("LOG_FORMAT", cfg.LogFormat))
	cfg.AuthEnabled = envBool("AUTH_ENABLED", cfg.AuthEnabled)

	cfg.DB.Backend = strings.ToLower(envOrDefault("DB_BACKEND", cfg.DB.Backend))
	cfg.DB.Driver = strings.ToLower(envOrDefault("DB_DRIVER", cfg.DB.Driver))
	cfg.DB.AutoMigrate = envBool("DB_AUTO_MIGRATE", cfg.DB.AutoMigrate)
	cfg.DB.Host = envOrDefault("DB_HOST", cfg.DB.Host)
	cfg.DB.Port = envOrDefault("DB_PORT", cfg.DB.Port)
	cfg.DB.User = envOrDefault("DB_USER", cfg.DB.User)
	cfg.DB.Password = envOrDefault("DB_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = envOrDefault("DB_NAME", cfg.DB.Name)
	cfg.DB.SSLMode = envOrDefault("DB_SSLMODE", cfg.DB.SSLMode)

	cfg.Cognito.Region = envOrDefault("COGNITO_REGION", cfg.Cognito.Region)
	cfg.Cognito.UserPoolID = envOrDefault("COGNITO_USER_POOL_ID", cfg.Cognito.UserPoolID)
	cfg.Cognito.AppClientID = envOrDefault("COGNITO_APP_CLIENT_ID", cfg.Cognito.AppClientID)

	return cfg, nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return strings.EqualFold(v, "true")
}
