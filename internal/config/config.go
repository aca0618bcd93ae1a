package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable names
const (
	EnvConfigPath    = "LETTERSTACKS_CONFIG"
	EnvHost          = "LETTERSTACKS_HOST"
	EnvPort          = "LETTERSTACKS_PORT"
	EnvLogLevel      = "LETTERSTACKS_LOG_LEVEL"
	EnvStorageType   = "STORAGE_TYPE"
	EnvRedisURL      = "REDIS_URL"
	EnvSQLitePath    = "LETTERSTACKS_SQLITE_PATH"
	EnvDictionary    = "LETTERSTACKS_DICTIONARY"
	EnvAllowAnyWord  = "LETTERSTACKS_ALLOW_ANY_WORD"
	EnvJWTSecret     = "JWT_SECRET"
	EnvTokenTTL      = "LETTERSTACKS_TOKEN_TTL"
	EnvRows          = "LETTERSTACKS_ROWS"
	EnvCols          = "LETTERSTACKS_COLS"
	EnvFrameInterval = "LETTERSTACKS_FRAME_INTERVAL"
)

// DefaultPath is read when LETTERSTACKS_CONFIG is unset. It may be absent.
const DefaultPath = "config.yaml"

// Storage types
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config is the server configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Storage    StorageConfig    `yaml:"storage"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Auth       AuthConfig       `yaml:"auth"`
	Game       GameConfig       `yaml:"game"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// StorageConfig selects and configures the persistence backend
type StorageConfig struct {
	Type   string       `yaml:"type"`
	Redis  RedisConfig  `yaml:"redis"`
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// RedisConfig holds Redis settings
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
}

// SQLiteConfig holds SQLite settings
type SQLiteConfig struct {
	Path        string        `yaml:"path"`
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// DictionaryConfig holds word list settings
type DictionaryConfig struct {
	Path string `yaml:"path"`
	// AllowAny skips lookups entirely. Debug only.
	AllowAny bool `yaml:"allow_any"`
}

// AuthConfig holds session token settings
type AuthConfig struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

// GameConfig holds board and loop settings
type GameConfig struct {
	Rows          int           `yaml:"rows"`
	Cols          int           `yaml:"cols"`
	FrameInterval time.Duration `yaml:"frame_interval"`
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:         "",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		Log: LogConfig{Level: "info"},
		Storage: StorageConfig{
			Type: StorageMemory,
			Redis: RedisConfig{
				URL:          "redis://localhost:6379",
				PoolSize:     10,
				MinIdleConns: 2,
				SessionTTL:   24 * time.Hour,
			},
			SQLite: SQLiteConfig{
				Path:        "data/letterstacks.db",
				BusyTimeout: 5 * time.Second,
			},
		},
		Dictionary: DictionaryConfig{Path: "data/words.txt"},
		Auth:       AuthConfig{TokenTTL: 24 * time.Hour},
		Game: GameConfig{
			Rows:          6,
			Cols:          5,
			FrameInterval: 16 * time.Millisecond,
		},
	}
}

// LookupFunc reads one environment variable
type LookupFunc func(key string) (string, bool)

// Environment returns a lookup over the process environment, falling back to
// values from the given .env files. Missing files are skipped.
func Environment(envFiles ...string) (LookupFunc, error) {
	dotenv := make(map[string]string)
	for _, file := range envFiles {
		values, err := godotenv.Read(file)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		for k, v := range values {
			if _, ok := dotenv[k]; !ok {
				dotenv[k] = v
			}
		}
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}, nil
}

// Load builds the configuration: defaults, then the YAML file, then the
// environment. path may be empty to use LETTERSTACKS_CONFIG or DefaultPath;
// only an explicitly named file has to exist.
func Load(path string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	cfg := Default()

	required := path != ""
	if !required {
		if p, ok := lookup(EnvConfigPath); ok && p != "" {
			path, required = p, true
		} else {
			path = DefaultPath
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !required:
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup LookupFunc) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str(EnvHost, &cfg.Server.Host)
	num(EnvPort, &cfg.Server.Port)
	str(EnvLogLevel, &cfg.Log.Level)
	str(EnvStorageType, &cfg.Storage.Type)
	str(EnvRedisURL, &cfg.Storage.Redis.URL)
	str(EnvSQLitePath, &cfg.Storage.SQLite.Path)
	str(EnvDictionary, &cfg.Dictionary.Path)
	flag(EnvAllowAnyWord, &cfg.Dictionary.AllowAny)
	str(EnvJWTSecret, &cfg.Auth.Secret)
	dur(EnvTokenTTL, &cfg.Auth.TokenTTL)
	num(EnvRows, &cfg.Game.Rows)
	num(EnvCols, &cfg.Game.Cols)
	dur(EnvFrameInterval, &cfg.Game.FrameInterval)

	return errors.Join(errs...)
}

// Validate checks the configuration for values the server cannot run with
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}
	switch strings.ToLower(c.Storage.Type) {
	case StorageMemory, StorageRedis, StorageSQLite:
	default:
		errs = append(errs, fmt.Errorf("storage type %q: must be memory, redis or sqlite", c.Storage.Type))
	}
	if c.Game.Rows < 1 || c.Game.Cols < 1 {
		errs = append(errs, fmt.Errorf("board %dx%d must have at least one cell", c.Game.Rows, c.Game.Cols))
	}
	if c.Game.FrameInterval <= 0 {
		errs = append(errs, errors.New("frame interval must be positive"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("token ttl must be positive"))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
