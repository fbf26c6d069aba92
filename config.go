package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the configuration of the whole app. It is read from a
// .config.json file, and every key can be overridden by a YATUBE_ environment
// variable, e.g. YATUBE_DATABASE_HOST for database.host.
type Config struct {
	Port         int            `mapstructure:"port"`
	Env          string         `mapstructure:"env"`
	Pepper       string         `mapstructure:"pepper"`
	HMACKey      string         `mapstructure:"hmac_key"`
	CSRFKey      string         `mapstructure:"csrf_key"`
	PostsPerPage int            `mapstructure:"posts_per_page"`
	MediaRoot    string         `mapstructure:"media_root"`
	Database     DatabaseConfig `mapstructure:"database"`
	Cache        CacheConfig    `mapstructure:"cache"`
}

// IsProd reports whether the app runs in production.
func (c Config) IsProd() bool {
	return c.Env == "prod"
}

// DatabaseConfig selects and addresses the database. Dialect is "postgres" or "sqlite";
// Path is only used by sqlite.
type DatabaseConfig struct {
	Dialect  string `mapstructure:"dialect"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	Path     string `mapstructure:"path"`
}

// ConnectionInfo returns the DSN of the configured database.
func (dc DatabaseConfig) ConnectionInfo() string {
	if dc.Dialect == "sqlite" {
		return dc.Path + "?_foreign_keys=on"
	}
	if dc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable", dc.Host, dc.Port, dc.User, dc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", dc.Host, dc.Port, dc.User, dc.Password, dc.Name)
}

// CacheConfig configures the page cache. Driver is "memory" or "redis".
type CacheConfig struct {
	Driver string        `mapstructure:"driver"`
	TTL    time.Duration `mapstructure:"ttl"`
	Redis  RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DefaultConfig is the development setup: a local sqlite file and an in-memory page cache.
func DefaultConfig() Config {
	return Config{
		Port:         8000,
		Env:          "dev",
		Pepper:       "secret-random-string",
		HMACKey:      "secret-hmac-key",
		PostsPerPage: 10,
		MediaRoot:    "media",
		Database: DatabaseConfig{
			Dialect: "sqlite",
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			Name:    "yatube",
			Path:    "yatube.db",
		},
		Cache: CacheConfig{
			Driver: "memory",
			TTL:    20 * time.Second,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
	}
}

// setDefaults registers every key of c with v, so that environment overrides
// work for keys missing from the config file.
func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("port", c.Port)
	v.SetDefault("env", c.Env)
	v.SetDefault("pepper", c.Pepper)
	v.SetDefault("hmac_key", c.HMACKey)
	v.SetDefault("csrf_key", c.CSRFKey)
	v.SetDefault("posts_per_page", c.PostsPerPage)
	v.SetDefault("media_root", c.MediaRoot)
	v.SetDefault("database.dialect", c.Database.Dialect)
	v.SetDefault("database.host", c.Database.Host)
	v.SetDefault("database.port", c.Database.Port)
	v.SetDefault("database.user", c.Database.User)
	v.SetDefault("database.password", c.Database.Password)
	v.SetDefault("database.name", c.Database.Name)
	v.SetDefault("database.path", c.Database.Path)
	v.SetDefault("cache.driver", c.Cache.Driver)
	v.SetDefault("cache.ttl", c.Cache.TTL)
	v.SetDefault("cache.redis.addr", c.Cache.Redis.Addr)
	v.SetDefault("cache.redis.password", c.Cache.Redis.Password)
	v.SetDefault("cache.redis.db", c.Cache.Redis.DB)
}

// LoadConfig loads the configuration from the file at path. If the file doesn't exist,
// the default dev setup is used, unless required is true. That's the case in production,
// where running with development secrets would be a mistake.
func LoadConfig(v *viper.Viper, path string, required bool) (Config, error) {
	setDefaults(v, DefaultConfig())
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("YATUBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if required || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("err reading config file %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("err decoding config: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	switch c.Database.Dialect {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database dialect %q", c.Database.Dialect)
	}
	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported cache driver %q", c.Cache.Driver)
	}
	if c.IsProd() && len(c.CSRFKey) != 32 {
		return errors.New("csrf_key must be 32 bytes long in production")
	}
	return nil
}
