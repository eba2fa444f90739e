// Package config loads the valuechain configuration file.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/valuechain/pkg/errors"
	"github.com/matzehuels/valuechain/pkg/store"
)

// Config holds valuechain configuration.
type Config struct {
	Editor EditorConfig `toml:"editor"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
}

// EditorConfig controls how CLI commands open documents.
type EditorConfig struct {
	File        string `toml:"file"`
	StrictColor bool   `toml:"strict_color"`
}

// StoreConfig selects the document store used by push, pull and serve.
type StoreConfig struct {
	Backend string      `toml:"backend"` // "file", "redis", "mongo", "memory"
	Dir     string      `toml:"dir"`
	TTL     string      `toml:"ttl"`
	Redis   RedisConfig `toml:"redis"`
	Mongo   MongoConfig `toml:"mongo"`
}

// RedisConfig holds the redis backend connection settings.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// MongoConfig holds the mongo backend connection settings.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr        string   `toml:"addr"`
	CORSOrigins []string `toml:"cors_origins"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{File: "valuechain.json"},
		Store: StoreConfig{
			Backend: store.BackendFile,
			TTL:     "0s",
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: store.DefaultRedisPrefix},
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   store.DefaultMongoDatabase,
				Collection: store.DefaultMongoCollection,
			},
		},
		Server: ServerConfig{Addr: ":8080", CORSOrigins: []string{}},
	}
}

// Dir returns the valuechain config directory path.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "valuechain")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file at path on top of the defaults. An empty path
// means [Path]. A missing file yields the defaults; a malformed one is an
// error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "parse config %s", path)
	}
	if _, err := cfg.Store.ttl(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories. An empty path means
// [Path].
func Save(path string, cfg *Config) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// StoreConfig converts the [store] section into a [store.Config].
func (c *Config) StoreConfig() (store.Config, error) {
	ttl, err := c.Store.ttl()
	if err != nil {
		return store.Config{}, err
	}
	return store.Config{
		Backend: c.Store.Backend,
		Dir:     c.Store.Dir,
		TTL:     ttl,
		Redis: store.RedisConfig{
			Addr:     c.Store.Redis.Addr,
			Password: c.Store.Redis.Password,
			DB:       c.Store.Redis.DB,
			Prefix:   c.Store.Redis.Prefix,
		},
		Mongo: store.MongoConfig{
			URI:        c.Store.Mongo.URI,
			Database:   c.Store.Mongo.Database,
			Collection: c.Store.Mongo.Collection,
		},
	}, nil
}

func (s StoreConfig) ttl() (time.Duration, error) {
	if s.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.TTL)
	if err != nil || d < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "store.ttl: invalid duration %q", s.TTL)
	}
	return d, nil
}
