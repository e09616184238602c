package fetchcache

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend names accepted by Config.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
	BackendRedis  = "redis"
)

// CacheFileName is the file created inside the configured SQLite
// directory.
const CacheFileName = "webget-cache.db"

// MySQLSettings parameterise the MySQL backend.
type MySQLSettings struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Host     string `yaml:"host"`
}

// RedisSettings parameterise the Redis backend.
type RedisSettings struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Config selects and sizes a cache backend. The zero value opens an
// in-memory store with defaults.
type Config struct {
	// Backend is one of the Backend* constants; memory when empty.
	Backend string `yaml:"backend"`

	// Size is how many records survive a Trim.
	Size int `yaml:"size"`

	// Lifespan is the janitor trim interval. In YAML it is written as
	// a duration string, e.g. "90s" or "5m".
	Lifespan time.Duration `yaml:"-"`

	// SQLitePath is the directory the SQLite file lives in. When empty
	// the database is kept in memory.
	SQLitePath string `yaml:"sqlite_path"`

	MySQL MySQLSettings `yaml:"mysql"`
	Redis RedisSettings `yaml:"redis"`
}

// UnmarshalYAML decodes a Config, accepting duration strings for
// lifespan.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type plain struct {
		Backend    string        `yaml:"backend"`
		Size       int           `yaml:"size"`
		Lifespan   string        `yaml:"lifespan"`
		SQLitePath string        `yaml:"sqlite_path"`
		MySQL      MySQLSettings `yaml:"mysql"`
		Redis      RedisSettings `yaml:"redis"`
	}

	var raw plain
	if err := value.Decode(&raw); err != nil {
		return err
	}

	c.Backend = raw.Backend
	c.Size = raw.Size
	c.SQLitePath = raw.SQLitePath
	c.MySQL = raw.MySQL
	c.Redis = raw.Redis

	if raw.Lifespan != "" {
		lifespan, err := time.ParseDuration(raw.Lifespan)
		if err != nil {
			return fmt.Errorf("fetchcache: parse lifespan: %w", err)
		}
		c.Lifespan = lifespan
	}
	return nil
}

// FromEnv builds a Config from the environment: CACHE selects the
// backend (memory when unset), SQLITE_PATH, MYSQL_USER, MYSQL_PWD,
// MYSQL_DB, MYSQL_HOST, and REDIS_ADDR parameterise it, CACHE_SIZE and
// CACHE_LIFESPAN (seconds) size it.
func FromEnv() Config {
	var cfg Config
	cfg.Backend = os.Getenv("CACHE")
	cfg.SQLitePath = os.Getenv("SQLITE_PATH")
	cfg.MySQL.User = os.Getenv("MYSQL_USER")
	cfg.MySQL.Password = os.Getenv("MYSQL_PWD")
	cfg.MySQL.Database = os.Getenv("MYSQL_DB")
	cfg.MySQL.Host = os.Getenv("MYSQL_HOST")
	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")

	if v, err := strconv.Atoi(os.Getenv("CACHE_SIZE")); err == nil && v > 0 {
		cfg.Size = v
	}
	if v, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN")); err == nil && v > 0 {
		cfg.Lifespan = time.Duration(v) * time.Second
	}
	return cfg
}

// Load reads a Config from a YAML file.
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("fetchcache: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("fetchcache: parse config: %w", err)
	}
	return cfg, nil
}

// Open builds the configured store.
func (c Config) Open() (Store, error) {
	switch c.Backend {
	case "", BackendMemory:
		return NewMemory(MemoryConfig{Size: c.Size}), nil
	case BackendSQLite:
		path := ""
		if c.SQLitePath != "" {
			path = filepath.Join(c.SQLitePath, CacheFileName)
		}
		return NewSQLite(SQLiteConfig{Path: path, Size: c.Size})
	case BackendMySQL:
		return NewMySQL(MySQLConfig{
			User:     c.MySQL.User,
			Password: c.MySQL.Password,
			Database: c.MySQL.Database,
			Host:     c.MySQL.Host,
			Size:     c.Size,
		})
	case BackendRedis:
		return NewRedis(RedisConfig{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Size:     c.Size,
		})
	default:
		return nil, fmt.Errorf("fetchcache: unknown backend %q", c.Backend)
	}
}

// TrimInterval returns the configured lifespan, defaulting when unset.
func (c Config) TrimInterval() time.Duration {
	if c.Lifespan <= 0 {
		return DefaultLifespan
	}
	return c.Lifespan
}
