package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string         `yaml:"addr"`
	APITimeout    time.Duration  `yaml:"timeout"`
	JWTSecret     string         `yaml:"jwt_secret"`
	TokenDuration time.Duration  `yaml:"token_duration"`
	Database      DatabaseConfig `yaml:"database"`
	Pool          PoolConfig     `yaml:"pool"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type PoolConfig struct {
	MinConns       int           `yaml:"min_conns"`
	MaxConns       int           `yaml:"max_conns"`
	AcquireTimeout time.Duration `yaml:"acquire_timeout"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:          getEnv("QNA_ADDR", ":8080"),
		APITimeout:    15 * time.Second,
		JWTSecret:     getEnv("QNA_JWT_SECRET", "supersecretkey"),
		TokenDuration: 1 * time.Hour,
		Database: DatabaseConfig{
			Host:     getEnv("QNA_DB_HOST", "localhost"),
			Port:     getEnvInt("QNA_DB_PORT", 5432),
			Name:     getEnv("QNA_DB_NAME", "qna"),
			User:     getEnv("QNA_DB_USER", "postgres"),
			Password: getEnv("QNA_DB_PASSWORD", ""),
		},
		Pool: PoolConfig{
			MinConns:       1,
			MaxConns:       5,
			AcquireTimeout: 5 * time.Second,
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks invariants the rest of the service relies on.
func (c *Config) Validate() error {
	if c.Pool.MinConns < 0 {
		return fmt.Errorf("pool min_conns must be >= 0, got %d", c.Pool.MinConns)
	}
	if c.Pool.MaxConns < 1 {
		return fmt.Errorf("pool max_conns must be >= 1, got %d", c.Pool.MaxConns)
	}
	if c.Pool.MinConns > c.Pool.MaxConns {
		return fmt.Errorf("pool min_conns (%d) exceeds max_conns (%d)", c.Pool.MinConns, c.Pool.MaxConns)
	}
	if c.Pool.AcquireTimeout <= 0 {
		return fmt.Errorf("pool acquire_timeout must be positive, got %s", c.Pool.AcquireTimeout)
	}
	if c.Database.Host == "" || c.Database.Name == "" {
		return fmt.Errorf("database host and name are required")
	}
	if env := getEnv("QNA_ENV", "development"); env != "development" && c.JWTSecret == "supersecretkey" {
		return fmt.Errorf("default jwt_secret is not allowed in %s", env)
	}

	return nil
}

// DSN builds the postgres connection string for the configured database.
func (c *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Name,
	}
	if c.User != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}

	return u.String()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}

	return def
}
