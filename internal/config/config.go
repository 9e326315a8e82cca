package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string
	Port int
}

func (s ServerConfig) Addr() string {
	host := s.Host
	if host == "" {
		host = "0.0.0.0"
	}
	return fmt.Sprintf("%s:%d", host, s.Port)
}

// PostgresConfig holds the database DSN.
type PostgresConfig struct {
	DSN string
}

// RedisConfig holds the cache / pub-sub / queue backing store URL.
// Empty means "run without Redis" (single node, no roster cache, no queue).
type RedisConfig struct {
	URL string
}

// QueueConfig holds background worker settings.
type QueueConfig struct {
	Name        string
	Concurrency int
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Pretty bool
}

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Queue    QueueConfig
	Log      LogConfig
}

// Load reads configuration from environment variables (optionally seeded from
// a .env file by the caller). Keys are upper-snake with the CHAT_ prefix,
// e.g. CHAT_SERVER_PORT, CHAT_POSTGRES_DSN, CHAT_REDIS_URL.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("chat")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("redis.url", "")
	v.SetDefault("queue.name", "chat")
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("server.host"),
			Port: v.GetInt("server.port"),
		},
		Postgres: PostgresConfig{
			DSN: v.GetString("postgres.dsn"),
		},
		Redis: RedisConfig{
			URL: v.GetString("redis.url"),
		},
		Queue: QueueConfig{
			Name:        v.GetString("queue.name"),
			Concurrency: v.GetInt("queue.concurrency"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Pretty: v.GetBool("log.pretty"),
		},
	}

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("config: CHAT_POSTGRES_DSN is required")
	}
	return cfg, nil
}
