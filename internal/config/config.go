package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Client configures the mau command.
type Client struct {
	Server   string     `env:"MAU_SERVER" envDefault:"https://mau.miroq.ru/api/"`
	Username string     `env:"MAU_USERNAME"`
	Password string     `env:"MAU_PASSWORD"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
}

// HasCredentials reports whether both username and password are set.
func (c *Client) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}

// Mock configures the mau-mock server.
type Mock struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/mau-mock.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
}

func LoadClient() (*Client, error) {
	return load[Client]()
}

func LoadMock() (*Mock, error) {
	return load[Mock]()
}

func load[T any]() (*T, error) {
	cfg, err := env.ParseAs[T]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
