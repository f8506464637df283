package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the smart-menu services
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Payment  PaymentConfig  `yaml:"payment"`
	Cart     CartConfig     `yaml:"cart"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port          int    `yaml:"port"`
	PublicBaseURL string `yaml:"public_base_url"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
}

// RabbitMQConfig holds RabbitMQ connection configuration.
// An empty host disables event publishing.
type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
}

// PaymentConfig holds checkout session configuration.
// An empty secret key selects the local gateway.
type PaymentConfig struct {
	SecretKey string `yaml:"secret_key"`
	Currency  string `yaml:"currency"`
}

// CartConfig holds the session cart configuration
type CartConfig struct {
	SessionKey      string `yaml:"session_key"`
	CookieSecure    bool   `yaml:"cookie_secure"`
	DecrementPolicy string `yaml:"decrement_policy"`
}

// Load reads configuration from a YAML file, applies environment overrides and defaults
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a configuration from raw YAML
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv lets secrets and deployment specifics come from the environment
func (c *Config) applyEnv() {
	overrideString(&c.Database.Host, "DATABASE_HOST")
	overrideString(&c.Database.User, "DATABASE_USER")
	overrideString(&c.Database.Password, "DATABASE_PASSWORD")
	overrideString(&c.Database.Database, "DATABASE_NAME")
	overrideInt(&c.Database.Port, "DATABASE_PORT")
	overrideString(&c.RabbitMQ.Host, "RABBITMQ_HOST")
	overrideString(&c.RabbitMQ.Password, "RABBITMQ_PASSWORD")
	overrideString(&c.Payment.SecretKey, "STRIPE_SECRET_KEY")
	overrideString(&c.Cart.SessionKey, "SESSION_KEY")
	overrideString(&c.Server.PublicBaseURL, "PUBLIC_BASE_URL")
	overrideInt(&c.Server.Port, "PORT")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Server.PublicBaseURL == "" {
		c.Server.PublicBaseURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}
	c.Server.PublicBaseURL = strings.TrimSuffix(c.Server.PublicBaseURL, "/")
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 25
	}
	if c.RabbitMQ.Port == 0 {
		c.RabbitMQ.Port = 5672
	}
	if c.RabbitMQ.VHost == "" {
		c.RabbitMQ.VHost = "/"
	}
	if c.Payment.Currency == "" {
		c.Payment.Currency = "brl"
	}
	if c.Cart.DecrementPolicy == "" {
		c.Cart.DecrementPolicy = "clamp"
	}
}

// Validate reports the first configuration problem found
func (c *Config) Validate() error {
	if c.Database.Host == "" || c.Database.User == "" || c.Database.Database == "" {
		return fmt.Errorf("database config incomplete: host, user and database are required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Cart.DecrementPolicy {
	case "clamp", "remove":
	default:
		return fmt.Errorf("invalid cart.decrement_policy %q: must be clamp or remove", c.Cart.DecrementPolicy)
	}
	return nil
}

// DatabaseURL returns a PostgreSQL connection URL with escaped credentials
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port)),
		Path:     "/" + c.Database.Database,
		RawQuery: url.Values{"sslmode": {c.Database.SSLMode}}.Encode(),
	}
	return u.String()
}

// RabbitMQURL returns an AMQP connection URL with escaped credentials and vhost
func (c *Config) RabbitMQURL() string {
	vhost := strings.TrimPrefix(c.RabbitMQ.VHost, "/")
	u := url.URL{
		Scheme:  "amqp",
		User:    url.UserPassword(c.RabbitMQ.User, c.RabbitMQ.Password),
		Host:    net.JoinHostPort(c.RabbitMQ.Host, strconv.Itoa(c.RabbitMQ.Port)),
		Path:    "/" + vhost,
		RawPath: "/" + url.PathEscape(vhost),
	}
	return u.String()
}

// MessagingEnabled reports whether a broker is configured
func (c *Config) MessagingEnabled() bool {
	return c.RabbitMQ.Host != ""
}

func overrideString(dst *string, key string) {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		*dst = value
	}
}

func overrideInt(dst *int, key string) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return
	}
	if n, err := strconv.Atoi(value); err == nil {
		*dst = n
	}
}
