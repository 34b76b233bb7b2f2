package conduit

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the connection settings for the message broker.
type Config struct {
	// Host is the broker hostname.
	Host string

	// Port is the broker port.
	Port int

	// Username authenticates the connection.
	Username string

	// Password authenticates the connection.
	Password string

	// VirtualHost is the broker virtual host to connect to.
	VirtualHost string
}

// DefaultConfig returns a Config with local-development defaults.
func DefaultConfig() Config {
	return Config{
		Host:        "localhost",
		Port:        5672,
		Username:    "guest",
		Password:    "guest",
		VirtualHost: "/",
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to DefaultConfig values for variables that are unset. The optional
// prefix is prepended to every variable name, so a prefix of "ORCH_"
// reads ORCH_RABBITMQ_HOSTNAME and so on.
//
// Recognized variables: RABBITMQ_HOSTNAME, RABBITMQ_PORT,
// RABBITMQ_USERNAME, RABBITMQ_PASSWORD, RABBITMQ_VIRTUALHOST.
func ConfigFromEnv(prefix string) Config {
	cfg := DefaultConfig()

	if v := os.Getenv(prefix + "RABBITMQ_HOSTNAME"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv(prefix + "RABBITMQ_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv(prefix + "RABBITMQ_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv(prefix + "RABBITMQ_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv(prefix + "RABBITMQ_VIRTUALHOST"); v != "" {
		cfg.VirtualHost = v
	}

	return cfg
}

// URL renders the config as an AMQP connection URL.
func (c Config) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/%s",
		c.Username, c.Password, c.Host, c.Port, c.VirtualHost)
}
