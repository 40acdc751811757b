// Package config loads service configuration with viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host" json:"host"`
	Port            int           `mapstructure:"port" yaml:"port" json:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" json:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// WSConfig represents WebSocket transport configuration
type WSConfig struct {
	ReadBufferSize     int           `mapstructure:"read_buffer_size" yaml:"read_buffer_size" json:"read_buffer_size"`
	WriteBufferSize    int           `mapstructure:"write_buffer_size" yaml:"write_buffer_size" json:"write_buffer_size"`
	MessageBufferSize  int           `mapstructure:"message_buffer_size" yaml:"message_buffer_size" json:"message_buffer_size"`
	MaxMessageSize     int64         `mapstructure:"max_message_size" yaml:"max_message_size" json:"max_message_size"`
	PingInterval       time.Duration `mapstructure:"ping_interval" yaml:"ping_interval" json:"ping_interval"`
	PongTimeout        time.Duration `mapstructure:"pong_timeout" yaml:"pong_timeout" json:"pong_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" json:"write_timeout"`
	MaxSubscriptions   int           `mapstructure:"max_subscriptions" yaml:"max_subscriptions" json:"max_subscriptions"`
	CleanupQueueSize   int           `mapstructure:"cleanup_queue_size" yaml:"cleanup_queue_size" json:"cleanup_queue_size"`
	AllowedOrigins     []string      `mapstructure:"allowed_origins" yaml:"allowed_origins" json:"allowed_origins"`
}

// ExchangeRouteConfig declares one exchange-specific routing entry
type ExchangeRouteConfig struct {
	Name        string   `mapstructure:"name" yaml:"name" json:"name"`
	Priority    int      `mapstructure:"priority" yaml:"priority" json:"priority"`
	Exchanges   []string `mapstructure:"exchanges" yaml:"exchanges" json:"exchanges"`
	Broker      string   `mapstructure:"broker" yaml:"broker" json:"broker"`
	Venue       string   `mapstructure:"venue" yaml:"venue" json:"venue"`
	MaxQuantity int64    `mapstructure:"max_quantity" yaml:"max_quantity" json:"max_quantity"`
}

// RoutingConfig configures the router set
type RoutingConfig struct {
	DefaultBroker       string                `mapstructure:"default_broker" yaml:"default_broker" json:"default_broker"`
	DefaultVenue        string                `mapstructure:"default_venue" yaml:"default_venue" json:"default_venue"`
	DarkPoolVenue       string                `mapstructure:"dark_pool_venue" yaml:"dark_pool_venue" json:"dark_pool_venue"`
	LargeOrderThreshold int64                 `mapstructure:"large_order_threshold" yaml:"large_order_threshold" json:"large_order_threshold"`
	Exchanges           []ExchangeRouteConfig `mapstructure:"exchanges" yaml:"exchanges" json:"exchanges"`
}

// Config represents the application configuration
type Config struct {
	LogLevel string        `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Server   ServerConfig  `mapstructure:"server" yaml:"server" json:"server"`
	WS       WSConfig      `mapstructure:"websocket" yaml:"websocket" json:"websocket"`
	Routing  RoutingConfig `mapstructure:"routing" yaml:"routing" json:"routing"`
}

// setDefaults registers the default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("websocket.read_buffer_size", 4096)
	v.SetDefault("websocket.write_buffer_size", 4096)
	v.SetDefault("websocket.message_buffer_size", 256)
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("websocket.ping_interval", 30*time.Second)
	v.SetDefault("websocket.pong_timeout", 60*time.Second)
	v.SetDefault("websocket.write_timeout", 10*time.Second)
	v.SetDefault("websocket.max_subscriptions", 100)
	v.SetDefault("websocket.cleanup_queue_size", 1024)
	v.SetDefault("websocket.allowed_origins", []string{"*"})

	v.SetDefault("routing.default_broker", "PRIMARY")
	v.SetDefault("routing.default_venue", "SMART")
	v.SetDefault("routing.dark_pool_venue", "")
	v.SetDefault("routing.large_order_threshold", 10000)
}

// Load reads configuration from the optional file path, environment
// variables (QUANTGATE_ prefix), and defaults, in that order of precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("QUANTGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded configuration for values the core cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	if c.WS.MessageBufferSize <= 0 {
		return fmt.Errorf("config: websocket.message_buffer_size must be positive")
	}
	if c.WS.MaxSubscriptions <= 0 {
		return fmt.Errorf("config: websocket.max_subscriptions must be positive")
	}
	for _, e := range c.Routing.Exchanges {
		if e.Name == "" {
			return fmt.Errorf("config: routing exchange entry missing name")
		}
		if len(e.Exchanges) == 0 {
			return fmt.Errorf("config: routing entry %s lists no exchanges", e.Name)
		}
	}
	return nil
}
