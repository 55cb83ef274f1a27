package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all reconciler configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	Sync     SyncConfig
	Retry    RetryConfig
	Channels ChannelsConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// DSN returns the postgres connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL returns the postgres connection URL used by the migration runner
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// RedisConfig holds Redis connection settings for the pass lease store
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the host:port address
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// SyncConfig holds reconciliation pass settings
type SyncConfig struct {
	// RoutineWindow is how far back a scheduled pass looks for new orders
	RoutineWindow time.Duration
	// ManualWindow is the wider lookback used for on-demand re-syncs
	ManualWindow time.Duration
	// Interval is how often the daemon trigger runs a pass per channel
	Interval time.Duration
	// PassTimeout bounds one channel's pass end to end
	PassTimeout time.Duration
	// LeaseTTL is how long a channel pass lease is held before it expires
	LeaseTTL time.Duration
	// LogRetention is how long sync log entries are kept
	LogRetention time.Duration
	// LogFallbackPath is the local append-only file used when the sync log
	// store is unavailable
	LogFallbackPath string
}

// RetryConfig holds retry executor settings
type RetryConfig struct {
	// MaxAttempts bounds attempts per wrapped operation
	MaxAttempts int
	// BaseDelay is the delay after the first failure; subsequent delays grow
	// linearly (base, 2*base, ...)
	BaseDelay time.Duration
}

// ChannelAPIConfig holds the per-channel API endpoint and app credentials.
// The access/refresh tokens themselves live in the credential store, not here.
type ChannelAPIConfig struct {
	APIBaseURL     string
	TokenURL       string
	ClientID       string
	ClientSecret   string
	TimeoutSeconds int
}

// Validate checks the channel API settings
func (c *ChannelAPIConfig) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("config: channel api_base_url is required")
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("config: channel client credentials are required")
	}
	return nil
}

// ChannelsConfig holds settings for every channel client
type ChannelsConfig struct {
	EbayOne   ChannelAPIConfig
	EbayTwo   ChannelAPIConfig
	EbayThree ChannelAPIConfig
	Walmart   ChannelAPIConfig
	Sears     ChannelAPIConfig
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with RECONCILER_ prefix (e.g., RECONCILER_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("RECONCILER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Sync: SyncConfig{
			RoutineWindow:   v.GetDuration("sync.routine_window"),
			ManualWindow:    v.GetDuration("sync.manual_window"),
			Interval:        v.GetDuration("sync.interval"),
			PassTimeout:     v.GetDuration("sync.pass_timeout"),
			LeaseTTL:        v.GetDuration("sync.lease_ttl"),
			LogRetention:    v.GetDuration("sync.log_retention"),
			LogFallbackPath: v.GetString("sync.log_fallback_path"),
		},
		Retry: RetryConfig{
			MaxAttempts: v.GetInt("retry.max_attempts"),
			BaseDelay:   v.GetDuration("retry.base_delay"),
		},
		Channels: ChannelsConfig{
			EbayOne:   channelAPIConfig(v, "channels.ebay_one"),
			EbayTwo:   channelAPIConfig(v, "channels.ebay_two"),
			EbayThree: channelAPIConfig(v, "channels.ebay_three"),
			Walmart:   channelAPIConfig(v, "channels.walmart"),
			Sears:     channelAPIConfig(v, "channels.sears"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// channelAPIConfig reads one channel's API settings from a config subtree
func channelAPIConfig(v *viper.Viper, key string) ChannelAPIConfig {
	return ChannelAPIConfig{
		APIBaseURL:     v.GetString(key + ".api_base_url"),
		TokenURL:       v.GetString(key + ".token_url"),
		ClientID:       v.GetString(key + ".client_id"),
		ClientSecret:   v.GetString(key + ".client_secret"),
		TimeoutSeconds: v.GetInt(key + ".timeout_seconds"),
	}
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "inventory-reconciler"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "backoffice"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 10
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Sync.RoutineWindow == 0 {
		cfg.Sync.RoutineWindow = 10 * time.Minute
	}
	if cfg.Sync.ManualWindow == 0 {
		cfg.Sync.ManualWindow = 24 * time.Hour
	}
	if cfg.Sync.Interval == 0 {
		cfg.Sync.Interval = 5 * time.Minute
	}
	if cfg.Sync.PassTimeout == 0 {
		cfg.Sync.PassTimeout = 10 * time.Minute
	}
	if cfg.Sync.LeaseTTL == 0 {
		cfg.Sync.LeaseTTL = 15 * time.Minute
	}
	if cfg.Sync.LogRetention == 0 {
		cfg.Sync.LogRetention = 48 * time.Hour
	}
	if cfg.Sync.LogFallbackPath == "" {
		cfg.Sync.LogFallbackPath = "sync-log-fallback.jsonl"
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.BaseDelay == 0 {
		cfg.Retry.BaseDelay = 2 * time.Second
	}
	for _, ch := range []*ChannelAPIConfig{
		&cfg.Channels.EbayOne, &cfg.Channels.EbayTwo, &cfg.Channels.EbayThree,
		&cfg.Channels.Walmart, &cfg.Channels.Sears,
	} {
		if ch.TimeoutSeconds == 0 {
			ch.TimeoutSeconds = 30
		}
	}
}

// validate checks cross-field constraints that defaults cannot fix
func (c *Config) validate() error {
	if c.Sync.RoutineWindow <= 0 {
		return fmt.Errorf("config: sync.routine_window must be positive")
	}
	if c.Sync.ManualWindow < c.Sync.RoutineWindow {
		return fmt.Errorf("config: sync.manual_window must be at least sync.routine_window")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("config: retry.max_attempts must be at least 1")
	}
	if c.App.Env == "production" && c.Database.Password == "" {
		return fmt.Errorf("config: database password is required in production")
	}
	return nil
}
