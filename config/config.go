package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/HSouheill/hireboard_notifications/models"
)

// Config is the process configuration, read from the environment (and an
// optional .env file).
type Config struct {
	Port            string        `mapstructure:"port"`
	Env             string        `mapstructure:"env"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	MongoURI string `mapstructure:"mongo_uri"`
	DBName   string `mapstructure:"db_name"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisChannel  string `mapstructure:"redis_channel"`

	JWTSecret          string `mapstructure:"jwt_secret"`
	InternalAPIKey     string `mapstructure:"internal_api_key"`
	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`

	FirebaseCredentialsBase64    string        `mapstructure:"firebase_credentials_base64"`
	GoogleApplicationCredentials string        `mapstructure:"google_application_credentials"`
	FirebaseProjectID            string        `mapstructure:"firebase_project_id"`
	PushChannelID                string        `mapstructure:"push_channel_id"`
	PushTimeout                  time.Duration `mapstructure:"push_timeout"`

	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`

	// Client refetch cadence, served on each inbox's /sync-settings.
	MinFetchInterval     time.Duration `mapstructure:"min_fetch_interval"`
	RefreshFetchInterval time.Duration `mapstructure:"refresh_fetch_interval"`
	UnreadPollInterval   time.Duration `mapstructure:"unread_poll_interval"`

	TokenOwnershipPolicy string        `mapstructure:"token_ownership_policy"`
	TokenActiveWindow    time.Duration `mapstructure:"token_active_window"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

var defaults = map[string]interface{}{
	"port":             "8080",
	"env":              "production",
	"shutdown_timeout": 15 * time.Second,

	"mongo_uri": "",
	"db_name":   "hireboard",

	"redis_addr":     "",
	"redis_password": "",
	"redis_db":       0,
	"redis_channel":  "hireboard:notifications:ws",

	"jwt_secret":           "",
	"internal_api_key":     "",
	"cors_allowed_origins": "",

	"firebase_credentials_base64":    "",
	"google_application_credentials": "",
	"firebase_project_id":            "",
	"push_channel_id":                "job_notifications",
	"push_timeout":                   8 * time.Second,

	"default_page_size": 10,
	"max_page_size":     100,

	"min_fetch_interval":     120 * time.Second,
	"refresh_fetch_interval": 300 * time.Second,
	"unread_poll_interval":   5 * time.Minute,

	"token_ownership_policy": "last-writer-wins",
	"token_active_window":    30 * 24 * time.Hour,

	"log_level":  "info",
	"log_format": "text",
}

// Load reads .env when present, then the environment. configFile, when not
// empty, is read before the environment is applied.
func Load(configFile string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether ENV is development or dev.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// PushEnabled reports whether any push credentials are configured.
func (c *Config) PushEnabled() bool {
	return c.FirebaseCredentialsBase64 != "" || c.GoogleApplicationCredentials != ""
}

// SyncSettings is the cadence advertised to clients.
func (c *Config) SyncSettings() models.SyncSettings {
	return models.SyncSettings{
		MinFetchIntervalSeconds:   int64(c.MinFetchInterval / time.Second),
		RefreshIntervalSeconds:    int64(c.RefreshFetchInterval / time.Second),
		UnreadPollIntervalSeconds: int64(c.UnreadPollInterval / time.Second),
		PageSize:                  c.DefaultPageSize,
	}
}

func (c *Config) validate() error {
	var errs []error
	if c.JWTSecret == "" && !c.IsDevelopment() {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.MongoURI == "" && !c.IsDevelopment() {
		errs = append(errs, errors.New("MONGO_URI is required outside development"))
	}
	if c.DefaultPageSize < 1 {
		errs = append(errs, errors.New("DEFAULT_PAGE_SIZE must be positive"))
	}
	if c.MaxPageSize < c.DefaultPageSize {
		errs = append(errs, errors.New("MAX_PAGE_SIZE must not be below DEFAULT_PAGE_SIZE"))
	}
	if c.PushTimeout <= 0 {
		errs = append(errs, errors.New("PUSH_TIMEOUT must be positive"))
	}
	if c.MinFetchInterval <= 0 || c.RefreshFetchInterval <= 0 || c.UnreadPollInterval <= 0 {
		errs = append(errs, errors.New("fetch intervals must be positive"))
	}
	return errors.Join(errs...)
}
