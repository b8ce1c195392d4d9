// internal/config/config.go
package config

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Analysis AnalysisConfig
	Mail     MailConfig
	Alert    AlertConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Drive    DriveConfig
	Database DatabaseConfig
	LogLevel string
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

// AnalysisConfig holds the economic constants and class boundaries used by
// the classifier and the EOQ / reorder point calculator.
type AnalysisConfig struct {
	SafetyStock    float64
	OrderingCost   float64
	HoldingRate    float64
	ClassABoundary float64
	ClassBBoundary float64
}

type MailConfig struct {
	Enabled        bool
	Host           string
	Port           int
	Username       string
	Password       string
	From           string
	TimeoutSeconds int
}

type AlertConfig struct {
	Recipient   string
	Concurrency int
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	AnalysisTTLSeconds int
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type DriveConfig struct {
	CredentialsJSON string
}

type DatabaseConfig struct {
	URL string
}

var (
	once     sync.Once
	instance *Config
	loadErr  error
)

// Load reads the process configuration once from the environment (and an
// optional .env file).
func Load() (*Config, error) {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.GetViper()
		SetDefaults(v)
		v.AutomaticEnv()

		instance, loadErr = FromViper(v)
	})

	return instance, loadErr
}

// SetDefaults registers every recognized key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("ANALYSIS_SAFETY_STOCK", 10.0)
	v.SetDefault("ANALYSIS_ORDERING_COST", 50.0)
	v.SetDefault("ANALYSIS_HOLDING_RATE", 0.2)
	v.SetDefault("ANALYSIS_CLASS_A_BOUNDARY", 80.0)
	v.SetDefault("ANALYSIS_CLASS_B_BOUNDARY", 95.0)

	v.SetDefault("MAIL_ENABLED", false)
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 465)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("MAIL_FROM", "")
	v.SetDefault("SMTP_TIMEOUT_SECONDS", 15)

	v.SetDefault("ALERT_RECIPIENT", "manager@company.com")
	v.SetDefault("ALERT_CONCURRENCY", 1)

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_ANALYSIS_TTL_SECONDS", 60)

	v.SetDefault("STORAGE_ENDPOINT", "")
	v.SetDefault("STORAGE_ACCESS_KEY", "")
	v.SetDefault("STORAGE_SECRET_KEY", "")
	v.SetDefault("STORAGE_BUCKET", "")
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_USE_SSL", true)

	v.SetDefault("GOOGLE_DRIVE_CREDENTIALS_JSON", "")
	v.SetDefault("DATABASE_URL", "")
}

// FromViper builds and validates a Config from v. Defaults must already be
// registered (see SetDefaults).
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Analysis: AnalysisConfig{
			SafetyStock:    v.GetFloat64("ANALYSIS_SAFETY_STOCK"),
			OrderingCost:   v.GetFloat64("ANALYSIS_ORDERING_COST"),
			HoldingRate:    v.GetFloat64("ANALYSIS_HOLDING_RATE"),
			ClassABoundary: v.GetFloat64("ANALYSIS_CLASS_A_BOUNDARY"),
			ClassBBoundary: v.GetFloat64("ANALYSIS_CLASS_B_BOUNDARY"),
		},
		Mail: MailConfig{
			Enabled:        v.GetBool("MAIL_ENABLED"),
			Host:           v.GetString("SMTP_HOST"),
			Port:           v.GetInt("SMTP_PORT"),
			Username:       v.GetString("SMTP_USERNAME"),
			Password:       v.GetString("SMTP_PASSWORD"),
			From:           v.GetString("MAIL_FROM"),
			TimeoutSeconds: v.GetInt("SMTP_TIMEOUT_SECONDS"),
		},
		Alert: AlertConfig{
			Recipient:   v.GetString("ALERT_RECIPIENT"),
			Concurrency: v.GetInt("ALERT_CONCURRENCY"),
		},
		Cache: CacheConfig{
			Enabled:            v.GetBool("CACHE_ENABLED"),
			RedisURL:           v.GetString("REDIS_URL"),
			RedisHost:          v.GetString("REDIS_HOST"),
			RedisPort:          v.GetString("REDIS_PORT"),
			RedisPassword:      v.GetString("REDIS_PASSWORD"),
			RedisDB:            v.GetInt("REDIS_DB"),
			AnalysisTTLSeconds: v.GetInt("CACHE_ANALYSIS_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Endpoint:  v.GetString("STORAGE_ENDPOINT"),
			AccessKey: v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: v.GetString("STORAGE_SECRET_KEY"),
			Bucket:    v.GetString("STORAGE_BUCKET"),
			Region:    v.GetString("STORAGE_REGION"),
			UseSSL:    v.GetBool("STORAGE_USE_SSL"),
		},
		Drive: DriveConfig{
			CredentialsJSON: v.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
		},
		Database: DatabaseConfig{
			URL: v.GetString("DATABASE_URL"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Analysis.Validate(); err != nil {
		return err
	}
	if c.Mail.Enabled {
		if c.Mail.Host == "" || c.Mail.Port <= 0 {
			return fmt.Errorf("mail: SMTP_HOST and SMTP_PORT are required when MAIL_ENABLED is set")
		}
		if c.Mail.From == "" {
			c.Mail.From = c.Mail.Username
		}
		if c.Mail.From == "" {
			return fmt.Errorf("mail: MAIL_FROM or SMTP_USERNAME is required when MAIL_ENABLED is set")
		}
	}
	if c.Alert.Concurrency <= 0 {
		c.Alert.Concurrency = 1
	}
	return nil
}

// Validate checks the economic constants. A zero holding rate or ordering
// cost would make every EOQ undefined or zero.
func (a AnalysisConfig) Validate() error {
	switch {
	case a.SafetyStock < 0:
		return fmt.Errorf("analysis: safety stock must be non-negative, got %v", a.SafetyStock)
	case a.OrderingCost <= 0:
		return fmt.Errorf("analysis: ordering cost must be positive, got %v", a.OrderingCost)
	case a.HoldingRate <= 0:
		return fmt.Errorf("analysis: holding rate must be positive, got %v", a.HoldingRate)
	case a.ClassABoundary <= 0 || a.ClassABoundary > a.ClassBBoundary || a.ClassBBoundary > 100:
		return fmt.Errorf("analysis: class boundaries must satisfy 0 < A <= B <= 100, got A=%v B=%v",
			a.ClassABoundary, a.ClassBBoundary)
	}
	return nil
}

// DefaultAnalysis returns the analysis constants used when nothing is configured.
func DefaultAnalysis() AnalysisConfig {
	return AnalysisConfig{
		SafetyStock:    10,
		OrderingCost:   50,
		HoldingRate:    0.2,
		ClassABoundary: 80,
		ClassBBoundary: 95,
	}
}
