// README: Config loader backed by viper; CABFARE_* env vars override an optional config.yaml.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env      string         `mapstructure:"env"`
	Currency string         `mapstructure:"currency"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Log      LogConfig      `mapstructure:"log"`
	DB       DBConfig       `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Rules    RulesConfig    `mapstructure:"rules"`
	Firebase FirebaseConfig `mapstructure:"firebase"`
	Maps     MapsConfig     `mapstructure:"maps"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DBConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	RulesTTL time.Duration `mapstructure:"rules_ttl"`
}

// RulesConfig selects where the active pricing rules come from.
type RulesConfig struct {
	Source string `mapstructure:"source"`
	File   string `mapstructure:"file"`
}

type FirebaseConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	Collection      string `mapstructure:"collection"`
}

type MapsConfig struct {
	APIKey string `mapstructure:"api_key"`
	Region string `mapstructure:"region"`
}

const (
	SourceFile      = "file"
	SourcePostgres  = "postgres"
	SourceFirestore = "firestore"
)

func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	// CABFARE_REDIS_RULES_TTL -> redis.rules_ttl
	v.SetEnvPrefix("CABFARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// every key needs a default so AutomaticEnv can see it during Unmarshal
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("currency", "USD")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("db.dsn", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.rules_ttl", 5*time.Minute)
	v.SetDefault("rules.source", SourceFile)
	v.SetDefault("rules.file", "")
	v.SetDefault("firebase.project_id", "")
	v.SetDefault("firebase.credentials_file", "")
	v.SetDefault("firebase.collection", "pricing_rules")
	v.SetDefault("maps.api_key", "")
	v.SetDefault("maps.region", "us")
}

func (c Config) Validate() error {
	var errs []string
	if c.HTTP.Addr == "" {
		errs = append(errs, "http.addr is required")
	}
	if c.Currency == "" {
		errs = append(errs, "currency is required")
	}
	switch c.Rules.Source {
	case SourceFile:
	case SourcePostgres:
		if c.DB.DSN == "" {
			errs = append(errs, "db.dsn is required when rules.source is postgres")
		}
	case SourceFirestore:
		if c.Firebase.ProjectID == "" {
			errs = append(errs, "firebase.project_id is required when rules.source is firestore")
		}
		if c.Firebase.Collection == "" {
			errs = append(errs, "firebase.collection is required when rules.source is firestore")
		}
	default:
		errs = append(errs, fmt.Sprintf("rules.source must be file, postgres or firestore, got %q", c.Rules.Source))
	}
	if c.Redis.Addr != "" && c.Redis.RulesTTL <= 0 {
		errs = append(errs, "redis.rules_ttl must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// IsProduction reports whether env names a production deployment.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}
