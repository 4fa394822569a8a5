package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv     string `toml:"app_env"`
	ServerAddr string `toml:"server_addr"`
	LogLevel   string `toml:"log_level"`

	DBDriver    string `toml:"db_driver"`
	DatabaseURL string `toml:"database_url"`

	JWTSecret  string        `toml:"jwt_secret"`
	TokenTTL   time.Duration `toml:"-"`
	TokenTTLS  string        `toml:"token_ttl"`
	BcryptCost int           `toml:"bcrypt_cost"`

	RedisAddr           string `toml:"redis_addr"`
	RedisPassword       string `toml:"redis_password"`
	RedisDB             int    `toml:"redis_db"`
	RevocationCacheSize int    `toml:"revocation_cache_size"`

	KafkaBrokers []string `toml:"kafka_brokers"`
	KafkaTopic   string   `toml:"kafka_topic"`

	ESURL      string `toml:"es_url"`
	ESUser     string `toml:"es_user"`
	ESPassword string `toml:"es_password"`
	ESIndex    string `toml:"es_index"`

	PurgeSchedule string `toml:"purge_schedule"`
}

func Default() Config {
	return Config{
		AppEnv:              "development",
		ServerAddr:          ":8080",
		LogLevel:            "info",
		DBDriver:            "postgres",
		TokenTTL:            30 * time.Minute,
		BcryptCost:          12,
		RevocationCacheSize: 10000,
		KafkaTopic:          "user_events",
		ESIndex:             "recipes",
		PurgeSchedule:       "@every 1h",
	}
}

// Load layers defaults, the optional TOML file named by CONFIG_FILE, .env and the process environment.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	// .env is optional; the process environment wins over it.
	_ = godotenv.Load(".env")

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	if cfg.TokenTTLS != "" {
		d, err := time.ParseDuration(cfg.TokenTTLS)
		if err != nil {
			return fmt.Errorf("config file token_ttl: %w", err)
		}
		cfg.TokenTTL = d
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.AppEnv = EnvDefault("APP_ENV", cfg.AppEnv)
	cfg.ServerAddr = EnvDefault("SERVER_ADDR", cfg.ServerAddr)
	cfg.LogLevel = EnvDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.DBDriver = strings.ToLower(EnvDefault("DB_DRIVER", cfg.DBDriver))
	cfg.DatabaseURL = EnvDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.JWTSecret = EnvDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.RedisAddr = EnvDefault("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = EnvDefault("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.KafkaTopic = EnvDefault("KAFKA_TOPIC", cfg.KafkaTopic)
	cfg.ESURL = EnvDefault("ES_URL", cfg.ESURL)
	cfg.ESUser = EnvDefault("ES_USER", cfg.ESUser)
	cfg.ESPassword = EnvDefault("ES_PASSWORD", cfg.ESPassword)
	cfg.ESIndex = EnvDefault("ES_INDEX", cfg.ESIndex)
	cfg.PurgeSchedule = EnvDefault("PURGE_SCHEDULE", cfg.PurgeSchedule)
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = CSV(v)
	}

	var err error
	if cfg.TokenTTL, err = envDuration("TOKEN_TTL", cfg.TokenTTL); err != nil {
		return err
	}
	if cfg.BcryptCost, err = envInt("BCRYPT_COST", cfg.BcryptCost); err != nil {
		return err
	}
	if cfg.RedisDB, err = envInt("REDIS_DB", cfg.RedisDB); err != nil {
		return err
	}
	if cfg.RevocationCacheSize, err = envInt("REVOCATION_CACHE_SIZE", cfg.RevocationCacheSize); err != nil {
		return err
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	switch c.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.DBDriver))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.RevocationCacheSize < 0 {
		errs = append(errs, errors.New("REVOCATION_CACHE_SIZE must not be negative"))
	}
	return errors.Join(errs...)
}

func (c Config) IsProduction() bool { return c.AppEnv == "production" }

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
