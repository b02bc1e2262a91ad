package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	StoreDriver string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	DiscordToken    string
	DiscordChannels []string

	FeedRepoURL   string
	FeedLocalPath string
	FeedJSONPath  string

	CheckInterval       time.Duration
	DispatchMaxAttempts int
	DispatchBackoffBase time.Duration
	DispatchBackoffMax  time.Duration
	DispatchWorkers     int
	StoreTimeout        time.Duration

	HTTPPort string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		StoreDriver: envOrDefault("STORE_DRIVER", "postgres"),

		DBHost:     envOrDefault("DB_HOST", "localhost"),
		DBPort:     envOrDefault("DB_PORT", "5432"),
		DBUser:     envOrDefault("DB_USERNAME", "postgres"),
		DBPassword: envOrDefault("DB_PASSWORD", "postgres"),
		DBName:     envOrDefault("DB_DATABASE", "internwatch"),
		DBSSLMode:  envOrDefault("DB_SSLMODE", "disable"),
		SQLitePath: envOrDefault("SQLITE_PATH", "notified.db"),

		DiscordToken: os.Getenv("DISCORD_BOT_TOKEN"),

		FeedRepoURL:   envOrDefault("FEED_REPO_URL", "https://github.com/cvrve/Summer2025-Internships"),
		FeedLocalPath: envOrDefault("FEED_LOCAL_PATH", "listings-repo"),
		FeedJSONPath:  envOrDefault("FEED_JSON_PATH", ".github/scripts/listings.json"),

		HTTPPort: envOrDefault("HTTP_PORT", "3000"),
	}

	if channels := os.Getenv("DISCORD_CHANNEL_IDS"); channels != "" {
		for _, id := range strings.Split(channels, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.DiscordChannels = append(cfg.DiscordChannels, id)
			}
		}
	}

	var err error
	if cfg.CheckInterval, err = envDuration("CHECK_INTERVAL", time.Minute); err != nil {
		return cfg, err
	}
	if cfg.DispatchMaxAttempts, err = envInt("DISPATCH_MAX_ATTEMPTS", 3); err != nil {
		return cfg, err
	}
	if cfg.DispatchBackoffBase, err = envDuration("DISPATCH_BACKOFF_BASE", time.Second); err != nil {
		return cfg, err
	}
	if cfg.DispatchBackoffMax, err = envDuration("DISPATCH_BACKOFF_MAX", 30*time.Second); err != nil {
		return cfg, err
	}
	if cfg.DispatchWorkers, err = envInt("DISPATCH_WORKERS", 4); err != nil {
		return cfg, err
	}
	if cfg.StoreTimeout, err = envDuration("STORE_TIMEOUT", 5*time.Second); err != nil {
		return cfg, err
	}

	if cfg.DiscordToken == "" || len(cfg.DiscordChannels) == 0 {
		return cfg, errors.New("missing DISCORD_BOT_TOKEN or DISCORD_CHANNEL_IDS")
	}

	switch cfg.StoreDriver {
	case "postgres":
		if cfg.DBHost == "" || cfg.DBUser == "" || cfg.DBName == "" {
			return cfg, errors.New("missing database configuration")
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			return cfg, errors.New("missing SQLITE_PATH")
		}
	default:
		return cfg, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
