package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig is the full server configuration, sourced from env vars.
type AppConfig struct {
	ListenAddr string

	DatabaseURL string
	RedisURL    string

	TelegramBotToken   string
	TelegramAuthMaxAge time.Duration // 0 disables the freshness check

	NightDuration time.Duration
	DayDuration   time.Duration
	VoteDuration  time.Duration

	RoomTTL       time.Duration
	SweepInterval time.Duration

	DefaultMaxPlayers int
	HardMaxPlayers    int
}

// Load reads the configuration from the environment. Only REDIS_URL is
// mandatory; an empty DATABASE_URL selects the in-memory identity store.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:         ":8080",
		TelegramAuthMaxAge: 24 * time.Hour,
		NightDuration:      60 * time.Second,
		DayDuration:        120 * time.Second,
		VoteDuration:       60 * time.Second,
		RoomTTL:            24 * time.Hour,
		SweepInterval:      2 * time.Second,
		DefaultMaxPlayers:  12,
		HardMaxPlayers:     20,
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.TelegramBotToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))

	if v := strings.TrimSpace(os.Getenv("TELEGRAM_AUTH_MAX_AGE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.TelegramAuthMaxAge = time.Duration(n) * time.Second
		}
	}
	if n, ok := envSeconds("NIGHT_SECONDS"); ok {
		cfg.NightDuration = n
	}
	if n, ok := envSeconds("DAY_SECONDS"); ok {
		cfg.DayDuration = n
	}
	if n, ok := envSeconds("VOTE_SECONDS"); ok {
		cfg.VoteDuration = n
	}
	if n, ok := envSeconds("SWEEP_INTERVAL_SECONDS"); ok {
		cfg.SweepInterval = n
	}
	if v := strings.TrimSpace(os.Getenv("ROOM_TTL_HOURS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RoomTTL = time.Duration(n) * time.Hour
		}
	}
	if v := strings.TrimSpace(os.Getenv("MAX_ROOM_PLAYERS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DefaultMaxPlayers = n
		}
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	return cfg, nil
}

func envSeconds(key string) (time.Duration, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return time.Duration(n) * time.Second, true
}
