package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName              string
	AppEnv               string
	AppPort              string
	DatabaseURL          string
	RedisURL             string
	NATSURL              string
	JWTSecret            string
	JWTTTL               time.Duration
	LateFine             LateFinePolicy
	SweepInterval        time.Duration
	SweepOnRead          bool
	SweepLockTTL         time.Duration
	NotificationsChannel string
	AdminEmail           string
	AdminPassword        string
}

// LateFinePolicy controls how penalties are derived from overdue fees.
type LateFinePolicy struct {
	Rate      float64
	Minimum   float64
	GraceDays int
}

// DefaultLateFinePolicy charges 5% of the fee with a floor of 50, payable within seven days.
func DefaultLateFinePolicy() LateFinePolicy {
	return LateFinePolicy{Rate: 0.05, Minimum: 50, GraceDays: 7}
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SCHOOL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	defaults := DefaultLateFinePolicy()
	v.SetDefault("app.name", "School Fees API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "5000")
	v.SetDefault("jwt.ttl", "168h")
	v.SetDefault("late_fine.rate", defaults.Rate)
	v.SetDefault("late_fine.minimum", defaults.Minimum)
	v.SetDefault("late_fine.grace_days", defaults.GraceDays)
	v.SetDefault("sweep.interval", "1h")
	v.SetDefault("sweep.on_read", true)
	v.SetDefault("sweep.lock_ttl", "2m")
	v.SetDefault("notifications.channel", "school")
	v.SetDefault("admin.email", "admin@school.com")
	v.SetDefault("admin.password", "Admin@123")

	jwtTTL, err := parseDuration(v, "jwt.ttl")
	if err != nil {
		return Config{}, err
	}
	sweepInterval, err := parseDuration(v, "sweep.interval")
	if err != nil {
		return Config{}, err
	}
	lockTTL, err := parseDuration(v, "sweep.lock_ttl")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:     v.GetString("app.name"),
		AppEnv:      v.GetString("app.env"),
		AppPort:     v.GetString("app.port"),
		DatabaseURL: v.GetString("database.url"),
		RedisURL:    v.GetString("redis.url"),
		NATSURL:     v.GetString("nats.url"),
		JWTSecret:   v.GetString("jwt.secret"),
		JWTTTL:      jwtTTL,
		LateFine: LateFinePolicy{
			Rate:      v.GetFloat64("late_fine.rate"),
			Minimum:   v.GetFloat64("late_fine.minimum"),
			GraceDays: v.GetInt("late_fine.grace_days"),
		},
		SweepInterval:        sweepInterval,
		SweepOnRead:          v.GetBool("sweep.on_read"),
		SweepLockTTL:         lockTTL,
		NotificationsChannel: v.GetString("notifications.channel"),
		AdminEmail:           strings.ToLower(strings.TrimSpace(v.GetString("admin.email"))),
		AdminPassword:        v.GetString("admin.password"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.JWTTTL <= 0 {
		cfg.JWTTTL = 7 * 24 * time.Hour
	}

	if cfg.LateFine.Rate < 0 || cfg.LateFine.Minimum < 0 {
		return Config{}, fmt.Errorf("late fine rate and minimum must not be negative")
	}

	if cfg.LateFine.GraceDays <= 0 {
		cfg.LateFine.GraceDays = defaults.GraceDays
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return value, nil
}
