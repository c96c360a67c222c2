package config

import (
	"errors"
	"fmt"
	"time"
)

// Config represents the complete server configuration. Each section is read
// from prefab.yaml (or PF__ environment variables) under the same key.
type Config struct {
	Trail   TrailConfig   `yaml:"trail" koanf:"trail"`
	Weather WeatherConfig `yaml:"weather" koanf:"weather"`
	Cache   CacheConfig   `yaml:"cache" koanf:"cache"`
	Planner PlannerConfig `yaml:"planner" koanf:"planner"`
}

// TrailConfig selects where the trail dataset is loaded from
type TrailConfig struct {
	// Source is "file" or "postgres"
	Source        string `yaml:"source" koanf:"source"`
	Path          string `yaml:"path" koanf:"path"`
	PostgresDSN   string `yaml:"postgres_dsn" koanf:"postgres_dsn"`
	Version       string `yaml:"version" koanf:"version"`
	DirectoryPath string `yaml:"directory_path" koanf:"directory_path"`
}

// WeatherConfig holds forecast provider settings
type WeatherConfig struct {
	BaseURL          string            `yaml:"base_url" koanf:"base_url"`
	Timeout          time.Duration     `yaml:"timeout" koanf:"timeout"`
	MaxAttempts      int               `yaml:"max_attempts" koanf:"max_attempts"`
	RetryBackoff     time.Duration     `yaml:"retry_backoff" koanf:"retry_backoff"`
	ForecastDays     int               `yaml:"forecast_days" koanf:"forecast_days"`
	RefreshInterval  time.Duration     `yaml:"refresh_interval" koanf:"refresh_interval"`
	LapseRate        float64           `yaml:"lapse_rate" koanf:"lapse_rate"`
	ResolveTimezones bool              `yaml:"resolve_timezones" koanf:"resolve_timezones"`
	Locations        []WatchedLocation `yaml:"locations" koanf:"locations"`
}

// WatchedLocation is a trail mile whose forecast is kept warm
type WatchedLocation struct {
	Name string  `yaml:"name" koanf:"name"`
	Mile float64 `yaml:"mile" koanf:"mile"`
}

// CacheConfig selects the forecast cache backend
type CacheConfig struct {
	// Backend is "memory" or "redis"
	Backend         string        `yaml:"backend" koanf:"backend"`
	RedisAddr       string        `yaml:"redis_addr" koanf:"redis_addr"`
	RedisPassword   string        `yaml:"redis_password" koanf:"redis_password"`
	Prefix          string        `yaml:"prefix" koanf:"prefix"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" koanf:"cleanup_interval"`
}

// PlannerConfig bounds itinerary requests
type PlannerConfig struct {
	DefaultMilesPerDay float64 `yaml:"default_miles_per_day" koanf:"default_miles_per_day"`
	DefaultDays        int     `yaml:"default_days" koanf:"default_days"`
	MaxDays            int     `yaml:"max_days" koanf:"max_days"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Trail: TrailConfig{
			Source:        "file",
			Path:          "data/trail.json",
			DirectoryPath: "data/businesses.json",
		},
		Weather: WeatherConfig{
			BaseURL:          "https://api.open-meteo.com/v1/forecast",
			Timeout:          12 * time.Second,
			MaxAttempts:      3,
			RetryBackoff:     200 * time.Millisecond,
			ForecastDays:     7,
			RefreshInterval:  30 * time.Minute,
			LapseRate:        3.5,
			ResolveTimezones: true,
			Locations: []WatchedLocation{
				{Name: "Springer Mountain", Mile: 0},
				{Name: "Neels Gap", Mile: 31.7},
			},
		},
		Cache: CacheConfig{
			Backend:         "memory",
			Prefix:          "trailhead:",
			CleanupInterval: 10 * time.Minute,
		},
		Planner: PlannerConfig{
			DefaultMilesPerDay: 15,
			DefaultDays:        7,
			MaxDays:            365,
		},
	}
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	switch c.Trail.Source {
	case "file":
		check(c.Trail.Path != "", "trail.path is required for the file source")
	case "postgres":
		check(c.Trail.PostgresDSN != "", "trail.postgres_dsn is required for the postgres source")
	default:
		errs = append(errs, fmt.Errorf("trail.source must be file or postgres, got %q", c.Trail.Source))
	}

	check(c.Weather.Timeout > 0, "weather.timeout must be positive")
	check(c.Weather.RefreshInterval > 0, "weather.refresh_interval must be positive")
	check(c.Weather.MaxAttempts > 0, "weather.max_attempts must be positive")
	check(c.Weather.RetryBackoff >= 0, "weather.retry_backoff must not be negative")
	check(c.Weather.ForecastDays > 0 && c.Weather.ForecastDays <= 16, "weather.forecast_days must be between 1 and 16")
	check(c.Weather.LapseRate > 0, "weather.lapse_rate must be positive")

	switch c.Cache.Backend {
	case "memory":
	case "redis":
		check(c.Cache.RedisAddr != "", "cache.redis_addr is required for the redis backend")
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be memory or redis, got %q", c.Cache.Backend))
	}
	check(c.Cache.CleanupInterval > 0, "cache.cleanup_interval must be positive")

	check(c.Planner.DefaultMilesPerDay > 0, "planner.default_miles_per_day must be positive")
	check(c.Planner.DefaultDays > 0, "planner.default_days must be positive")
	check(c.Planner.MaxDays >= c.Planner.DefaultDays, "planner.max_days must be at least planner.default_days")

	return errors.Join(errs...)
}
