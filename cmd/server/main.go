package main

import (
	"context"
	"log"
	"time"

	"github.com/dpup/prefab"
	"github.com/dpup/prefab/logging"
	"github.com/joho/godotenv"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dpup/trailhead/server/internal/cache"
	"github.com/dpup/trailhead/server/internal/clients/directory"
	"github.com/dpup/trailhead/server/internal/clients/weather"
	"github.com/dpup/trailhead/server/internal/config"
	"github.com/dpup/trailhead/server/internal/dataset"
	"github.com/dpup/trailhead/server/internal/lib/forecast"
	"github.com/dpup/trailhead/server/internal/lib/timezone"
	"github.com/dpup/trailhead/server/internal/metrics"
	"github.com/dpup/trailhead/server/internal/services"
)

// Bounds a whole pass over the watched locations
const refreshPassTimeout = 2 * time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using prefab.yaml and environment")
	}

	appConfig := loadConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := logging.EnsureLogger(context.Background())

	ds, err := loadDataset(ctx, &appConfig.Trail)
	if err != nil {
		log.Fatalf("Failed to load trail dataset: %v", err)
	}

	dir := directory.Empty()
	if appConfig.Trail.DirectoryPath != "" {
		dir, err = directory.LoadFile(appConfig.Trail.DirectoryPath)
		if err != nil {
			log.Fatalf("Failed to load business directory: %v", err)
		}
	}

	store := newCacheStore(ctx, &appConfig.Cache)

	clientOpts := []weather.Option{
		weather.WithRetry(appConfig.Weather.MaxAttempts, appConfig.Weather.RetryBackoff),
		weather.WithForecastDays(appConfig.Weather.ForecastDays),
	}
	if appConfig.Weather.ResolveTimezones {
		tz, err := timezone.NewService()
		if err != nil {
			log.Printf("Timezone lookup disabled, provider will resolve zones: %v", err)
		} else {
			clientOpts = append(clientOpts, weather.WithTimezones(tz))
		}
	}
	weatherClient := weather.NewClient(appConfig.Weather.BaseURL, clientOpts...)

	compositor := forecast.NewCompositor(weatherClient, store, forecast.Options{
		Timeout:         appConfig.Weather.Timeout,
		RefreshInterval: appConfig.Weather.RefreshInterval,
		LapseRate:       appConfig.Weather.LapseRate,
	})

	trailService := services.NewTrailService(ds, dir)
	itineraryService := services.NewItineraryService(trailService, &appConfig.Planner)
	weatherService := services.NewWeatherService(compositor, trailService.Store(), &appConfig.Weather)
	router := services.NewRouter(trailService, itineraryService, weatherService)

	summary := ds.Summary()
	log.Printf("Trailhead API Server starting")
	log.Printf("Trail dataset %q: %.1f miles, %d points", summary.Version, summary.TrailLength, summary.Points)
	log.Printf("Waypoints: %d shelters, %d resupply, %d features", summary.Shelters, summary.Resupply, summary.Features)
	log.Printf("Businesses listed for %d resupply points", dir.Len())
	log.Printf("Weather locations: %d", len(appConfig.Weather.Locations))

	periodicRefresh := services.NewPeriodicRefreshService(weatherService, appConfig.Weather.RefreshInterval, refreshPassTimeout)
	if err := periodicRefresh.StartPeriodicRefresh(ctx); err != nil {
		log.Printf("Failed to start periodic refresh: %v", err)
	}

	// Server configuration (port, etc.) is loaded from prefab.yaml/env vars
	server := prefab.New(
		prefab.WithGRPCReflection(),
		prefab.WithHTTPHandlerFunc("/api/v1/", router.ServeHTTP),
		prefab.WithHTTPHandlerFunc("/metrics", metrics.Handler().ServeHTTP),
		prefab.WithHTTPHandlerFunc("/", services.HomepageHandler),
	)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server.ServiceRegistrar(), healthServer)

	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// loadConfig overlays prefab.yaml and PF__ environment variables on the
// defaults
func loadConfig() *config.Config {
	appConfig := config.DefaultConfig()

	sections := []struct {
		key    string
		target interface{}
	}{
		{"trail", &appConfig.Trail},
		{"weather", &appConfig.Weather},
		{"cache", &appConfig.Cache},
		{"planner", &appConfig.Planner},
	}
	for _, s := range sections {
		if err := prefab.Config.Unmarshal(s.key, s.target); err != nil {
			log.Fatalf("Failed to unmarshal %s section: %v", s.key, err)
		}
	}

	return appConfig
}

func loadDataset(ctx context.Context, cfg *config.TrailConfig) (*dataset.TrailDataset, error) {
	if cfg.Source == "postgres" {
		pool, err := dataset.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		// The dataset is immutable once loaded
		defer pool.Close()
		return dataset.NewPostgresSource(pool).Load(ctx, cfg.Version)
	}
	return dataset.LoadFile(cfg.Path)
}

func newCacheStore(ctx context.Context, cfg *config.CacheConfig) cache.Store {
	if cfg.Backend == "redis" {
		log.Printf("Caching forecasts in Redis at %s", cfg.RedisAddr)
		return cache.NewRedisStore(cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword), cfg.Prefix)
	}
	memory := cache.NewCache()
	memory.StartPeriodicCleanup(ctx, cfg.CleanupInterval)
	return memory
}
