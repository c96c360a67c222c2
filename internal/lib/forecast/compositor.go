package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dpup/prefab/logging"

	"github.com/dpup/trailhead/server/internal/cache"
	"github.com/dpup/trailhead/server/internal/lib/generation"
	"github.com/dpup/trailhead/server/internal/metrics"
)

const (
	// DefaultTimeout bounds a single provider fetch
	DefaultTimeout = 12 * time.Second

	// DefaultRefreshInterval is how long a composed forecast stays fresh
	DefaultRefreshInterval = 30 * time.Minute

	cacheSource = "open-meteo"
)

// Options configures a Compositor
type Options struct {
	Timeout         time.Duration
	RefreshInterval time.Duration
	LapseRate       float64
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = DefaultRefreshInterval
	}
	if o.LapseRate <= 0 {
		o.LapseRate = DefaultLapseRate
	}
	return o
}

// Compositor fetches, adjusts and caches forecasts. Fetch failures are
// reported on the returned WeatherData and never as errors.
type Compositor struct {
	fetcher     Fetcher
	store       cache.Store
	opts        Options
	generations *generation.Keyed[*WeatherData]
	now         func() time.Time
}

// NewCompositor creates a compositor. store may be nil to disable caching.
func NewCompositor(fetcher Fetcher, store cache.Store, opts Options) *Compositor {
	return &Compositor{
		fetcher:     fetcher,
		store:       store,
		opts:        opts.withDefaults(),
		generations: generation.NewKeyed[*WeatherData](),
		now:         time.Now,
	}
}

// CacheKey identifies a location in the cache. Coordinates are rounded to
// four decimals (about 11 m) and elevation to the foot.
func CacheKey(loc WeatherLocation) string {
	return fmt.Sprintf("weather:%.4f:%.4f:%.0f", loc.Lat, loc.Lng, loc.Elevation)
}

// Forecast returns the adjusted forecast for loc. Fresh cached data is served
// directly. Otherwise the provider is queried, and if that fails a cached
// forecast that is stale but not very stale is returned with Stale set.
func (c *Compositor) Forecast(ctx context.Context, loc WeatherLocation) *WeatherData {
	ctx = logging.EnsureLogger(ctx)
	key := CacheKey(loc)

	var cached WeatherData
	entry, found := c.lookup(ctx, key, &cached)
	if found && !entry.IsStale(c.now()) {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		cached.Location = loc
		return &cached
	}

	result := c.Refresh(ctx, key, loc)
	if result.Error == "" {
		if found {
			metrics.CacheLookups.WithLabelValues("stale").Inc()
		} else {
			metrics.CacheLookups.WithLabelValues("miss").Inc()
		}
		return result
	}

	if found && !entry.IsVeryStale(c.now()) {
		metrics.CacheLookups.WithLabelValues("stale").Inc()
		logging.Warnw(ctx, "Forecast: serving stale data after fetch failure",
			"key", key, "age", c.now().Sub(entry.CreatedAt).String(), "error", result.Error)
		cached.Location = loc
		cached.Error = result.Error
		cached.Stale = true
		return &cached
	}

	metrics.CacheLookups.WithLabelValues("miss").Inc()
	return result
}

// Refresh fetches and composes a new forecast for key under a fresh
// generation. The result is cached only if no later refresh for the same key
// was started while this one was in flight. A superseded refresh returns the
// newer refresh's result if that has already landed, and its own otherwise.
func (c *Compositor) Refresh(ctx context.Context, key string, loc WeatherLocation) *WeatherData {
	ctx = logging.EnsureLogger(ctx)

	tracker, gen := c.generations.Begin(key)
	defer c.generations.Done(key)

	result := c.fetch(ctx, loc)

	if !tracker.Apply(gen, result) {
		metrics.StaleResponses.WithLabelValues("weather").Inc()
		logging.Infow(ctx, "Forecast: discarded superseded response", "key", key, "generation", gen)
		if newer, ok := tracker.NewerThan(gen); ok {
			return newer
		}
		return result
	}

	if result.Error == "" && c.store != nil {
		if err := c.store.Set(ctx, key, result, c.opts.RefreshInterval, cacheSource); err != nil {
			logging.Errorw(ctx, "Forecast: failed to cache forecast", "key", key, "error", err)
		}
	}
	return result
}

func (c *Compositor) fetch(ctx context.Context, loc WeatherLocation) *WeatherData {
	fetchCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	start := time.Now()
	raw, err := c.fetcher.Fetch(fetchCtx, loc.Lat, loc.Lng)
	metrics.WeatherFetchDuration.Observe(time.Since(start).Seconds())

	if err == nil && raw == nil {
		err = errors.New("provider returned no forecast")
	}
	if err != nil {
		result := "error"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
			result = "timeout"
		}
		metrics.WeatherFetches.WithLabelValues(result).Inc()
		logging.Warnw(ctx, "Forecast: fetch failed", "lat", loc.Lat, "lng", loc.Lng, "result", result, "error", err)
		return &WeatherData{
			Location:  loc,
			FetchedAt: c.now(),
			Error:     errorMessage(result, c.opts.Timeout),
		}
	}

	metrics.WeatherFetches.WithLabelValues("ok").Inc()
	data := Compose(raw, loc, c.opts.LapseRate)
	data.FetchedAt = c.now()
	return data
}

func (c *Compositor) lookup(ctx context.Context, key string, into *WeatherData) (*cache.CacheEntry, bool) {
	if c.store == nil {
		return nil, false
	}
	entry, found, err := c.store.GetWithMetadata(ctx, key, into)
	if err != nil {
		logging.Warnw(ctx, "Forecast: cache lookup failed", "key", key, "error", err)
		return nil, false
	}
	return entry, found
}

func errorMessage(result string, timeout time.Duration) string {
	if result == "timeout" {
		return fmt.Sprintf("Weather service did not respond within %s. Try again shortly.", timeout)
	}
	return "Unable to load weather data. Try again shortly."
}
