package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dpup/trailhead/server/internal/clients/weather"
	"github.com/dpup/trailhead/server/internal/dataset"
	"github.com/dpup/trailhead/server/internal/lib/forecast"
	"github.com/dpup/trailhead/server/internal/lib/timezone"
	"github.com/dpup/trailhead/server/internal/lib/trail"
)

func main() {
	var (
		dataPath  = flag.String("data", "data/trail.json", "Path to the trail dataset")
		mile      = flag.Float64("mile", 31.7, "Trail mile to forecast")
		name      = flag.String("name", "", "Location name for display")
		baseURL   = flag.String("base-url", weather.DefaultBaseURL, "Open-Meteo forecast endpoint")
		lapseRate = flag.Float64("lapse-rate", forecast.DefaultLapseRate, "Degrees F per 1000 ft")
		hours     = flag.Int("hours", 12, "Hourly entries to print")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		fmt.Printf("Trail Forecast Test Tool\n\n")
		fmt.Printf("Fetches an Open-Meteo forecast for a trail mile and applies the elevation adjustment.\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nExamples:\n")
		fmt.Printf("  %s -mile=0\n", os.Args[0])
		fmt.Printf("  %s -mile=31.7 -name=\"Neels Gap\" -hours=24\n", os.Args[0])
		return
	}

	ds, err := dataset.LoadFile(*dataPath)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", *dataPath, err)
	}
	store := trail.NewStore(ds)
	loc := forecast.LocationForMile(store, *mile, *name)

	var opts []weather.Option
	if tz, err := timezone.NewService(); err == nil {
		opts = append(opts, weather.WithTimezones(tz))
	}
	client := weather.NewClient(*baseURL, opts...)

	fmt.Printf("Trail Forecast Test\n")
	fmt.Printf("===================\n")
	fmt.Printf("Location: %s\n", loc.Name)
	fmt.Printf("Coordinates: %.6f, %.6f\n", loc.Lat, loc.Lng)
	fmt.Printf("Trail elevation: %.0f ft\n", loc.Elevation)
	fmt.Printf("\n")

	ctx, cancel := context.WithTimeout(context.Background(), forecast.DefaultTimeout)
	defer cancel()

	start := time.Now()
	raw, err := client.Fetch(ctx, loc.Lat, loc.Lng)
	if err != nil {
		log.Fatalf("Fetch failed: %v", err)
	}
	fmt.Printf("✅ Fetch successful in %v\n", time.Since(start).Round(time.Millisecond))

	data := forecast.Compose(raw, loc, *lapseRate)
	fmt.Printf("Timezone: %s\n", data.Timezone)
	fmt.Printf("Station elevation: %.0f ft\n", data.StationElevation)
	fmt.Printf("Elevation difference: %.0f ft\n", data.ElevationDifference)
	fmt.Printf("Temperature adjustment: %+.1f°F\n", data.TemperatureAdjustment)
	fmt.Printf("\n")

	if len(data.Hourly.Time) > 0 {
		fmt.Printf("Hourly:\n")
		for i := 0; i < len(data.Hourly.Time) && i < *hours; i++ {
			line := fmt.Sprintf("  %s", data.Hourly.Time[i])
			if i < len(data.Hourly.Temperature) {
				line += fmt.Sprintf("  %5.1f°F", data.Hourly.Temperature[i])
			}
			if i < len(data.Hourly.PrecipitationProbability) {
				line += fmt.Sprintf("  %3.0f%% precip", data.Hourly.PrecipitationProbability[i])
			}
			fmt.Println(line)
		}
		fmt.Printf("\n")
	}

	if len(data.Daily.Time) > 0 {
		fmt.Printf("Daily:\n")
		for i, day := range data.Daily.Time {
			if i >= len(data.Daily.TemperatureMax) || i >= len(data.Daily.TemperatureMin) {
				break
			}
			fmt.Printf("  %s  high %5.1f°F  low %5.1f°F\n", day, data.Daily.TemperatureMax[i], data.Daily.TemperatureMin[i])
		}
	}
}
