package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dpup/trailhead/server/internal/dataset"
	"github.com/dpup/trailhead/server/internal/lib/export"
	"github.com/dpup/trailhead/server/internal/lib/itinerary"
	"github.com/dpup/trailhead/server/internal/lib/locate"
	"github.com/dpup/trailhead/server/internal/lib/matching"
	"github.com/dpup/trailhead/server/internal/lib/ranges"
	"github.com/dpup/trailhead/server/internal/lib/trail"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "validate":
		handleValidate()
	case "locate":
		handleLocate()
	case "range":
		handleRange()
	case "plan":
		handlePlan()
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func load(fs *flag.FlagSet) *dataset.TrailDataset {
	path := fs.String("data", "data/trail.json", "Path to the trail dataset")
	fs.Parse(os.Args[2:])

	ds, err := dataset.LoadFile(*path)
	if err != nil {
		log.Fatalf("Error loading %s: %v", *path, err)
	}
	return ds
}

func handleValidate() {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	ds := load(fs)

	summary := ds.Summary()
	fmt.Printf("Dataset is valid:\n")
	fmt.Printf("  Version: %s\n", summary.Version)
	fmt.Printf("  Trail length: %.1f miles\n", summary.TrailLength)
	fmt.Printf("  Approach start: mile %.1f\n", summary.ApproachStart)
	fmt.Printf("  Trail points: %d\n", summary.Points)
	fmt.Printf("  Shelters: %d\n", summary.Shelters)
	fmt.Printf("  Resupply points: %d\n", summary.Resupply)
	fmt.Printf("  Features: %d\n", summary.Features)
}

func handleLocate() {
	fs := flag.NewFlagSet("locate", flag.ExitOnError)
	lat := fs.Float64("lat", 0, "Latitude of the position")
	lng := fs.Float64("lng", 0, "Longitude of the position")
	ds := load(fs)

	if *lat == 0 && *lng == 0 {
		fmt.Println("Example usage:")
		fmt.Println("  trail-check locate --lat 34.6266 --lng -84.1939")
		fmt.Println("  (Springer Mountain summit)")
		os.Exit(1)
	}

	store := trail.NewStore(ds)
	locator := locate.NewLocator(store, matching.NewWaypointMatcher(ds.Waypoints))

	snap, err := locator.Snap(locate.Position{Lat: *lat, Lng: *lng})
	if err != nil {
		log.Fatalf("Error locating position: %v", err)
	}

	fmt.Printf("Position on trail:\n")
	fmt.Printf("  Fix: (%.6f, %.6f)\n", *lat, *lng)
	fmt.Printf("  Mile: %.1f (sobo %.1f)\n", snap.Mile, snap.SoboMile)
	fmt.Printf("  Elevation: %.0f ft\n", snap.Elevation)
	fmt.Printf("  Distance to trail: %.2f miles\n", snap.DistanceToTrail)
	if snap.Nearest != nil {
		fmt.Printf("  Nearest: %s (%.2f miles away)\n", snap.Nearest.Waypoint.Name, snap.Nearest.DistanceMiles)
	}
	if snap.Ahead != nil {
		fmt.Printf("  Ahead: %s at mile %.1f\n", snap.Ahead.Name, snap.Ahead.Mile)
	}
	if snap.Behind != nil {
		fmt.Printf("  Behind: %s at mile %.1f\n", snap.Behind.Name, snap.Behind.Mile)
	}
}

func handleRange() {
	fs := flag.NewFlagSet("range", flag.ExitOnError)
	start := fs.Float64("start", 0, "Start mile")
	end := fs.Float64("end", 0, "End mile")
	verbose := fs.Bool("verbose", false, "List every waypoint in the range")
	ds := load(fs)

	if *end <= *start {
		fmt.Println("Example usage:")
		fmt.Println("  trail-check range --start 0 --end 31.7")
		fmt.Println("  trail-check range --start 0 --end 31.7 --verbose")
		os.Exit(1)
	}

	store := trail.NewStore(ds)
	svc := ranges.NewService(ds)
	gain, loss := store.GainLoss(*start, *end)

	fmt.Printf("Miles %.1f to %.1f:\n", *start, *end)
	fmt.Printf("  Trail points: %d\n", len(store.RangeSlice(*start, *end)))
	fmt.Printf("  Elevation gain: %.0f ft\n", gain)
	fmt.Printf("  Elevation loss: %.0f ft\n", loss)
	fmt.Printf("  Shelters: %d\n", len(svc.SheltersInRange(*start, *end)))
	fmt.Printf("  Resupply points: %d\n", len(svc.ResupplyInRange(*start, *end)))
	fmt.Printf("  Features: %d\n", len(svc.FeaturesInRange(*start, *end)))

	if *verbose {
		for _, wp := range svc.WaypointsInRange(*start, *end) {
			fmt.Printf("    %6.1f  %-10s %s\n", wp.Mile, wp.Kind, wp.Name)
		}
	}
}

func handlePlan() {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	start := fs.Float64("start", 0, "Start mile")
	milesPerDay := fs.Float64("miles-per-day", 15, "Miles hiked each day")
	days := fs.Int("days", 7, "Number of days to plan")
	direction := fs.String("direction", "nobo", "nobo or sobo")
	kmlPath := fs.String("kml", "", "Write the itinerary as KML to this path")
	ds := load(fs)

	dir, err := itinerary.ParseDirection(*direction)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	store := trail.NewStore(ds)
	planner := itinerary.NewPlanner(ranges.NewService(ds), store)
	plans := planner.Generate(*start, *milesPerDay, *days, dir)

	for _, day := range plans {
		fmt.Printf("Day %d: mile %.1f to %.1f (%.1f miles)\n", day.Day, day.StartMile, day.EndMile, day.Miles())
		for _, s := range day.Shelters {
			fmt.Printf("  shelter   %6.1f  %s\n", s.Mile, s.Name)
		}
		for _, r := range day.Resupply {
			fmt.Printf("  resupply  %6.1f  %s\n", r.Mile, r.Name)
		}
	}

	summary := itinerary.Summarize(plans)
	fmt.Printf("\nTotal: %.1f miles, %d shelters, %d resupply points, %d features\n",
		summary.TotalMiles, summary.ShelterCount, summary.ResupplyCount, summary.FeatureCount)

	if *kmlPath != "" {
		f, err := os.Create(*kmlPath)
		if err != nil {
			log.Fatalf("Error creating %s: %v", *kmlPath, err)
		}
		defer f.Close()
		if err := export.PlanKML(f, "Itinerary", plans, store); err != nil {
			log.Fatalf("Error writing KML: %v", err)
		}
		fmt.Printf("Wrote %s\n", *kmlPath)
	}
}

func printUsage() {
	fmt.Println("Trail dataset tool")
	fmt.Println("")
	fmt.Println("Usage:")
	fmt.Println("  trail-check <command> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  validate   Load the dataset and print its summary")
	fmt.Println("  locate     Place a coordinate on the trail")
	fmt.Println("  range      Elevation and waypoints between two miles")
	fmt.Println("  plan       Generate a day-by-day itinerary")
	fmt.Println("  help       Show this help")
	fmt.Println("")
	fmt.Println("Every command accepts --data to choose the dataset file.")
}
