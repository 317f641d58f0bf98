package internal

import (
	"errors"
	"fmt"
	"io"
	"log" //nolint:depguard // plain console lines, no structure needed
	"log/slog"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/gen2brain/beeep"
)

const (
	// appIconPath is the file path to the icon png for this application.
	appIconPath = "./assets/icon.png"
	// valueUnknown is shown for NaN readings.
	valueUnknown = "n/a"
)

// Notify prints status messages to the console and, if enabled, raises desktop notifications.
type Notify struct {
	Stdout  log.Logger
	desktop bool
	logger  *slog.Logger
}

func NewNotify(appName string, consoleOut io.Writer, desktop bool, logger *slog.Logger) *Notify {
	beeep.AppName = appName //nolint:reassign // This is the only way to set app name in beeep.
	if logger == nil {
		logger = slog.Default()
	}

	return &Notify{
		Stdout:  *log.New(consoleOut, "", 0),
		desktop: desktop,
		logger:  logger,
	}
}

// Toast prints msg and shows it as a desktop notification when enabled.
func (notify *Notify) Toast(title, msg string) {
	notify.Stdout.Println(msg)
	if !notify.desktop {
		return
	}

	if err := beeep.Notify(title, msg, appIconPath); err != nil {
		notify.logger.Warn("desktop notification failed", slog.Any("error", err))
	}
}

// PrintList writes one line per object.
func (notify *Notify) PrintList(neos []NearEarthObject, window DateWindow) {
	notify.Stdout.Printf("=== %d asteroids, %d hazardous, %s ===\n", len(neos), CountHazardous(neos), window)
	for i := range neos {
		notify.Stdout.Println(NeoToString(&neos[i]))
	}
}

// PrintComparison writes the comparison summary.
func (notify *Notify) PrintComparison(cmp *Comparison) {
	notify.Stdout.Println("=== Comparison ===")
	notify.Stdout.Printf("Total Selected:   %d\n", len(cmp.Neos))
	notify.Stdout.Printf("Hazardous:        %d (safe: %d)\n", cmp.HazardousCount, cmp.SafeCount)
	notify.Stdout.Printf("Average Diameter: %.3f km\n", cmp.MeanDiameterKm)
	notify.Stdout.Printf("Closest Distance: %s km\n", FormatThousands(cmp.ClosestDistanceKm))
	notify.Stdout.Printf("Fastest:          %s km/h\n", FormatNumber(cmp.FastestKmh))
	notify.Stdout.Println("Closest first:")
	for i := range cmp.ByDistance {
		notify.Stdout.Printf("%4d. %s\n", i+1, NeoToString(&cmp.ByDistance[i]))
	}
	notify.Stdout.Println("Fastest first:")
	for i := range cmp.ByVelocity {
		notify.Stdout.Printf("%4d. %s\n", i+1, NeoToString(&cmp.ByVelocity[i]))
	}
	notify.Stdout.Println("=== End Comparison ===")
}

// NeoToString generates a one-liner consisting of the most relevant information about the
// given object.
func NeoToString(neo *NearEarthObject) string {
	date := valueUnknown
	if approach, ok := neo.FirstApproach(); ok {
		date = approach.Date
	}

	return fmt.Sprintf("%s %-28s DST %s km SPD %s km/h DIA %.3f km %s",
		date,
		neo.Name,
		FormatNumber(neo.MissDistanceKm()),
		FormatNumber(neo.VelocityKmh()),
		neo.Diameter.MeanKm(),
		HazardLabel(neo.IsHazardous))
}

// HazardLabel renders the hazard flag.
func HazardLabel(hazardous bool) string {
	if hazardous {
		return "Hazardous"
	}

	return "Safe"
}

// FormatNumber renders value with thousands separators and at most two decimals.
func FormatNumber(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return valueUnknown
	}

	return humanize.CommafWithDigits(value, 2) //nolint: mnd // two decimals
}

// FormatThousands renders a distance in thousands of km, e.g. "1,234.5k".
func FormatThousands(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return valueUnknown
	}

	return FormatNumber(value/1000) + "k" //nolint: mnd // thousands
}

// Status messages shared by both front ends.

func LoadedMessage(res LoadResult, initial bool) string {
	if initial {
		return fmt.Sprintf("Loaded %d asteroids for %s", res.Stats.Added, res.Window)
	}

	return fmt.Sprintf("Successfully loaded %d more asteroids!", res.Stats.Added)
}

func LoadFailedMessage(err error, initial bool) string {
	if errors.Is(err, ErrLoadInProgress) {
		return "Still loading, please wait."
	}
	if initial {
		return fmt.Sprintf("Failed to load asteroid data. Please check your NASA API key and try again. (%v)", err)
	}

	return fmt.Sprintf("Failed to load more asteroids. Please try again later. (%v)", err)
}

func SelectionMessage(ev SelectionEvent) string {
	if ev.Included {
		return fmt.Sprintf("%q added to comparison list", ev.Neo.Name)
	}

	return fmt.Sprintf("%q removed from comparison list", ev.Neo.Name)
}
