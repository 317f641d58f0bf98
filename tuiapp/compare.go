package tuiapp

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/micutio/neospottr/internal"
)

const (
	maxLabelWidth = 24
	minBarWidth   = 10
	barBlock      = "█"
)

// renderComparison lays out the summary, one bar chart per measure and both rankings.
func renderComparison(cmp *internal.Comparison, width int) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(Color.Highlight)
	heading := lipgloss.NewStyle().Bold(true)

	names := make([]string, 0, len(cmp.Neos))
	hazardous := make([]bool, 0, len(cmp.Neos))
	for i := range cmp.Neos {
		names = append(names, cmp.Neos[i].Name)
		hazardous = append(hazardous, cmp.Neos[i].IsHazardous)
	}

	sections := []string{
		title.Render("Asteroid Comparison"),
		"",
		fmt.Sprintf("Total selected:   %d", len(cmp.Neos)),
		fmt.Sprintf("Hazardous:        %d", cmp.HazardousCount),
		fmt.Sprintf("Safe:             %d", cmp.SafeCount),
		fmt.Sprintf("Average diameter: %.3f km", cmp.MeanDiameterKm),
		fmt.Sprintf("Closest approach: %s km", internal.FormatThousands(cmp.ClosestDistanceKm)),
		fmt.Sprintf("Fastest:          %s km/h", internal.FormatNumber(cmp.FastestKmh)),
		"",
		heading.Render("Hazard distribution"),
		renderDistribution(cmp.HazardousCount, cmp.SafeCount, width),
	}

	for _, series := range []*internal.BarSeries{&cmp.Distances, &cmp.Velocities, &cmp.Diameters} {
		sections = append(sections,
			"",
			heading.Render(fmt.Sprintf("%s (%s)", series.Label, series.Unit)),
			renderBars(series, names, hazardous, width),
		)
	}

	sections = append(sections, "", heading.Render("Closest first"))
	for i := range cmp.ByDistance {
		sections = append(sections, fmt.Sprintf("%2d. %s  %s km",
			i+1, cmp.ByDistance[i].Name, internal.FormatNumber(cmp.ByDistance[i].MissDistanceKm())))
	}

	sections = append(sections, "", heading.Render("Fastest first"))
	for i := range cmp.ByVelocity {
		sections = append(sections, fmt.Sprintf("%2d. %s  %s km/h",
			i+1, cmp.ByVelocity[i].Name, internal.FormatNumber(cmp.ByVelocity[i].VelocityKmh())))
	}

	return strings.Join(sections, "\n")
}

// renderBars draws one horizontal bar per value, scaled to the series maximum.
func renderBars(series *internal.BarSeries, names []string, hazardous []bool, width int) string {
	labelWidth := 0
	for _, name := range names {
		labelWidth = max(labelWidth, min(lipgloss.Width(name), maxLabelWidth))
	}

	barWidth := max(width-labelWidth-20, minBarWidth) //nolint: mnd // room for the value column

	lines := make([]string, 0, len(series.Values))
	for i, value := range series.Values {
		name := ""
		if i < len(names) {
			name = truncate(names[i], maxLabelWidth)
		}

		color := Color.Green
		if i < len(hazardous) && hazardous[i] {
			color = Color.Red
		}

		filled := int(math.Round(series.Ratio(i) * float64(barWidth)))
		bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat(barBlock, filled)) +
			strings.Repeat(" ", barWidth-filled)

		lines = append(lines, fmt.Sprintf("%-*s %s %s", labelWidth, name, bar, internal.FormatNumber(value)))
	}

	return strings.Join(lines, "\n")
}

// renderDistribution draws a single bar split into hazardous and safe parts.
func renderDistribution(hazardousCount, safeCount, width int) string {
	total := hazardousCount + safeCount
	if total == 0 {
		return ""
	}

	barWidth := max(width-30, minBarWidth) //nolint: mnd // room for the legend
	red := int(math.Round(float64(hazardousCount) / float64(total) * float64(barWidth)))

	bar := lipgloss.NewStyle().Foreground(Color.Red).Render(strings.Repeat(barBlock, red)) +
		lipgloss.NewStyle().Foreground(Color.Green).Render(strings.Repeat(barBlock, barWidth-red))

	return fmt.Sprintf("%s  %d hazardous / %d safe", bar, hazardousCount, safeCount)
}

func truncate(value string, width int) string {
	runes := []rune(value)
	if len(runes) <= width {
		return value
	}

	return string(runes[:width-1]) + "…"
}
