package tuiapp

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/micutio/neospottr/internal"
)

// detailMarkdown describes neo as a markdown document, listing every close approach.
func detailMarkdown(neo *internal.NearEarthObject) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", neo.Name)
	if neo.IsHazardous {
		sb.WriteString("**Potentially hazardous asteroid**\n\n")
	} else {
		sb.WriteString("Not classified as potentially hazardous.\n\n")
	}

	sb.WriteString("| Property | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| ID | %s |\n", neo.ID)
	fmt.Fprintf(&sb, "| Estimated diameter | %.3f to %.3f km |\n", neo.Diameter.MinKm, neo.Diameter.MaxKm)
	fmt.Fprintf(&sb, "| Mean diameter | %.3f km |\n", neo.Diameter.MeanKm())
	fmt.Fprintf(&sb, "| Miss distance | %s km |\n", internal.FormatNumber(neo.MissDistanceKm()))
	fmt.Fprintf(&sb, "| Relative velocity | %s km/h |\n", internal.FormatNumber(neo.VelocityKmh()))
	if neo.DetailURL != "" {
		fmt.Fprintf(&sb, "| JPL small body database | %s |\n", neo.DetailURL)
	}

	sb.WriteString("\n## Close approaches\n\n")
	if len(neo.CloseApproaches) == 0 {
		sb.WriteString("No close approach data.\n")
		return sb.String()
	}

	sb.WriteString("| Date | Miss distance (km) | Velocity (km/h) | Orbiting body |\n|---|---|---|---|\n")
	for _, approach := range neo.CloseApproaches {
		date := approach.DateFull
		if date == "" {
			date = approach.Date
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
			date,
			internal.FormatNumber(approach.MissDistanceKm),
			internal.FormatNumber(approach.VelocityKmh),
			approach.OrbitingBody)
	}

	return sb.String()
}

// renderDetail renders the detail markdown for the terminal. If glamour fails the plain
// markdown is shown instead.
func renderDetail(neo *internal.NearEarthObject, width int, dark bool, logger *slog.Logger) string {
	markdown := detailMarkdown(neo)

	style := "light"
	if dark {
		style = "dark"
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		logger.Warn("creating markdown renderer failed", slog.Any("error", err))
		return markdown
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		logger.Warn("rendering detail failed", slog.Any("error", err))
		return markdown
	}

	return rendered
}
