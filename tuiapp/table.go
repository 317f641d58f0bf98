package tuiapp

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/micutio/neospottr/internal"
)

// Error types

var errColumnMismatch = errors.New("number of columns does not match number of format columns")

// Automated Table Formatting

type tableColumnSizingOption int

const (
	// fixed column width, regardless of table width.
	fixed tableColumnSizingOption = iota
	// relative column with, given as percentage of the total table width.
	relative
	// fill columns receive any remaining table space, evenly distributed.
	fill
)

// cellPadding is the horizontal padding the default table styles put around every cell.
const cellPadding = 2

type columnFormat struct {
	option tableColumnSizingOption
	value  float32
}

type tableFormat struct {
	columnSizes        []columnFormat
	fixedWidth         int     // fixedWidth is the total space taken up by all fixed-width columns.
	fillWidthCount     int     // fillWidthCount indicates how many columns have fill width.
	totalRelativeWidth float32 // how much width is taken by relative columns.
}

func newTableFormat(items ...columnFormat) tableFormat {
	var totalRelativeWidth float32
	fixedWidth := 0
	fillWidthCount := 0

	for _, item := range items {
		switch item.option {
		case relative:
			totalRelativeWidth += item.value
		case fixed:
			fixedWidth += int(item.value)
		case fill:
			fillWidthCount++
		}
	}

	return tableFormat{
		columnSizes:        items,
		fixedWidth:         fixedWidth,
		fillWidthCount:     fillWidthCount,
		totalRelativeWidth: totalRelativeWidth,
	}
}

// Integrated Formatted Table Type

type autoFormatTable struct {
	table  table.Model
	format tableFormat
}

// resize distributes newWidth over the columns according to the table format.
func (aft *autoFormatTable) resize(newWidth int) error {
	columns := aft.table.Columns()
	columnCount := len(columns)
	if columnCount != len(aft.format.columnSizes) {
		return fmt.Errorf(
			"table.resize: %w -> %d in table, %d in tableFormat",
			errColumnMismatch,
			columnCount,
			len(aft.format.columnSizes))
	}

	available := max(newWidth-cellPadding*columnCount, 0)
	totalRelativeWidth := int(float32(available) * aft.format.totalRelativeWidth)
	totalFillWidth := max(available-totalRelativeWidth-aft.format.fixedWidth, 0)
	fillPerColumn := 0
	if aft.format.fillWidthCount > 0 {
		fillPerColumn = totalFillWidth / aft.format.fillWidthCount
	}

	resized := make([]table.Column, columnCount)
	copy(resized, columns)
	for idx := range resized {
		format := aft.format.columnSizes[idx]
		switch format.option {
		case fixed:
			resized[idx].Width = int(format.value)
		case relative:
			resized[idx].Width = int(format.value * float32(available))
		case fill:
			resized[idx].Width = fillPerColumn
		}
	}

	aft.table.SetColumns(resized)
	aft.table.SetWidth(newWidth)

	return nil
}

func (aft *autoFormatTable) SetHeight(height int) {
	aft.table.SetHeight(height)
}

func newAsteroidTable(tableStyle table.Styles) autoFormatTable {
	selLen := 3
	dateLen := 10
	numLen := 14
	diaLen := 8
	hazardLen := 9
	initialTableHeight := 10
	format := newTableFormat(
		columnFormat{fixed, float32(selLen)},
		columnFormat{fixed, float32(dateLen)},
		columnFormat{fill, 0.0},
		columnFormat{fixed, float32(numLen)},
		columnFormat{fixed, float32(numLen)},
		columnFormat{fixed, float32(diaLen)},
		columnFormat{fixed, float32(hazardLen)},
	)

	asteroidTbl := table.New(
		table.WithColumns(
			[]table.Column{
				{Title: "SEL", Width: selLen},
				{Title: "DATE", Width: dateLen},
				{Title: "NAME", Width: 0},
				{Title: "DST km", Width: numLen},
				{Title: "SPD km/h", Width: numLen},
				{Title: "DIA km", Width: diaLen},
				{Title: "HAZARD", Width: hazardLen},
			},
		),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
		table.WithHeight(initialTableHeight),
		table.WithStyles(tableStyle),
	)

	return autoFormatTable{
		table:  asteroidTbl,
		format: format,
	}
}

func neoToRow(neo *internal.NearEarthObject, selected bool) table.Row {
	mark := ""
	if selected {
		mark = "[x]"
	}

	date := "n/a"
	if approach, ok := neo.FirstApproach(); ok {
		date = approach.Date
	}

	return table.Row{
		mark,
		date,
		neo.Name,
		internal.FormatNumber(neo.MissDistanceKm()),
		internal.FormatNumber(neo.VelocityKmh()),
		fmt.Sprintf("%.3f", neo.Diameter.MeanKm()),
		internal.HazardLabel(neo.IsHazardous),
	}
}
