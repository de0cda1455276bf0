// Package timegrid maps time-of-day ranges onto the vertical axis of a
// fixed-hour weekly calendar grid. All functions are pure; callers decide
// what to do with placements that fall outside the visible grid.
package timegrid

import (
	"fmt"
	"strconv"
	"strings"
)

const minutesPerHour = 60

// Grid describes the visible hour range and the pixel height of one hour.
type Grid struct {
	StartMinutes int
	EndMinutes   int
	HourHeight   float64
}

// Default returns the portal grid: 08:00 to 22:00, 60px per hour.
func Default() Grid {
	return Grid{StartMinutes: 8 * minutesPerHour, EndMinutes: 22 * minutesPerHour, HourHeight: 60}
}

// New builds a grid from whole display hours and a pixel hour height.
func New(startHour, endHour, hourHeight int) Grid {
	g := Grid{
		StartMinutes: startHour * minutesPerHour,
		EndMinutes:   endHour * minutesPerHour,
		HourHeight:   float64(hourHeight),
	}
	if g.HourHeight <= 0 {
		g.HourHeight = Default().HourHeight
	}
	if g.EndMinutes <= g.StartMinutes {
		d := Default()
		g.StartMinutes, g.EndMinutes = d.StartMinutes, d.EndMinutes
	}
	return g
}

// ParseClock converts an "HH:MM" string into minutes since midnight.
func ParseClock(clock string) (int, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock %q, expected HH:MM", clock)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", clock, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", clock, err)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("clock %q out of range", clock)
	}
	return hours*minutesPerHour + minutes, nil
}

// Offset returns the vertical pixel offset of a minute-of-day on the grid.
// Minutes before the first displayed hour yield a negative offset; the grid
// performs no bounds validation.
func (g Grid) Offset(minutes int) float64 {
	return float64(minutes-g.StartMinutes) / minutesPerHour * g.HourHeight
}

// Span returns the pixel height of a [start, end) minute range.
func (g Grid) Span(startMinutes, endMinutes int) float64 {
	return float64(endMinutes-startMinutes) / minutesPerHour * g.HourHeight
}

// Place computes top offset and height for an "HH:MM"–"HH:MM" range.
func (g Grid) Place(start, end string) (top, height float64, err error) {
	startMin, err := ParseClock(start)
	if err != nil {
		return 0, 0, err
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return 0, 0, err
	}
	if endMin < startMin {
		return 0, 0, fmt.Errorf("range %s-%s ends before it starts", start, end)
	}
	return g.Offset(startMin), g.Span(startMin, endMin), nil
}

// VisibleHours lists the whole hours the grid displays, first to last.
func (g Grid) VisibleHours() []int {
	hours := make([]int, 0, (g.EndMinutes-g.StartMinutes)/minutesPerHour+1)
	for m := g.StartMinutes; m <= g.EndMinutes; m += minutesPerHour {
		hours = append(hours, m/minutesPerHour)
	}
	return hours
}
