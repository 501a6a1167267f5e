package calendar

import (
	"strings"

	"rentacar-calendar/internal/domain"
)

// DefaultPalette is used when the configuration does not provide one.
var DefaultPalette = []string{
	"#2563eb", "#16a34a", "#d97706", "#dc2626", "#7c3aed",
	"#db2777", "#0d9488", "#ea580c", "#4f46e5", "#65a30d",
}

// ColorIndex sums the character codes of the normalized identity modulo size.
// The same identity always lands on the same index.
func ColorIndex(identity string, size int) int {
	if size <= 0 {
		return 0
	}
	sum := 0
	for _, r := range domain.NormalizeIdentity(identity) {
		sum += int(r)
	}
	return sum % size
}

// ColorAssigner picks an event color per car. Explicit overrides keyed by
// car id win over the hashed palette slot.
type ColorAssigner struct {
	palette   []string
	overrides map[domain.ID]string
}

func NewColorAssigner(palette []string, overrides map[string]string) *ColorAssigner {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	c := &ColorAssigner{
		palette:   append([]string(nil), palette...),
		overrides: make(map[domain.ID]string, len(overrides)),
	}
	for id, color := range overrides {
		if color = strings.TrimSpace(color); color != "" {
			c.overrides[domain.ID(strings.TrimSpace(id))] = color
		}
	}
	return c
}

func (c *ColorAssigner) ColorFor(carID domain.ID, car *domain.Car) string {
	if color, ok := c.overrides[carID]; ok {
		return color
	}
	return c.palette[ColorIndex(carIdentity(carID, car), len(c.palette))]
}

func carIdentity(carID domain.ID, car *domain.Car) string {
	if id := car.Identity(); id != "" {
		return id
	}
	return "car " + string(carID)
}
