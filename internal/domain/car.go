package domain

import "strings"

type Car struct {
	ID          ID     `json:"id"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	PlateNumber string `json:"plate_number,omitempty"`
	Year        int    `json:"year,omitempty"`
	Gear        string `json:"gear,omitempty"`
	Fuel        string `json:"fuel,omitempty"`
	Color       string `json:"color,omitempty"`
	DailyRate   Amount `json:"daily_rate"`
	HourlyRate  Amount `json:"hourly_rate"`
	RateType    string `json:"rate_type,omitempty"`
}

// Label is the human readable car name shown on calendar bars.
func (c *Car) Label() string {
	if c == nil {
		return ""
	}
	label := strings.TrimSpace(strings.TrimSpace(c.Brand) + " " + strings.TrimSpace(c.Model))
	if plate := strings.TrimSpace(c.PlateNumber); plate != "" {
		if label == "" {
			return plate
		}
		label += " (" + plate + ")"
	}
	return label
}

// Identity is the normalized free-text identity used for color hashing and
// focus matching: lower-cased, single-spaced brand, model and plate.
func (c *Car) Identity() string {
	if c == nil {
		return ""
	}
	return NormalizeIdentity(c.Brand + " " + c.Model + " " + c.PlateNumber)
}

func NormalizeIdentity(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
