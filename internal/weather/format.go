package weather

import (
	"fmt"
	"strconv"
	"strings"
)

// Messages holds the three display lines rendered for a Reading.
type Messages struct {
	Temperature string `json:"temperature"`
	Condition   string `json:"condition"`
	Location    string `json:"location"`
}

// Compose renders every message for r at the given local hour of day.
func Compose(r Reading, currentHour int) Messages {
	return Messages{
		Temperature: FormatTemperatureMessage(r.Temperature, r.Unit),
		Condition:   FormatConditionMessage(r.Condition),
		Location:    FormatLocationMessage(r.LocationName, currentHour),
	}
}

// FormatTemperatureMessage comments on a Celsius temperature. Other units are
// rendered as a bare "<t>°<unit>".
func FormatTemperatureMessage(temperature float64, unit Unit) string {
	t := formatNumber(temperature)
	if unit != UnitCelsius {
		return fmt.Sprintf("%s°%s", t, unit)
	}

	switch {
	case temperature < 0:
		return fmt.Sprintf("It's freezing at %s°C! Bundle up!", t)
	case temperature < 10:
		return fmt.Sprintf("It's quite cold at %s°C. Wear warm clothes.", t)
	case temperature < 20:
		return fmt.Sprintf("The temperature is %s°C. Comfortable for a light jacket.", t)
	case temperature < 30:
		return fmt.Sprintf("It's a pleasant %s°C. Enjoy the nice weather.", t)
	default:
		return fmt.Sprintf("It's hot at %s°C. Stay hydrated!", t)
	}
}

// conditionMessages is keyed by normalized condition text.
var conditionMessages = map[string]string{
	"sunny":         "It's a beautiful sunny day!",
	"partly cloudy": "Expect some clouds and sunshine.",
	"cloudy":        "It's a cloudy day.",
	"overcast":      "The sky is overcast.",
	"rain":          "Don't forget your umbrella! It's raining.",
	"thunderstorm":  "Thunderstorms are expected today.",
	"mist":          "It's misty outside.",
	"snow":          "Bundle up! It's snowing.",
	"fog":           "Be careful, there's fog outside.",
}

// FormatConditionMessage maps a condition description to an editorial sentence.
// Matching ignores case, surrounding space, and '-'/'_' separators. Unknown
// conditions are returned unchanged.
func FormatConditionMessage(condition string) string {
	if msg, ok := conditionMessages[normalizeCondition(condition)]; ok {
		return msg
	}
	return condition
}

func normalizeCondition(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// FormatLocationMessage labels a location with the time of day. Hours from 18
// through 5 count as night.
func FormatLocationMessage(locationName string, currentHour int) string {
	if IsNight(currentHour) {
		return locationName + " at Night"
	}
	return locationName + " During the Day"
}

// IsNight reports whether the hour of day falls in the [18, 6) night window.
func IsNight(hour int) bool {
	return hour >= 18 || hour < 6
}

func formatNumber(v float64) string {
	if v == 0 {
		v = 0 // -0 prints as "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
