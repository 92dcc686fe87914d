package timezone

import (
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/charterquote/quoteengine/internal/models"
)

const dateLayout = "2006-01-02"

var aliases = map[string]string{
	// Eastern
	"ET":  "America/New_York",
	"EST": "America/New_York",
	"EDT": "America/New_York",
	// Central
	"CT":  "America/Chicago",
	"CST": "America/Chicago",
	"CDT": "America/Chicago",
	// Mountain
	"MT":  "America/Denver",
	"MST": "America/Denver",
	"MDT": "America/Denver",
	// Pacific
	"PT":  "America/Los_Angeles",
	"PST": "America/Los_Angeles",
	"PDT": "America/Los_Angeles",
	// Other US
	"AKT": "America/Anchorage",
	"HST": "Pacific/Honolulu",
}

var locations sync.Map

// LocationByName resolves an IANA name or a common US abbreviation. Unknown
// names resolve to UTC.
func LocationByName(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC
	}
	if iana, ok := aliases[strings.ToUpper(name)]; ok {
		name = iana
	}
	if strings.EqualFold(name, "UTC") || name == "Z" {
		return time.UTC
	}
	if loc, ok := locations.Load(name); ok {
		return loc.(*time.Location)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	locations.Store(name, loc)
	return loc
}

// ParseLocal parses a local ISO timestamp. Timestamps carrying an offset keep
// it; naive timestamps are interpreted in tzName.
func ParseLocal(iso string, tzName string) (time.Time, error) {
	iso = strings.TrimSpace(iso)

	withOffset := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04Z07:00",
		"2006-01-02T15:04:05-0700",
	}
	for _, layout := range withOffset {
		if t, err := time.Parse(layout, iso); err == nil {
			return t, nil
		}
	}

	loc := LocationByName(tzName)
	naive := []string{
		"2006-01-02T15:04:05.000",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		dateLayout,
	}
	for _, layout := range naive {
		if t, err := time.ParseInLocation(layout, iso, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &time.ParseError{
		Value:   iso,
		Message: ": unable to parse local timestamp",
	}
}

// DateOf returns the YYYY-MM-DD wall-clock date of a local timestamp.
func DateOf(iso string) (string, error) {
	t, err := ParseLocal(iso, "")
	if err != nil {
		return "", err
	}
	return t.Format(dateLayout), nil
}

// civilDay maps a timestamp to midnight UTC of its wall-clock date so that day
// differences are immune to DST transitions.
func civilDay(iso string) (time.Time, bool) {
	t, err := ParseLocal(iso, "")
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}

func dayDiff(fromISO, toISO string) int {
	start, ok1 := civilDay(fromISO)
	end, ok2 := civilDay(toISO)
	if !ok1 || !ok2 {
		return 0
	}
	return int(end.Sub(start).Hours() / 24)
}

// Overnights counts midnights between the local departure and return dates,
// floored at zero.
func Overnights(departISO, returnISO string) int {
	if returnISO == "" {
		return 0
	}
	return max(0, dayDiff(departISO, returnISO))
}

// CalendarDaysTouched counts local dates from departure through return
// (inclusive). It is at least 1.
func CalendarDaysTouched(departISO, returnISO string) int {
	if returnISO == "" {
		return 1
	}
	return max(1, dayDiff(departISO, returnISO)+1)
}

// DatesTouched lists the YYYY-MM-DD dates from departure through return.
func DatesTouched(departISO, returnISO string) []string {
	start, ok := civilDay(departISO)
	if !ok {
		return nil
	}
	end := start
	if returnISO != "" {
		if e, ok := civilDay(returnISO); ok && !e.Before(start) {
			end = e
		}
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(dateLayout))
	}
	return dates
}

// InRange reports whether date lies in [start, end]. All values are
// YYYY-MM-DD so lexical comparison is chronological.
func InRange(date, start, end string) bool {
	return date >= start && date <= end
}

// SameDate reports whether two local timestamps fall on the same wall date.
func SameDate(aISO, bISO string) bool {
	a, ok1 := civilDay(aISO)
	b, ok2 := civilDay(bISO)
	return ok1 && ok2 && a.Equal(b)
}

// ---------------------------------------------------------------------------
// Trip helpers
// ---------------------------------------------------------------------------

func returnISO(trip models.Trip) string {
	if trip.IsRoundTrip() {
		return trip.ReturnLocalISO
	}
	return ""
}

// TripOvernights is zero for one-way trips.
func TripOvernights(trip models.Trip) int {
	return Overnights(trip.DepartLocalISO, returnISO(trip))
}

func TripCalendarDays(trip models.Trip) int {
	return CalendarDaysTouched(trip.DepartLocalISO, returnISO(trip))
}

func TripDatesTouched(trip models.Trip) []string {
	return DatesTouched(trip.DepartLocalISO, returnISO(trip))
}

// Departure resolves the departure instant using the explicit departure
// timezone or, failing that, the origin airport's timezone.
func Departure(trip models.Trip) (time.Time, error) {
	tz := trip.DepartTimezone
	if tz == "" {
		tz = trip.From.TimezoneID
	}
	return ParseLocal(trip.DepartLocalISO, tz)
}
