// Package temporal converts heterogeneous date/time text into the
// canonical local timestamp the backend requires for appointment start
// and end boundaries. Parsing is total: anything unrecognizable passes
// through unchanged and the server stays the final arbiter of validity.
package temporal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CanonicalLayout is the YYYY-MM-DDTHH:MM shape the backend expects.
const CanonicalLayout = "2006-01-02T15:04"

// localePattern matches the DD-MM-YYYY HH:MM AM|PM shape a host-site
// designer's custom picker emits.
var localePattern = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})\s+(\d{1,2}):(\d{2})\s*([AaPp][Mm])$`)

// genericLayouts are tried in order for anything neither canonical nor
// locale shaped.
var genericLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"02/01/2006 15:04",
	"2006-01-02",
}

// ToCanonicalLocal normalizes raw input to the canonical local shape.
// Already-canonical input (carrying the T separator) returns unchanged,
// which makes the function idempotent. Total failure passes the raw
// input through.
func ToCanonicalLocal(raw string) string {
	input := strings.TrimSpace(raw)
	if input == "" {
		return raw
	}
	if strings.Contains(input, "T") {
		return input
	}
	if m := localePattern.FindStringSubmatch(input); m != nil {
		return fromLocale(m)
	}
	for _, layout := range genericLayouts {
		if t, err := time.ParseInLocation(layout, input, time.Local); err == nil {
			return t.Format(CanonicalLayout)
		}
	}
	return raw
}

// AddDuration adds minutes to a canonical local timestamp and
// recomputes the canonical string. Unparseable input returns unchanged.
func AddDuration(canonical string, minutes int) string {
	t, err := time.ParseInLocation(CanonicalLayout, strings.TrimSpace(canonical), time.Local)
	if err != nil {
		return canonical
	}
	return t.Add(time.Duration(minutes) * time.Minute).Format(CanonicalLayout)
}

// fromLocale converts a matched DD-MM-YYYY HH:MM AM|PM structure,
// applying 12-to-24 hour rules: PM with hour < 12 adds 12, AM with
// hour 12 becomes 0.
func fromLocale(m []string) string {
	day, month, year := m[1], m[2], m[3]
	hour, _ := strconv.Atoi(m[4])
	minute := m[5]
	meridiem := strings.ToUpper(m[6])
	if meridiem == "PM" && hour < 12 {
		hour += 12
	}
	if meridiem == "AM" && hour == 12 {
		hour = 0
	}
	return fmt.Sprintf("%s-%s-%sT%02d:%s", year, month, day, hour, minute)
}
