package core

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Reporting periods are selected with a short token (eg. "7d", "3m", "ytd") or a pair
// of explicit dates. ResolvePeriod turns either into a concrete, labeled date range
// that repositories use as a filter predicate.

var (
	nowFunc = time.Now // mockable

	periodTokenRegex = regexp.MustCompile(`^(\d+)([dwmy])$`)

	periodUnitNames = map[string]string{
		"d": "Day",
		"w": "Week",
		"m": "Month",
		"y": "Year",
	}

	// floor for the "all" token; nothing in the system predates it
	allTimeFloorYear = 2000
)

type (
	// DateRange is an inclusive [From, To] interval.
	// From is normalized to start-of-day and To to end-of-day; From <= To always holds.
	DateRange struct {
		From  time.Time `json:"from"`
		To    time.Time `json:"to"`
		Label string    `json:"label"`
	}

	// PeriodParams holds the raw, unvalidated period selection of a request.
	PeriodParams struct {
		Period string `json:"period" query:"period"`
		From   string `json:"from" query:"from"`
		To     string `json:"to" query:"to"`
	}
)

// Contains reports whether t falls within the range (boundaries included).
func (dr DateRange) Contains(t time.Time) bool {
	return !t.Before(dr.From) && !t.After(dr.To)
}

// ResolvePeriod resolves params into a DateRange, trying in order:
// a relative/named period token, explicit date bounds, the default token.
// Malformed input never errors; it falls through to the next strategy, and the
// terminal fallback (last 1 month ending now) guarantees a valid range.
func ResolvePeriod(params PeriodParams, defaultToken string) DateRange {
	now := nowFunc()

	if dr, ok := resolvePeriodToken(params.Period, now); ok {
		return dr
	}
	if dr, ok := resolveExplicitBounds(params.From, params.To); ok {
		return dr
	}
	if dr, ok := resolvePeriodToken(defaultToken, now); ok {
		return dr
	}
	return DateRange{
		From:  StartOfDay(now.AddDate(0, -1, 0)),
		To:    EndOfDay(now),
		Label: "Last Month",
	}
}

func resolvePeriodToken(token string, now time.Time) (DateRange, bool) {
	token = CleanString(token, true /* lower */)

	switch token {
	case "":
		return DateRange{}, false
	case "ytd":
		return DateRange{
			From:  time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()),
			To:    EndOfDay(now),
			Label: "Year to Date",
		}, true
	case "all":
		return DateRange{
			From:  time.Date(allTimeFloorYear, time.January, 1, 0, 0, 0, 0, now.Location()),
			To:    EndOfDay(now),
			Label: "All Time",
		}, true
	}

	match := periodTokenRegex.FindStringSubmatch(token)
	if match == nil {
		return DateRange{}, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil || n < 1 {
		return DateRange{}, false
	}

	var from time.Time
	switch unit := match[2]; unit {
	case "d":
		from = now.AddDate(0, 0, -n)
	case "w":
		from = now.AddDate(0, 0, -7*n)
	case "m":
		from = now.AddDate(0, -n, 0)
	case "y":
		from = now.AddDate(-n, 0, 0)
	}

	return DateRange{
		From:  StartOfDay(from),
		To:    EndOfDay(now),
		Label: periodLabel(n, match[2]),
	}, true
}

func resolveExplicitBounds(fromStr, toStr string) (DateRange, bool) {
	from, ok := parseDate(fromStr)
	if !ok {
		return DateRange{}, false
	}
	to, ok := parseDate(toStr)
	if !ok {
		return DateRange{}, false
	}
	dr := DateRange{From: StartOfDay(from), To: EndOfDay(to), Label: "Custom Range"}
	if dr.From.After(dr.To) { // inverted bounds are unusable
		return DateRange{}, false
	}
	return dr, true
}

func parseDate(s string) (time.Time, bool) {
	s = CleanString(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func periodLabel(n int, unit string) string {
	name := periodUnitNames[unit]
	if n == 1 {
		return fmt.Sprintf("Last %s", name)
	}
	return fmt.Sprintf("Last %d %ss", n, name)
}

// StartOfDay normalizes t to 00:00:00 on the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay normalizes t to 23:59:59.999999999 on the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
