package core

import (
	"testing"
	"time"
)

func TestResolvePeriod_tokens(t *testing.T) {
	now := time.Date(2021, time.June, 15, 14, 30, 45, 0, time.Local)
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	eod := EndOfDay(now)

	tests := []struct {
		name      string
		params    PeriodParams
		wantFrom  time.Time
		wantTo    time.Time
		wantLabel string
	}{
		{
			name:      "7d",
			params:    PeriodParams{Period: "7d"},
			wantFrom:  StartOfDay(now.AddDate(0, 0, -7)),
			wantTo:    eod,
			wantLabel: "Last 7 Days",
		},
		{
			name:      "1d singular",
			params:    PeriodParams{Period: "1d"},
			wantFrom:  StartOfDay(now.AddDate(0, 0, -1)),
			wantTo:    eod,
			wantLabel: "Last Day",
		},
		{
			name:      "1w singular",
			params:    PeriodParams{Period: "1w"},
			wantFrom:  StartOfDay(now.AddDate(0, 0, -7)),
			wantTo:    eod,
			wantLabel: "Last Week",
		},
		{
			name:      "3w plural",
			params:    PeriodParams{Period: "3w"},
			wantFrom:  StartOfDay(now.AddDate(0, 0, -21)),
			wantTo:    eod,
			wantLabel: "Last 3 Weeks",
		},
		{
			name:      "6m",
			params:    PeriodParams{Period: "6m"},
			wantFrom:  StartOfDay(now.AddDate(0, -6, 0)),
			wantTo:    eod,
			wantLabel: "Last 6 Months",
		},
		{
			name:      "2y",
			params:    PeriodParams{Period: "2y"},
			wantFrom:  StartOfDay(now.AddDate(-2, 0, 0)),
			wantTo:    eod,
			wantLabel: "Last 2 Years",
		},
		{
			name:      "token is case-insensitive and trimmed",
			params:    PeriodParams{Period: " YTD "},
			wantFrom:  time.Date(2021, time.January, 1, 0, 0, 0, 0, time.Local),
			wantTo:    eod,
			wantLabel: "Year to Date",
		},
		{
			name:      "all",
			params:    PeriodParams{Period: "all"},
			wantFrom:  time.Date(2000, time.January, 1, 0, 0, 0, 0, time.Local),
			wantTo:    eod,
			wantLabel: "All Time",
		},
		{
			name:      "explicit bounds",
			params:    PeriodParams{From: "2021-01-01", To: "2021-01-31"},
			wantFrom:  time.Date(2021, time.January, 1, 0, 0, 0, 0, time.Local),
			wantTo:    EndOfDay(time.Date(2021, time.January, 31, 0, 0, 0, 0, time.Local)),
			wantLabel: "Custom Range",
		},
		{
			name:      "token wins over explicit bounds",
			params:    PeriodParams{Period: "7d", From: "2021-01-01", To: "2021-01-31"},
			wantFrom:  StartOfDay(now.AddDate(0, 0, -7)),
			wantTo:    eod,
			wantLabel: "Last 7 Days",
		},
		{
			name:      "bad token falls back to explicit bounds",
			params:    PeriodParams{Period: "bogus", From: "2021-01-01", To: "2021-01-31"},
			wantFrom:  time.Date(2021, time.January, 1, 0, 0, 0, 0, time.Local),
			wantTo:    EndOfDay(time.Date(2021, time.January, 31, 0, 0, 0, 0, time.Local)),
			wantLabel: "Custom Range",
		},
		{
			name:      "zero count is not a valid token",
			params:    PeriodParams{Period: "0d"},
			wantFrom:  StartOfDay(now.AddDate(0, -1, 0)),
			wantTo:    eod,
			wantLabel: "Last Month",
		},
		{
			name:      "inverted explicit bounds are ignored",
			params:    PeriodParams{From: "2021-03-01", To: "2021-01-01"},
			wantFrom:  StartOfDay(now.AddDate(0, -1, 0)),
			wantTo:    eod,
			wantLabel: "Last Month",
		},
		{
			name:      "partial explicit bounds are ignored",
			params:    PeriodParams{From: "2021-01-01"},
			wantFrom:  StartOfDay(now.AddDate(0, -1, 0)),
			wantTo:    eod,
			wantLabel: "Last Month",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dr := ResolvePeriod(tt.params, "1m")
			if !dr.From.Equal(tt.wantFrom) {
				t.Errorf("From = %v; want %v", dr.From, tt.wantFrom)
			}
			if !dr.To.Equal(tt.wantTo) {
				t.Errorf("To = %v; want %v", dr.To, tt.wantTo)
			}
			if dr.Label != tt.wantLabel {
				t.Errorf("Label = %q; want %q", dr.Label, tt.wantLabel)
			}
			if dr.From.After(dr.To) {
				t.Errorf("inverted range: From %v > To %v", dr.From, dr.To)
			}
		})
	}
}

func TestResolvePeriod_defaultToken(t *testing.T) {
	now := time.Date(2021, time.June, 15, 14, 30, 45, 0, time.Local)
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	// unusable input falls back to resolving the default token
	got := ResolvePeriod(PeriodParams{Period: "bogus"}, "1m")
	want := ResolvePeriod(PeriodParams{Period: "1m"}, "")
	if got != want {
		t.Errorf("default token fallback: got %+v; want %+v", got, want)
	}

	// unusable default token ends in the hard fallback
	got = ResolvePeriod(PeriodParams{}, "bogus")
	if got.Label != "Last Month" {
		t.Errorf("hard fallback Label = %q; want %q", got.Label, "Last Month")
	}
	if wantFrom := StartOfDay(now.AddDate(0, -1, 0)); !got.From.Equal(wantFrom) {
		t.Errorf("hard fallback From = %v; want %v", got.From, wantFrom)
	}
	if wantTo := EndOfDay(now); !got.To.Equal(wantTo) {
		t.Errorf("hard fallback To = %v; want %v", got.To, wantTo)
	}
}

func TestResolvePeriod_idempotent(t *testing.T) {
	now := time.Date(2021, time.June, 15, 14, 30, 45, 0, time.Local)
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	params := PeriodParams{Period: "2w"}
	if first, second := ResolvePeriod(params, "1m"), ResolvePeriod(params, "1m"); first != second {
		t.Errorf("not idempotent: %+v != %+v", first, second)
	}
}

func TestDateRange_Contains(t *testing.T) {
	dr := DateRange{
		From: time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:   EndOfDay(time.Date(2021, time.January, 31, 0, 0, 0, 0, time.UTC)),
	}
	if !dr.Contains(dr.From) || !dr.Contains(dr.To) {
		t.Error("boundaries must be inclusive")
	}
	if dr.Contains(dr.From.Add(-time.Nanosecond)) {
		t.Error("must not contain instants before From")
	}
	if dr.Contains(dr.To.Add(time.Nanosecond)) {
		t.Error("must not contain instants after To")
	}
}
