// Package agenda implements the event aggregation and classification engine:
// pure operations that take a merged event collection and a reference date
// and produce the day/week/month buckets the presentation layer renders.
package agenda

import (
	"sort"
	"strings"
	"time"

	"github.com/okian/sked/internal/domain/model"
)

// Default classification parameters.
const (
	defaultLookaheadDays = 14          // daily upcoming horizon
	defaultWeeksAhead    = 4           // weekly scan width, current week included
	defaultWeekStart     = time.Sunday // week boundary convention
)

// CurrentWeekLabel is the sentinel label for the week containing the
// reference date.
const CurrentWeekLabel = "THIS WEEK"

// weekLabelLayout formats the start date of non-current weeks.
const weekLabelLayout = "Jan 2"

// DailyView holds the three disjoint daily buckets. Slices are never nil.
type DailyView struct {
	Today    []model.Event
	Tomorrow []model.Event
	Upcoming []model.Event
}

// WeekGroup is one calendar week's worth of events.
type WeekGroup struct {
	Label  string
	Start  model.Date // inclusive
	End    model.Date // inclusive
	Events []model.Event
}

// MonthGroup is one calendar month's worth of events. Year is carried so
// same-named months a year apart never merge.
type MonthGroup struct {
	Label  string // month name, uppercased
	Year   int
	Month  time.Month
	Events []model.Event
}

// Classifier produces display buckets from a merged event collection.
// All operations are pure: they never mutate their input and calling them
// twice with the same arguments yields identical output.
type Classifier struct {
	lookaheadDays int
	weeksAhead    int
	weekStart     time.Weekday
}

// New creates a Classifier with configuration options.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		lookaheadDays: defaultLookaheadDays,
		weeksAhead:    defaultWeeksAhead,
		weekStart:     defaultWeekStart,
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// LookaheadDays exposes the configured daily horizon.
func (c *Classifier) LookaheadDays() int { return c.lookaheadDays }

// WeekStart exposes the configured week boundary convention.
func (c *Classifier) WeekStart() time.Weekday { return c.weekStart }

// WeeksAhead exposes the configured weekly scan width.
func (c *Classifier) WeeksAhead() int { return c.weeksAhead }

// Merge produces the single ordered collection fed to classification:
// official + personal concatenated (multiset union, no cross-origin
// dedupe), entries that fail validation excluded rather than failing,
// stable-sorted ascending by date.
func Merge(official, personal []model.Event) []model.Event {
	merged := make([]model.Event, 0, len(official)+len(personal))
	for _, e := range official {
		if e.Validate() == nil {
			merged = append(merged, e)
		}
	}
	for _, e := range personal {
		if e.Validate() == nil {
			merged = append(merged, e)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.Before(merged[j].Date)
	})

	return merged
}

// Daily classifies events relative to today into the three daily buckets.
// Upcoming covers dates strictly after tomorrow and strictly before
// today+lookahead; events at or past the horizon are deliberately dropped.
func (c *Classifier) Daily(events []model.Event, today model.Date) DailyView {
	view := DailyView{
		Today:    []model.Event{},
		Tomorrow: []model.Event{},
		Upcoming: []model.Event{},
	}
	if today.IsZero() {
		return view
	}

	tomorrow := today.AddDays(1)
	horizon := today.AddDays(c.lookaheadDays)

	for _, e := range stableByDate(events) {
		switch {
		case e.Date.Equal(today):
			view.Today = append(view.Today, e)
		case e.Date.Equal(tomorrow):
			view.Tomorrow = append(view.Tomorrow, e)
		case e.Date.After(tomorrow) && e.Date.Before(horizon):
			view.Upcoming = append(view.Upcoming, e)
		}
	}

	return view
}

// Weekly groups events into up to WeeksAhead calendar weeks starting at the
// week containing today. Weeks with no events are omitted; events outside
// the scanned interval are dropped from this view.
func (c *Classifier) Weekly(events []model.Event, today model.Date) []WeekGroup {
	if today.IsZero() {
		return []WeekGroup{}
	}

	weeks := make([]WeekGroup, c.weeksAhead)
	start := c.weekStartOf(today)
	for i := range weeks {
		weekStart := start.AddDays(7 * i)
		label := CurrentWeekLabel
		if i > 0 {
			label = weekStart.Time().Format(weekLabelLayout)
		}
		weeks[i] = WeekGroup{
			Label:  label,
			Start:  weekStart,
			End:    weekStart.AddDays(6),
			Events: []model.Event{},
		}
	}

	scanEnd := start.AddDays(7*c.weeksAhead - 1)
	for _, e := range stableByDate(events) {
		if e.Date.Before(start) || e.Date.After(scanEnd) {
			continue
		}
		idx := daysBetween(start, e.Date) / 7
		weeks[idx].Events = append(weeks[idx].Events, e)
	}

	// Sparse-rendering policy: empty groups do not appear in output.
	out := make([]WeekGroup, 0, len(weeks))
	for _, w := range weeks {
		if len(w.Events) > 0 {
			out = append(out, w)
		}
	}
	return out
}

// Monthly groups ALL events by calendar month. Unlike Daily/Weekly this
// view is not filtered to future dates; it relies on upstream fetches being
// restricted to date >= today but never assumes it. Groups are ordered
// calendar-chronologically and keyed by year+month.
func (c *Classifier) Monthly(events []model.Event) []MonthGroup {
	type key struct {
		year  int
		month time.Month
	}

	byMonth := make(map[key]*MonthGroup)
	keys := make([]key, 0)
	for _, e := range stableByDate(events) {
		if e.Validate() != nil {
			continue
		}
		k := key{year: e.Date.Year(), month: e.Date.Month()}
		g, ok := byMonth[k]
		if !ok {
			g = &MonthGroup{
				Label: strings.ToUpper(k.month.String()),
				Year:  k.year,
				Month: k.month,
			}
			byMonth[k] = g
			keys = append(keys, k)
		}
		g.Events = append(g.Events, e)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	out := make([]MonthGroup, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byMonth[k])
	}
	return out
}

// weekStartOf steps back from d to the configured week start day.
func (c *Classifier) weekStartOf(d model.Date) model.Date {
	offset := (int(d.Weekday()) - int(c.weekStart) + 7) % 7
	return d.AddDays(-offset)
}

// daysBetween returns the day count from a to b; callers guarantee b >= a.
func daysBetween(a, b model.Date) int {
	return int(b.Time().Sub(a.Time()) / (24 * time.Hour))
}

// stableByDate returns a date-ordered copy, ties preserving input order.
// Classification sorts its own input so each operation stays correct even
// when handed an unmerged collection.
func stableByDate(events []model.Event) []model.Event {
	sorted := make([]model.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}
