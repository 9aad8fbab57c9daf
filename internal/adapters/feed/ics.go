package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/okian/sked/internal/domain/model"
	"github.com/okian/sked/pkg/logger"
	"github.com/okian/sked/pkg/metrics"
)

const (
	defaultHorizonDays = 90
	clockLayout        = "15:04"
)

// ICSSource reads official events from an iCalendar endpoint. Recurring
// entries (RRULE) are expanded into concrete dates inside a bounded horizon;
// EXDATE exceptions are honored.
type ICSSource struct {
	id          string
	url         string
	client      *http.Client
	horizonDays int
	log         logger.Logger
}

// NewICSSource creates an iCalendar feed client.
func NewICSSource(id, feedURL string, opts ...Option) *ICSSource {
	s := settings{
		timeout:     defaultFetchTimeout,
		horizonDays: defaultHorizonDays,
		log:         logger.Get().Named("feed"),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.client == nil {
		s.client = &http.Client{Timeout: s.timeout}
	}

	return &ICSSource{
		id:          id,
		url:         feedURL,
		client:      s.client,
		horizonDays: s.horizonDays,
		log:         s.log,
	}
}

// ID returns the configured feed identifier.
func (s *ICSSource) ID() string { return s.id }

// FetchUpcoming retrieves the calendar and projects VEVENTs dated on or
// after since onto civil dates. Entries that cannot be parsed are dropped
// individually.
func (s *ICSSource) FetchUpcoming(ctx context.Context, since model.Date) ([]model.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: feed %s: %v", ErrFetchFeed, s.id, err)
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: feed %s: %v", ErrFetchFeed, s.id, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: feed %s: unexpected status %s", ErrFetchFeed, s.id, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: feed %s: %v", ErrFetchFeed, s.id, err)
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: feed %s: %v", ErrDecodeFeed, s.id, err)
	}

	horizon := since.AddDays(s.horizonDays)
	events := make([]model.Event, 0, len(cal.Events()))

	for _, ve := range cal.Events() {
		evs, perr := s.expandVEvent(ve, since, horizon)
		if perr != nil {
			s.log.Debug(ctx, "dropping calendar entry",
				logger.String("feed", s.id),
				logger.Error(perr),
			)
			metrics.RecordFeedEventDropped()
			continue
		}
		events = append(events, evs...)
	}
	return events, nil
}

// expandVEvent converts one VEVENT into zero or more dated events inside
// [since, horizon). Recurring entries produce one event per occurrence with
// the occurrence date appended to the ID so instances stay distinct.
func (s *ICSSource) expandVEvent(ve *ical.VEvent, since, horizon model.Date) ([]model.Event, error) {
	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return nil, fmt.Errorf("missing UID")
	}
	uid := uidProp.Value

	title := ""
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		title = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return nil, fmt.Errorf("entry %s: no usable DTSTART: %v", uid, err)
	}

	category := model.CategoryDeadline
	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil && p.Value != "" {
		first := strings.SplitN(p.Value, ",", 2)[0]
		category = model.NormalizeCategory(first)
	}

	timeRange := s.timeRangeOf(ve, start)

	var raw string
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		raw = p.Value
	}

	if raw == "" {
		date := model.DateOf(start)
		if date.Before(since) || !date.Before(horizon) {
			return nil, nil
		}
		ev := model.Event{
			ID:        QualifyID(s.id, uid),
			Title:     title,
			Date:      date,
			TimeRange: timeRange,
			Category:  category,
			Origin:    model.OriginOfficial,
		}
		if verr := ev.Validate(); verr != nil {
			return nil, fmt.Errorf("entry %s: %v", uid, verr)
		}
		return []model.Event{ev}, nil
	}

	r, err := rrule.StrToRRule(raw)
	if err != nil {
		return nil, fmt.Errorf("entry %s: bad RRULE %q: %v", uid, raw, err)
	}
	r.DTStart(start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range s.exDates(ve) {
		set.ExDate(ex.In(start.Location()))
	}

	rangeStart := since.Time().In(start.Location())
	rangeEnd := horizon.Time().In(start.Location())
	occurrences := set.Between(rangeStart, rangeEnd, true)

	out := make([]model.Event, 0, len(occurrences))
	for _, occ := range occurrences {
		date := model.DateOf(occ)
		if date.Before(since) || !date.Before(horizon) {
			continue
		}
		ev := model.Event{
			ID:        QualifyID(s.id, uid) + "@" + date.String(),
			Title:     title,
			Date:      date,
			TimeRange: timeRange,
			Category:  category,
			Origin:    model.OriginOfficial,
		}
		if verr := ev.Validate(); verr != nil {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

// timeRangeOf formats the entry's clock range, or "All Day" for date-only
// DTSTART values.
func (s *ICSSource) timeRangeOf(ve *ical.VEvent, start time.Time) string {
	if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil {
		if !strings.Contains(p.Value, "T") {
			return "All Day"
		}
		if params := p.ICalParameters; params != nil {
			if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
				return "All Day"
			}
		}
	}

	if end, err := ve.GetEndAt(); err == nil && end.After(start) {
		return start.Format(clockLayout) + " - " + end.Format(clockLayout)
	}
	return start.Format(clockLayout)
}

// exDates collects EXDATE values; unparseable entries are skipped.
func (s *ICSSource) exDates(ve *ical.VEvent) []time.Time {
	var out []time.Time
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part); err == nil {
				out = append(out, t)
			}
		}
	}
	return out
}

// parseICSTime parses basic ICS date/date-time forms used by EXDATE.
func parseICSTime(v string) (time.Time, error) {
	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, time.Local)
	}
	return time.ParseInLocation("20060102", v, time.Local)
}
