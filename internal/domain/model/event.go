// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire form of a calendar date.
const DateLayout = "2006-01-02"

// Date is a calendar date (year-month-day) with no time-of-day component.
// The zero value means "absent". Internally normalized to midnight UTC so
// equality and ordering are plain day comparisons.
type Date struct {
	t time.Time
}

// NewDate builds a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf projects an instant onto its calendar date in the instant's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// TodayIn returns the current calendar date in the given location.
func TodayIn(loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(time.Now().In(loc))
}

// ParseDate parses a "2006-01-02" string. Anything else is an error; callers
// are expected to exclude unparsable entries rather than fail aggregation.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// IsZero reports whether the date is absent.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Equal reports calendar-day equality.
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// Before reports whether d falls on an earlier day than o.
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// After reports whether d falls on a later day than o.
func (d Date) After(o Date) bool { return d.t.After(o.t) }

// AddDays returns the date n days later (n may be negative).
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// Year returns the calendar year.
func (d Date) Year() int { return d.t.Year() }

// Month returns the calendar month.
func (d Date) Month() time.Month { return d.t.Month() }

// Day returns the day of the month.
func (d Date) Day() int { return d.t.Day() }

// Time exposes the underlying midnight-UTC instant, mainly for formatting.
func (d Date) Time() time.Time { return d.t }

// String renders the date in wire form, or "" when absent.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// MarshalJSON encodes the date as a "2006-01-02" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a "2006-01-02" string; empty and null mean absent.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Category classifies an evaluation event.
type Category string

// Known categories. Feed records carrying other strings keep them verbatim
// as display text; only these six have fixed meaning.
const (
	CategoryQuiz      Category = "quiz"
	CategoryMidterm   Category = "midterm"
	CategoryLab       Category = "lab"
	CategoryDeadline  Category = "deadline"
	CategoryFinalExam Category = "final_exam"
	CategoryPersonal  Category = "personal"
)

// NormalizeCategory maps common spellings onto the known categories and
// returns unknown values unchanged (lowercased).
func NormalizeCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quiz", "quizzes":
		return CategoryQuiz
	case "midterm", "mid-term", "mid":
		return CategoryMidterm
	case "lab", "labs", "laboratory":
		return CategoryLab
	case "deadline", "due", "assignment":
		return CategoryDeadline
	case "final", "final_exam", "final exam", "finalexam", "exam":
		return CategoryFinalExam
	case "personal", "task", "todo":
		return CategoryPersonal
	default:
		return Category(strings.ToLower(strings.TrimSpace(s)))
	}
}

// Known reports whether the category is one of the fixed six.
func (c Category) Known() bool {
	switch c {
	case CategoryQuiz, CategoryMidterm, CategoryLab, CategoryDeadline, CategoryFinalExam, CategoryPersonal:
		return true
	default:
		return false
	}
}

// Origin distinguishes where an event came from.
type Origin string

const (
	// OriginOfficial marks events fetched from the remote store; immutable here.
	OriginOfficial Origin = "official"
	// OriginPersonal marks locally owned tasks; the only deletable events.
	OriginPersonal Origin = "personal"
)

// Event is the central entity: one evaluation event or personal task.
type Event struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Date      Date     `json:"date"`
	TimeRange string   `json:"time_range,omitempty"` // free text, e.g. "2 PM" or "All Day"
	Category  Category `json:"category"`
	Origin    Origin   `json:"origin"`
}

// Validate reports whether the event can participate in aggregation.
func (e Event) Validate() error {
	switch {
	case strings.TrimSpace(e.ID) == "":
		return errors.New("missing id")
	case strings.TrimSpace(e.Title) == "":
		return errors.New("missing title")
	case e.Date.IsZero():
		return errors.New("missing date")
	}
	return nil
}
