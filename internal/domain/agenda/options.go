package agenda

import "time"

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithLookaheadDays sets the daily upcoming horizon in days from today.
func WithLookaheadDays(days int) Option {
	return func(c *Classifier) {
		if days > 1 {
			c.lookaheadDays = days
		}
	}
}

// WithWeekStart sets the week boundary convention.
func WithWeekStart(wd time.Weekday) Option {
	return func(c *Classifier) {
		if wd >= time.Sunday && wd <= time.Saturday {
			c.weekStart = wd
		}
	}
}

// WithWeeksAhead sets how many calendar weeks the weekly view scans,
// current week included.
func WithWeeksAhead(weeks int) Option {
	return func(c *Classifier) {
		if weeks > 0 {
			c.weeksAhead = weeks
		}
	}
}
