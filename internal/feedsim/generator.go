package feedsim

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/okian/sked/pkg/logger"
)

// Constants for random number generation.
const (
	categoryDivisor = 10
	dateLayout      = "2006-01-02"
)

// Constants for category weighting cases.
const (
	caseQuizA = iota
	caseQuizB
	caseQuizC
	caseDeadlineA
	caseDeadlineB
	caseDeadlineC
	caseLabA
	caseLabB
	caseMidterm
	caseFinal
)

var courseNames = []string{
	"Linear Algebra",
	"Operating Systems",
	"Databases",
	"Algorithms",
	"Computer Networks",
	"Probability",
	"Compilers",
	"Machine Learning",
}

var timeRanges = []string{
	"09:00 - 10:30",
	"10:00 - 11:00",
	"13:00 - 14:30",
	"14:00 - 16:00",
	"16:00 - 17:00",
	"All Day",
}

// randIntn returns a uniform random int in [0, n) using crypto/rand.
func randIntn(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generateEvents creates cfg.NumEvents synthetic evaluation events spread
// across cfg.SpanDays starting from now, sorted by date.
func generateEvents(ctx context.Context, cfg *Config, now time.Time) []wireEvent {
	logger.Get().Info(ctx, "generating feed events",
		logger.Int("numEvents", cfg.NumEvents),
		logger.Int("spanDays", cfg.SpanDays))

	events := make([]wireEvent, 0, cfg.NumEvents)
	for i := 0; i < cfg.NumEvents; i++ {
		events = append(events, generateSingleEvent(now, cfg.SpanDays))
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date < events[j].Date
	})
	return events
}

// generateSingleEvent creates one event on a random day within the span.
func generateSingleEvent(now time.Time, spanDays int) wireEvent {
	day := now.AddDate(0, 0, randIntn(spanDays))
	category, verb := pickCategory()
	course := courseNames[randIntn(len(courseNames))]

	timeRange := timeRanges[randIntn(len(timeRanges))]
	if category == "deadline" {
		// Deadlines read better without a slot.
		timeRange = "23:59"
	}

	return wireEvent{
		ID:       uuid.New().String(),
		Title:    fmt.Sprintf("%s %s", course, verb),
		Date:     day.Format(dateLayout),
		Time:     timeRange,
		Category: category,
	}
}

// pickCategory returns a category and a matching title suffix with a
// weighted distribution: quizzes and deadlines are common, midterms and
// finals are rare.
func pickCategory() (string, string) {
	switch randIntn(categoryDivisor) {
	case caseQuizA, caseQuizB, caseQuizC:
		return "quiz", fmt.Sprintf("Quiz %d", 1+randIntn(6))
	case caseDeadlineA, caseDeadlineB, caseDeadlineC:
		return "deadline", fmt.Sprintf("Assignment %d Due", 1+randIntn(8))
	case caseLabA, caseLabB:
		return "lab", fmt.Sprintf("Lab %d", 1+randIntn(10))
	case caseMidterm:
		return "midterm", "Midterm Exam"
	case caseFinal:
		return "final_exam", "Final Exam"
	default:
		return "quiz", "Pop Quiz"
	}
}
