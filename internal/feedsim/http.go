package feedsim

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/okian/sked/pkg/logger"
)

// Timeouts for the simulator's HTTP server.
const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server serves one generated batch of events as both a JSON feed and an
// iCalendar feed, so a dashboard instance can be pointed at it directly.
type Server struct {
	cfg    *Config
	events []wireEvent
	log    logger.Logger
}

// NewServer generates the event batch and returns a ready server.
func NewServer(ctx context.Context, cfg *Config) *Server {
	return &Server{
		cfg:    cfg,
		events: generateEvents(ctx, cfg, time.Now().UTC()),
		log:    logger.Get().Named("feedsim"),
	}
}

// Routes returns the simulator's mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", s.handleEvents)
	mux.HandleFunc("/calendar.ics", s.handleCalendar)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "feed simulator listening",
			logger.String("addr", s.cfg.Addr),
			logger.Int("events", len(s.events)))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// handleEvents serves the JSON feed, honouring the since query parameter.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	since := r.URL.Query().Get("since")
	out := make([]wireEvent, 0, len(s.events))
	for _, ev := range s.events {
		// Dates are ISO formatted so a string compare is a date compare.
		if since != "" && ev.Date < since {
			continue
		}
		out = append(out, ev)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(out)
}

// handleCalendar serves the same batch as an iCalendar document, plus one
// weekly recurring event to exercise RRULE expansion on the consumer side.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	_, _ = w.Write([]byte(s.calendarDocument()))
}

func (s *Server) calendarDocument() string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//sked//feedsim//EN")

	for _, ev := range s.events {
		e := cal.AddEvent(ev.ID)
		e.SetSummary(ev.Title)
		e.SetDtStampTime(time.Now().UTC())
		e.SetProperty(ics.ComponentPropertyCategories, strings.ToUpper(ev.Category))
		setStart(e, ev)
	}

	// A weekly recurring lecture quiz, four occurrences from next Monday.
	weekly := cal.AddEvent("weekly-quiz@" + s.cfg.FeedID)
	weekly.SetSummary("Weekly Lecture Quiz")
	weekly.SetDtStampTime(time.Now().UTC())
	weekly.SetProperty(ics.ComponentPropertyCategories, "QUIZ")
	weekly.SetStartAt(nextMonday(time.Now().UTC()))
	weekly.SetProperty(ics.ComponentPropertyRrule, "FREQ=WEEKLY;COUNT=4")

	return cal.Serialize()
}

const icsDateLayout = "20060102"

// setStart writes DTSTART in either date or datetime form depending on
// whether the event carries a usable clock slot.
func setStart(e *ics.VEvent, ev wireEvent) {
	day, err := time.Parse(dateLayout, ev.Date)
	if err != nil {
		return
	}

	clock := strings.TrimSpace(strings.Split(ev.Time, "-")[0])
	t, err := time.Parse("15:04", clock)
	if err != nil || ev.Time == "All Day" {
		e.SetProperty(ics.ComponentPropertyDtStart, day.Format(icsDateLayout),
			&ics.KeyValues{Key: "VALUE", Value: []string{"DATE"}})
		return
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
	e.SetStartAt(start)
}

// nextMonday returns the first Monday strictly after t, at 10:00 UTC.
func nextMonday(t time.Time) time.Time {
	d := t.AddDate(0, 0, 1)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 10, 0, 0, 0, time.UTC)
}
