package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/sked/internal/domain/model"
	"github.com/okian/sked/pkg/logger"
	"github.com/okian/sked/pkg/metrics"
)

const defaultFetchTimeout = 15 * time.Second

// wireEvent is the JSON shape official feeds publish.
type wireEvent struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Time     string `json:"time,omitempty"`
	Category string `json:"category,omitempty"`
}

// JSONSource reads official events from an HTTP endpoint returning a JSON
// array of events. The since date is passed as a query parameter so the
// server can trim its response.
type JSONSource struct {
	id     string
	url    string
	client *http.Client
	log    logger.Logger
}

// NewJSONSource creates a JSON feed client.
func NewJSONSource(id, feedURL string, opts ...Option) *JSONSource {
	s := settings{
		timeout: defaultFetchTimeout,
		log:     logger.Get().Named("feed"),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.client == nil {
		s.client = &http.Client{Timeout: s.timeout}
	}

	return &JSONSource{
		id:     id,
		url:    feedURL,
		client: s.client,
		log:    s.log,
	}
}

// ID returns the configured feed identifier.
func (s *JSONSource) ID() string { return s.id }

// FetchUpcoming retrieves and decodes events dated on or after since.
// Events that fail validation are dropped individually rather than failing
// the whole fetch.
func (s *JSONSource) FetchUpcoming(ctx context.Context, since model.Date) ([]model.Event, error) {
	body, err := s.get(ctx, since)
	if err != nil {
		return nil, err
	}

	var wire []wireEvent
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: feed %s: %v", ErrDecodeFeed, s.id, err)
	}

	events := make([]model.Event, 0, len(wire))
	for _, w := range wire {
		ev, ok := s.toEvent(ctx, w, since)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (s *JSONSource) get(ctx context.Context, since model.Date) ([]byte, error) {
	u, err := url.Parse(s.url)
	if err != nil {
		return nil, fmt.Errorf("%w: feed %s: %v", ErrFetchFeed, s.id, err)
	}
	q := u.Query()
	q.Set("since", since.String())
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: feed %s: %v", ErrFetchFeed, s.id, err)
	}
	req.Header.Set("Accept", "application/json")

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
	return body, nil
}

// toEvent converts a wire event, dropping entries the dashboard cannot use.
func (s *JSONSource) toEvent(ctx context.Context, w wireEvent, since model.Date) (model.Event, bool) {
	date, err := model.ParseDate(w.Date)
	if err != nil {
		s.log.Debug(ctx, "dropping feed event with bad date",
			logger.String("feed", s.id),
			logger.String("event_id", w.ID),
			logger.String("date", w.Date),
		)
		metrics.RecordFeedEventDropped()
		return model.Event{}, false
	}
	if date.Before(since) {
		return model.Event{}, false
	}

	ev := model.Event{
		ID:        QualifyID(s.id, w.ID),
		Title:     w.Title,
		Date:      date,
		TimeRange: w.Time,
		Category:  model.NormalizeCategory(w.Category),
		Origin:    model.OriginOfficial,
	}
	if err := ev.Validate(); err != nil {
		s.log.Debug(ctx, "dropping invalid feed event",
			logger.String("feed", s.id),
			logger.String("event_id", w.ID),
			logger.Error(err),
		)
		metrics.RecordFeedEventDropped()
		return model.Event{}, false
	}
	return ev, true
}
