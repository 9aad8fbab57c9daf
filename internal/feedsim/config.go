package feedsim

// Config holds configuration for the synthetic feed server
type Config struct {
	Addr      string // Listen address
	FeedID    string // Identifier reported in generated event IDs
	NumEvents int    // Number of events to generate
	SpanDays  int    // Calendar span the events are spread across
	Verbose   bool   // Enable verbose logging
}

// wireEvent is the JSON shape served on /events.
type wireEvent struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Time     string `json:"time,omitempty"`
	Category string `json:"category,omitempty"`
}
