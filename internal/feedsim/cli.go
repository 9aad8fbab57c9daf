package feedsim

import "os"

// ShowHelp prints usage information for the feed simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Sked Feed Simulator
===================

Serves a synthetic batch of academic evaluation events as both a JSON feed
and an iCalendar feed, for pointing a dashboard instance at during
development.

Usage:
  go run cmd/feedsim/main.go [options]

Options:
  -addr string
        Listen address (default ":9091")
  -feed string
        Feed identifier used in generated event IDs (default "sim")
  -events int
        Number of events to generate (default 40)
  -span int
        Number of days the events are spread across (default 60)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Endpoints:
  GET /events?since=YYYY-MM-DD   JSON feed
  GET /calendar.ics              iCalendar feed (includes one RRULE event)
  GET /healthz                   liveness probe

Examples:
  # Serve a default batch
  go run cmd/feedsim/main.go

  # A dense semester on a custom port
  go run cmd/feedsim/main.go -addr :8081 -events 120 -span 90
`)
}
