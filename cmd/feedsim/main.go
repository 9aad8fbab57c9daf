package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/sked/internal/feedsim"
	"github.com/okian/sked/pkg/logger"
)

// Default configuration constants.
const (
	defaultAddr     = ":9091"
	defaultFeedID   = "sim"
	defaultEvents   = 40
	defaultSpanDays = 60
)

func main() {
	var (
		addr    = flag.String("addr", defaultAddr, "Listen address")
		feedID  = flag.String("feed", defaultFeedID, "Feed identifier used in generated event IDs")
		events  = flag.Int("events", defaultEvents, "Number of events to generate")
		span    = flag.Int("span", defaultSpanDays, "Number of days the events are spread across")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		feedsim.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		return
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := feedsim.NewServer(ctx, &feedsim.Config{
		Addr:      *addr,
		FeedID:    *feedID,
		NumEvents: *events,
		SpanDays:  *span,
		Verbose:   *verbose,
	})

	if err := srv.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Get().Error(ctx, "feed simulator failed", logger.Error(err))
	}
}
