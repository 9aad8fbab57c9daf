// Package feed provides clients for remote sources of official events.
//
// A source is identified by a short ID from configuration; every event it
// returns carries an ID qualified with that source ID so events from
// different feeds never collide.
package feed

import (
	"context"

	"github.com/okian/sked/internal/domain/model"
)

// Source fetches official events from one remote feed.
type Source interface {
	// ID returns the configured feed identifier, e.g. "sis".
	ID() string

	// FetchUpcoming retrieves events dated on or after since.
	FetchUpcoming(ctx context.Context, since model.Date) ([]model.Event, error)
}

// QualifyID namespaces a raw feed event ID under its feed.
func QualifyID(feedID, rawID string) string {
	return feedID + "/" + rawID
}
