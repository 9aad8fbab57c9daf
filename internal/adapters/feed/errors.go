package feed

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrFetchFeed  = errors.New("fetch feed failed")
	ErrDecodeFeed = errors.New("decode feed failed")
)
