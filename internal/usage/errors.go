package usage

import "errors"

// ErrLimitReached indicates the org exceeded its extraction quota.
var ErrLimitReached = errors.New("limit reached")
