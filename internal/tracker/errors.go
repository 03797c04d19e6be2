package tracker

import "errors"

// ErrStoreUnhealthy aborts a run once mention inserts have failed more times
// than the configured threshold. Individual insert failures are contained at
// their node; this error means the sink itself looks down.
var ErrStoreUnhealthy = errors.New("tracker: mention store failing repeatedly")
