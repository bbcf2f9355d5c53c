package domain

import "errors"

// ErrNoVariants is the only failure a caller can act on: the remaining
// degraded paths (missing assignments, unstarted timers, unknown observers)
// resolve silently inside the services.
var ErrNoVariants = errors.New("no candidate variants")
