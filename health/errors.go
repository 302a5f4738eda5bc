package health

import "errors"

var (
	// ErrCheckFailed wraps the cause of a failed tracked run.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout is reported when a checker overruns its timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	ErrCheckerNotFound = errors.New("health: checker not found")
)
