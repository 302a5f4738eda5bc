package resolve

import "errors"

// ErrEmptyQuery is returned when a query is empty after normalization.
var ErrEmptyQuery = errors.New("resolve: query is empty")
