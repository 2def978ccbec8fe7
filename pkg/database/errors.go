package database

import "errors"

// ErrStorageUnavailable marks failures caused by persistence being
// unconfigured or unreachable. Callers on the search path treat it as a soft
// condition.
var ErrStorageUnavailable = errors.New("storage unavailable")
