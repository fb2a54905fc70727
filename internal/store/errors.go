package store

import "errors"

// ErrCacheMiss is returned by Get when the key is absent or its TTL expired.
var ErrCacheMiss = errors.New("cache miss")
