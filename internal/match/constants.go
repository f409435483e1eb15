package match

import "time"

// Service defaults
const (
	// DefaultListLimit caps my-matches projections
	DefaultListLimit = 50

	// DefaultCacheSize is the read-projection cache capacity
	DefaultCacheSize = 1024

	// DefaultCacheTTL keeps read projections short-lived; every committed
	// write also invalidates the entry explicitly.
	DefaultCacheTTL = 5 * time.Second
)
