package constants

import "time"

const (
	// Per-attempt timeout for a call to the metadata provider
	UpstreamTimeout = 10 * time.Second

	// Lifetime of an admin token
	AdminTokenTTL = 24 * time.Hour

	// Grace period for in-flight requests on shutdown
	ShutdownTimeout = 10 * time.Second
)
