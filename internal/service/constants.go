package service

import "time"

// Timeout constants for service operations
const (
	// DefaultCargoTimeout is the timeout for cargo operations. Publishing
	// uploads the crate and waits for the registry, so it gets minutes,
	// not seconds.
	DefaultCargoTimeout = 5 * time.Minute
)
