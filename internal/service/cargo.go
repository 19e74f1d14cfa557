package service

import "context"

// CargoService defines the interface for interacting with cargo.
type CargoService interface {
	// Publish uploads the crate in the configured manifest directory to
	// the registry, authenticating with the given token.
	Publish(ctx context.Context, token string) error
	// PackageID returns the package identifier of the crate, e.g.
	// "mypkg#1:2.3.4".
	PackageID(ctx context.Context) (string, error)
}
