package repository

import "context"

// GitRepository defines the interface for Git operations.
type GitRepository interface {
	TagExists(ctx context.Context, tag string) (bool, error)
	CreateTag(ctx context.Context, tag, msg string) error
	PushTag(ctx context.Context, tag string) error
	HeadCommit(ctx context.Context) (string, error)
}
