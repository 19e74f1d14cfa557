package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// GitOptions carries the settings a gitRepository needs. Credentials are
// passed in explicitly instead of being read from the environment so
// tests and callers stay in control of them.
type GitOptions struct {
	RemoteName  string
	RemoteToken string
	TaggerName  string
	TaggerEmail string
}

// gitRepository is the implementation of the GitRepository interface.
type gitRepository struct {
	repo *git.Repository
	opts GitOptions
}

// NewGitRepository opens the repository in the current directory.
func NewGitRepository(opts GitOptions) (GitRepository, error) {
	repo, err := git.PlainOpen(".")
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}
	return newGitRepository(repo, opts), nil
}

// NewGitRepositoryAt opens the repository at the given path.
func NewGitRepositoryAt(path string, opts GitOptions) (GitRepository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %s: %w", path, err)
	}
	return newGitRepository(repo, opts), nil
}

func newGitRepository(repo *git.Repository, opts GitOptions) *gitRepository {
	if opts.RemoteName == "" {
		opts.RemoteName = "origin"
	}
	return &gitRepository{repo: repo, opts: opts}
}

// TagExists checks if a tag exists.
func (r *gitRepository) TagExists(_ context.Context, tag string) (bool, error) {
	_, err := r.repo.Tag(tag)
	if err == git.ErrTagNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check tag %s: %w", tag, err)
	}
	return true, nil
}

// CreateTag creates a new annotated tag at HEAD.
func (r *gitRepository) CreateTag(_ context.Context, tag, msg string) error {
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("failed to get HEAD: %w", err)
	}
	_, err = r.repo.CreateTag(tag, head.Hash(), &git.CreateTagOptions{
		Message: msg,
		Tagger: &object.Signature{
			Name:  r.opts.TaggerName,
			Email: r.opts.TaggerEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create tag %s: %w", tag, err)
	}
	return nil
}

// getAuth returns authentication for the configured remote token.
func (r *gitRepository) getAuth() *http.BasicAuth {
	if r.opts.RemoteToken == "" {
		return nil
	}
	// Use x-access-token as username for token authentication
	return &http.BasicAuth{
		Username: "x-access-token",
		Password: r.opts.RemoteToken,
	}
}

// PushTag pushes a tag to the remote.
func (r *gitRepository) PushTag(ctx context.Context, tag string) error {
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: r.opts.RemoteName,
		RefSpecs:   []gitconfig.RefSpec{gitconfig.RefSpec(fmt.Sprintf("refs/tags/%s:refs/tags/%s", tag, tag))},
		Auth:       r.getAuth(),
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("failed to push tag %s to %s: %w", tag, r.opts.RemoteName, err)
	}
	return nil
}

// HeadCommit returns the SHA of the current HEAD commit.
func (r *gitRepository) HeadCommit(_ context.Context) (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	return head.Hash().String(), nil
}
