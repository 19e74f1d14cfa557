package orchestrator

import (
	"context"

	"github.com/crateops/cargoship/internal/domain"
	"github.com/stretchr/testify/mock"
)

// Mock for CargoService
type mockCargoService struct{ mock.Mock }

func (m *mockCargoService) Publish(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
func (m *mockCargoService) PackageID(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// Mock for GitRepository
type mockGitRepository struct{ mock.Mock }

func (m *mockGitRepository) TagExists(ctx context.Context, tag string) (bool, error) {
	args := m.Called(ctx, tag)
	return args.Bool(0), args.Error(1)
}
func (m *mockGitRepository) CreateTag(ctx context.Context, tag, msg string) error {
	args := m.Called(ctx, tag, msg)
	return args.Error(0)
}
func (m *mockGitRepository) PushTag(ctx context.Context, tag string) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}
func (m *mockGitRepository) HeadCommit(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// Mock for GithubRepository
type mockGithubRepository struct{ mock.Mock }

func (m *mockGithubRepository) CreateRelease(ctx context.Context, tag, name, body string) (string, error) {
	args := m.Called(ctx, tag, name, body)
	return args.String(0), args.Error(1)
}

// Mock for ManifestRepository
type mockManifestRepository struct{ mock.Mock }

func (m *mockManifestRepository) ReadCrate(manifestDir string) (*domain.Crate, error) {
	args := m.Called(manifestDir)
	if crate := args.Get(0); crate != nil {
		return crate.(*domain.Crate), args.Error(1)
	}
	return nil, args.Error(1)
}

// Mock for StateRepository
type mockStateRepository struct{ mock.Mock }

func (m *mockStateRepository) Save(ctx context.Context, state *domain.RunState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *mockStateRepository) Load(ctx context.Context, sessionID string) (*domain.RunState, error) {
	args := m.Called(ctx, sessionID)
	if state := args.Get(0); state != nil {
		return state.(*domain.RunState), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStateRepository) LoadLatest(ctx context.Context) (*domain.RunState, error) {
	args := m.Called(ctx)
	if state := args.Get(0); state != nil {
		return state.(*domain.RunState), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStateRepository) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *mockStateRepository) Exists(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *mockStateRepository) AcquireRunLock(ctx context.Context) (func(), error) {
	args := m.Called(ctx)
	if release := args.Get(0); release != nil {
		return release.(func()), args.Error(1)
	}
	return nil, args.Error(1)
}
