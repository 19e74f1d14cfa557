package cmd

import (
	"github.com/crateops/cargoship/internal/config"
	"github.com/crateops/cargoship/internal/logger"
	"github.com/crateops/cargoship/internal/orchestrator"
	"github.com/crateops/cargoship/internal/repository"
	"github.com/crateops/cargoship/internal/service"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// container holds all the dependencies for the application.
type container struct {
	cfg *config.Config
	log *zap.Logger

	cargoSvc     service.CargoService
	gitRepo      repository.GitRepository
	ghRepo       repository.GithubRepository
	manifestRepo repository.ManifestRepository
	stateRepo    repository.StateRepository
}

// newContainer creates a new container with all the dependencies.
func newContainer() (*container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New()
	if err != nil {
		return nil, err
	}

	fs := repository.FileSystemRepository(afero.NewOsFs())
	gitRepo, err := repository.NewGitRepository(repository.GitOptions{
		RemoteName:  cfg.RemoteName,
		RemoteToken: cfg.RemoteToken,
		TaggerName:  cfg.TaggerName,
		TaggerEmail: cfg.TaggerEmail,
	})
	if err != nil {
		return nil, err
	}

	// GitHub release publication is optional - only wire the client when
	// a repository slug is configured. Without a token the noop client
	// records why the release step could not run.
	var ghRepo repository.GithubRepository
	if cfg.GithubOwner != "" && cfg.GithubRepo != "" {
		if cfg.RemoteToken != "" {
			ghRepo, err = repository.NewGithubRepository(cfg.RemoteToken, cfg.GithubOwner, cfg.GithubRepo)
			if err != nil {
				return nil, err
			}
		} else {
			ghRepo = repository.NewGithubNoopRepository(cfg.GithubOwner, cfg.GithubRepo)
		}
	}

	return &container{
		cfg:          cfg,
		log:          log,
		cargoSvc:     service.NewCargoService(cfg.ManifestDir),
		gitRepo:      gitRepo,
		ghRepo:       ghRepo,
		manifestRepo: repository.NewManifestRepository(fs),
		stateRepo:    repository.NewJSONStateRepository(fs, ".cargoship-state"),
	}, nil
}

// InitCommands initializes all commands with their dependencies
func InitCommands() error {
	c, err := newContainer()
	if err != nil {
		return err
	}

	orch := orchestrator.NewReleaseOrchestrator(
		c.cfg,
		c.cargoSvc,
		c.gitRepo,
		c.ghRepo,
		c.manifestRepo,
		c.stateRepo,
		c.log,
	)
	rootCmd.AddCommand(NewReleaseCmd(orch))
	rootCmd.AddCommand(NewStatusCmd(c.stateRepo))
	rootCmd.AddCommand(newVersionCmd())
	return nil
}
