package orchestrator

import (
	"context"
	"fmt"

	"github.com/crateops/cargoship/internal/config"
	"github.com/crateops/cargoship/internal/domain"
	"github.com/crateops/cargoship/internal/repository"
	"github.com/crateops/cargoship/internal/service"
	"go.uber.org/zap"
)

// ReleaseConfig contains configuration for the release workflow.
type ReleaseConfig struct {
	DryRun            bool
	CIOutput          bool
	SkipPublish       bool // For re-runs where the crate is already on the registry
	RetryPush         bool // Enable bounded retry for the tag push
	SkipGithubRelease bool
}

// ReleaseOrchestrator runs the publish, extract, tag and push sequence.
type ReleaseOrchestrator struct {
	cfg          *config.Config
	cargoSvc     service.CargoService
	gitRepo      repository.GitRepository
	githubRepo   repository.GithubRepository
	manifestRepo repository.ManifestRepository
	stateRepo    repository.StateRepository
	log          *zap.Logger
}

// NewReleaseOrchestrator creates a new release orchestrator.
func NewReleaseOrchestrator(
	cfg *config.Config,
	cargoSvc service.CargoService,
	gitRepo repository.GitRepository,
	githubRepo repository.GithubRepository,
	manifestRepo repository.ManifestRepository,
	stateRepo repository.StateRepository,
	log *zap.Logger,
) *ReleaseOrchestrator {
	return &ReleaseOrchestrator{
		cfg:          cfg,
		cargoSvc:     cargoSvc,
		gitRepo:      gitRepo,
		githubRepo:   githubRepo,
		manifestRepo: manifestRepo,
		stateRepo:    stateRepo,
		log:          log,
	}
}

// releaseContext holds shared state for a single run. The version is
// written once by the extract step and read-only afterwards.
type releaseContext struct {
	crate   *domain.Crate
	version *domain.Version
	tagName string
}

// Execute runs the complete release workflow.
func (o *ReleaseOrchestrator) Execute(ctx context.Context, cfg ReleaseConfig) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultStepTimeout*4)
	defer cancel()

	rctx := &releaseContext{}
	if err := o.preflight(ctx, cfg, rctx); err != nil {
		return err
	}

	if cfg.DryRun {
		o.printStatus(cfg.CIOutput, fmt.Sprintf(
			"Dry-run complete - would publish %s %s and push tag v%s (nothing executed).",
			rctx.crate.Name, rctx.crate.Version, rctx.crate.Version))
		return nil
	}

	release, err := o.stateRepo.AcquireRunLock(ctx)
	if err != nil {
		return fmt.Errorf("release already in progress: %w", err)
	}
	defer release()

	seq := NewSequencer(o.stateRepo, o.log)
	seq.State().CrateName = rctx.crate.Name
	o.addPublishStep(seq, cfg)
	o.addExtractStep(seq, cfg, rctx)
	o.addTagStep(seq, rctx)
	o.addPushStep(seq, cfg, rctx)

	if err := seq.Run(ctx); err != nil {
		return err
	}

	o.publishGithubRelease(ctx, cfg, seq, rctx)
	o.printStatus(cfg.CIOutput, fmt.Sprintf("Release %s of %s completed", rctx.tagName, rctx.crate.Name))
	return nil
}

// preflight validates everything that must hold before the first step
// runs. Failures here exit with the setup code, never with a step code.
func (o *ReleaseOrchestrator) preflight(_ context.Context, cfg ReleaseConfig, rctx *releaseContext) error {
	if !cfg.DryRun {
		if err := o.cfg.ValidateForRelease(); err != nil {
			return fmt.Errorf("configuration invalid: %w", err)
		}
	}
	crate, err := o.manifestRepo.ReadCrate(o.cfg.ManifestDir)
	if err != nil {
		return fmt.Errorf("failed to read crate manifest: %w", err)
	}
	if !crate.Publishable() {
		return fmt.Errorf("crate %s has publish disabled in its manifest", crate.Name)
	}
	rctx.crate = crate
	o.printCIOutput(cfg.CIOutput, "crate=%s\n", crate.Name)
	return nil
}

func (o *ReleaseOrchestrator) addPublishStep(seq *Sequencer, cfg ReleaseConfig) {
	seq.AddStep(Step{
		Name:     "Publish Crate",
		Type:     domain.StepTypePublish,
		ExitCode: ExitCodePublish,
		Execute: func(ctx context.Context) error {
			if cfg.SkipPublish {
				o.printStatus(cfg.CIOutput, "Skipping publish (already on registry)")
				return nil
			}
			if err := o.cargoSvc.Publish(ctx, o.cfg.RegistryToken); err != nil {
				return fmt.Errorf("publish failed: %w", err)
			}
			return nil
		},
	})
}

func (o *ReleaseOrchestrator) addExtractStep(seq *Sequencer, cfg ReleaseConfig, rctx *releaseContext) {
	seq.AddStep(Step{
		Name:     "Extract Version",
		Type:     domain.StepTypeExtract,
		ExitCode: ExitCodeBadIdentifier,
		Execute: func(ctx context.Context) error {
			id, err := o.cargoSvc.PackageID(ctx)
			if err != nil {
				return fmt.Errorf("failed to query package identifier: %w", err)
			}
			version, err := domain.ParsePackageID(id)
			if err != nil {
				return err
			}
			if err := ValidateVersion(version.String()); err != nil {
				return fmt.Errorf("invalid version: %w", err)
			}
			rctx.version = version
			rctx.tagName = version.TagName()
			if err := ValidateTagName(rctx.tagName); err != nil {
				return fmt.Errorf("invalid tag name: %w", err)
			}
			seq.State().Version = version.String()
			seq.State().TagName = rctx.tagName
			o.printCIOutput(cfg.CIOutput, "version=%s\n", version.String())
			o.printCIOutput(cfg.CIOutput, "tag=%s\n", rctx.tagName)
			return nil
		},
	})
}

func (o *ReleaseOrchestrator) addTagStep(seq *Sequencer, rctx *releaseContext) {
	seq.AddStep(Step{
		Name:     "Create Tag",
		Type:     domain.StepTypeTag,
		ExitCode: ExitCodeTag,
		Execute: func(ctx context.Context) error {
			exists, err := o.gitRepo.TagExists(ctx, rctx.tagName)
			if err != nil {
				return fmt.Errorf("failed to check tag: %w", err)
			}
			if exists {
				return fmt.Errorf("tag %s already exists", rctx.tagName)
			}
			msg := fmt.Sprintf("Release %s", rctx.tagName)
			if err := o.gitRepo.CreateTag(ctx, rctx.tagName, msg); err != nil {
				return err
			}
			return nil
		},
	})
}

func (o *ReleaseOrchestrator) addPushStep(seq *Sequencer, cfg ReleaseConfig, rctx *releaseContext) {
	seq.AddStep(Step{
		Name:      "Push Tag",
		Type:      domain.StepTypePush,
		ExitCode:  ExitCodePush,
		Retryable: cfg.RetryPush,
		Execute: func(ctx context.Context) error {
			return o.gitRepo.PushTag(ctx, rctx.tagName)
		},
	})
}

// publishGithubRelease publishes a GitHub release for the pushed tag.
// The tag is already on the remote at this point, so a failure here is
// logged but does not change the run's outcome.
func (o *ReleaseOrchestrator) publishGithubRelease(
	ctx context.Context,
	cfg ReleaseConfig,
	seq *Sequencer,
	rctx *releaseContext,
) {
	if o.githubRepo == nil || cfg.SkipGithubRelease {
		return
	}
	state := seq.State()
	state.AddStep(domain.StepTypeGithubRelease)
	state.MarkStepStarted(domain.StepTypeGithubRelease)
	rel := &domain.Release{
		CrateName: rctx.crate.Name,
		Version:   rctx.version,
		TagName:   rctx.tagName,
	}
	name := fmt.Sprintf("%s %s", rel.CrateName, rel.TagName)
	body := fmt.Sprintf("Published %s %s to the registry.", rel.CrateName, rel.Version.String())
	url, err := o.githubRepo.CreateRelease(ctx, rel.TagName, name, body)
	if err != nil {
		o.log.Warn("github release creation failed", zap.Error(err))
		state.Steps[len(state.Steps)-1].Status = domain.StepStatusFailed
		state.Steps[len(state.Steps)-1].Error = err.Error()
	} else {
		rel.ReleaseURL = url
		state.MarkStepCompleted(domain.StepTypeGithubRelease)
		o.printCIOutput(cfg.CIOutput, "release_url=%s\n", url)
	}
	if saveErr := o.stateRepo.Save(ctx, state); saveErr != nil {
		o.log.Warn("failed to save run state", zap.Error(saveErr))
	}
}

// printCIOutput prints output in CI format if enabled
func (o *ReleaseOrchestrator) printCIOutput(ciOutput bool, format string, args ...any) {
	if ciOutput {
		fmt.Printf(format, args...)
	}
}

// printStatus prints status messages when not in CI mode
func (o *ReleaseOrchestrator) printStatus(ciOutput bool, message string) {
	if !ciOutput {
		fmt.Println(message)
	}
}
