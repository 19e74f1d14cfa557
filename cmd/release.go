package cmd

import (
	"github.com/crateops/cargoship/internal/orchestrator"
	"github.com/spf13/cobra"
)

// NewReleaseCmd creates the release command
func NewReleaseCmd(orch *orchestrator.ReleaseOrchestrator) *cobra.Command {
	var (
		releaseDryRun            bool
		releaseCIOutput          bool
		releaseSkipPublish       bool
		releaseRetryPush         bool
		releaseSkipGithubRelease bool
	)
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Publish the crate and push its release tag",
		Long: `Publish the crate and push its release tag.

This command runs the release sequence:
- Publishes the crate to the registry
- Extracts the released version from the package identifier
- Creates the annotated v<version> tag
- Pushes the tag to the configured remote

The first failing step aborts the run. The exit code identifies the
step: 1 publish, 2 tag, 3 push, 4 version extraction.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := orchestrator.ReleaseConfig{
				DryRun:            releaseDryRun,
				CIOutput:          releaseCIOutput,
				SkipPublish:       releaseSkipPublish,
				RetryPush:         releaseRetryPush,
				SkipGithubRelease: releaseSkipGithubRelease,
			}
			return orch.Execute(cmd.Context(), cfg)
		},
	}

	cmd.Flags().BoolVar(&releaseDryRun, "dry-run", false, "Report what would happen without running any step")
	cmd.Flags().BoolVar(&releaseCIOutput, "ci-output", false, "Output in CI-friendly key=value format")
	cmd.Flags().BoolVar(&releaseSkipPublish, "skip-publish", false,
		"Skip the registry publish (for re-runs after a publish-side success)")
	cmd.Flags().BoolVar(&releaseRetryPush, "retry-push", false,
		"Retry the tag push with exponential backoff on failure")
	cmd.Flags().BoolVar(&releaseSkipGithubRelease, "skip-github-release", false,
		"Do not publish a GitHub release after the tag push")
	return cmd
}
