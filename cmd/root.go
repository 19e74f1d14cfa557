package cmd

import (
	"github.com/crateops/cargoship/pkg/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cargoship",
	Short: "A CLI tool for publishing and tagging crate releases",
	Long: `cargoship runs the crate release sequence: publish to the registry,
extract the released version, create the annotated release tag and push
it to the remote. The exit code identifies the step that failed.`,
	Version:      version.Summary(),
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}
