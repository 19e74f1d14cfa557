package cmd

import (
	"fmt"

	"github.com/crateops/cargoship/internal/domain"
	"github.com/crateops/cargoship/internal/repository"
	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command
func NewStatusCmd(stateRepo repository.StateRepository) *cobra.Command {
	var statusSessionID string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the recorded state of a release run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var state *domain.RunState
			var err error
			if statusSessionID != "" {
				state, err = stateRepo.Load(cmd.Context(), statusSessionID)
			} else {
				state, err = stateRepo.LoadLatest(cmd.Context())
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Session:\t%s\n", state.SessionID)
			fmt.Fprintf(out, "Status:\t%s\n", state.Status)
			if state.CrateName != "" {
				fmt.Fprintf(out, "Crate:\t%s\n", state.CrateName)
			}
			if state.TagName != "" {
				fmt.Fprintf(out, "Tag:\t%s\n", state.TagName)
			}
			if state.Error != "" {
				fmt.Fprintf(out, "Error:\t%s\n", state.Error)
			}
			for _, step := range state.Steps {
				fmt.Fprintf(out, "  %-16s %s\n", step.Type, step.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&statusSessionID, "session-id", "",
		"Session ID to show (uses latest if not specified)")
	return cmd
}
