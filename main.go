package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/crateops/cargoship/cmd"
	"github.com/crateops/cargoship/internal/orchestrator"
)

func main() {
	if err := cmd.InitCommands(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize commands: %v\n", err)
		os.Exit(orchestrator.ExitCodeSetup)
	}
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var stepErr *orchestrator.StepError
		if errors.As(err, &stepErr) {
			os.Exit(stepErr.ExitCode)
		}
		os.Exit(orchestrator.ExitCodeSetup)
	}
}
