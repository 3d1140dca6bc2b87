package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/druarnfield/archie/internal/state"
	"github.com/druarnfield/archie/internal/steps"
	"github.com/spf13/cobra"
)

func newStepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List the installation steps",
		Long:  "List the installation steps in order. Steps that only run for some answers are marked, and the next step of a saved installation is highlighted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(io.Discard)
			if err != nil {
				return err
			}
			catalogue := steps.Catalogue(steps.Dependencies{Config: cfg})

			next := 0
			s, err := state.NewStore(cfg.Paths.State).Load()
			switch {
			case err == nil:
				next = s.CurrentStep
			case !errors.Is(err, state.ErrNotFound):
				fmt.Fprintf(cmd.ErrOrStderr(), "Ignoring saved state: %v\n", err)
			}

			w := cmd.OutOrStdout()
			for i, step := range catalogue {
				index := i + 1
				marker := "  "
				if index == next {
					marker = "> "
				}
				line := fmt.Sprintf("%s%2d. %s", marker, index, step.Name)
				if step.When != nil {
					line += " (conditional)"
				}
				fmt.Fprintln(w, line)
				if flagExplain {
					fmt.Fprintf(w, "        %s\n", step.Explain)
				}
			}
			return nil
		},
	}
}
