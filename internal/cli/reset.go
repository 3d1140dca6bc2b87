package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/druarnfield/archie/internal/state"
	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard the saved state so the next install starts from step 1",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, err := loadConfig(io.Discard)
			if err != nil {
				return err
			}
			store := state.NewStore(cfg.Paths.State)

			// A corrupt record is exactly what reset is for, so only a
			// missing one is reported.
			s, err := store.Load()
			if errors.Is(err, state.ErrNotFound) {
				fmt.Fprintln(out, "No installation in progress.")
				return nil
			}

			if !yes {
				question := fmt.Sprintf("Discard the saved installation at %s?", store.Path())
				if err == nil {
					question = fmt.Sprintf("Discard the saved installation at step %d/%d?", s.CurrentStep, s.TotalSteps)
				}
				p := newPrompter(interactive(cmd), cmd.InOrStdin(), out)
				ok, perr := p.YesNo(cmd.Context(), question)
				if perr != nil {
					return perr
				}
				if !ok {
					return nil
				}
			}

			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Saved state removed.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
