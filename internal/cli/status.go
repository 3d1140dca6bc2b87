package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/druarnfield/archie/internal/state"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newStatusCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the saved state of an aborted installation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(io.Discard)
			if err != nil {
				return err
			}
			s, err := state.NewStore(cfg.Paths.State).Load()
			if errors.Is(err, state.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "No installation in progress.")
				return nil
			}
			if err != nil {
				return err
			}
			return writeState(cmd.OutOrStdout(), s, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json or yaml")
	return cmd
}

func writeState(w io.Writer, s state.State, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		writeStateText(w, s)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

func writeStateText(w io.Writer, s state.State) {
	orNone := func(p *string) string {
		if p == nil {
			return "-"
		}
		return *p
	}
	user := s.Username
	if user == "" {
		user = "-"
	}
	encrypted := "no"
	if s.EncryptVolumes {
		encrypted = "yes"
	}

	fmt.Fprintf(w, "Next step:   %d/%d\n", s.CurrentStep, s.TotalSteps)
	fmt.Fprintf(w, "Firmware:    %s\n", s.FirmwareMode)
	fmt.Fprintf(w, "Encrypted:   %s\n", encrypted)
	fmt.Fprintf(w, "Root:        %s\n", orNone(&s.Partitions.Root))
	fmt.Fprintf(w, "Boot:        %s\n", orNone(s.Partitions.Boot))
	fmt.Fprintf(w, "UEFI:        %s\n", orNone(s.Partitions.UEFI))
	fmt.Fprintf(w, "Home:        %s\n", orNone(s.Partitions.Home))
	fmt.Fprintf(w, "Swap:        %s\n", orNone(s.Partitions.Swap))
	fmt.Fprintf(w, "Username:    %s\n", user)
}
