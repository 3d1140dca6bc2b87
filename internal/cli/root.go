package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/druarnfield/archie/internal/config"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagState    string
	flagVerbose  bool
	flagExplain  bool
	flagPlain    bool
	flagNoReboot bool
)

func newRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archie",
		Short: "Resumable Arch Linux installer",
		Long: "archie installs Arch Linux step by step from the live medium. Progress is saved after " +
			"every step, so an interrupted installation continues where it stopped.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to archie.toml (default: next to the binary, then ~/.config/archie)")
	cmd.PersistentFlags().StringVar(&flagState, "state", "", "Path to the saved installation state")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Also write log records to stderr")
	cmd.PersistentFlags().BoolVar(&flagExplain, "explain", false, "Show explanations for each step")
	cmd.PersistentFlags().BoolVar(&flagPlain, "plain", false, "Ask questions on plain lines instead of forms")
	cmd.PersistentFlags().BoolVar(&flagNoReboot, "no-reboot", false, "Do not restart when the installation finishes")

	cmd.AddCommand(newVersionCmd(version))
	cmd.AddCommand(newInstallCmd(version))
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newStepsCmd())
	cmd.AddCommand(newResetCmd())

	return cmd
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print archie version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "archie", version)
		},
	}
}

func Execute(version string) error {
	return newRootCmd(version).ExecuteContext(context.Background())
}

// loadConfig reads the configuration file and applies the path flags. A
// missing default file means defaults, announced on notice; a missing file
// named with --config is an error.
func loadConfig(notice io.Writer) (*config.Config, error) {
	path := flagConfig
	if path == "" {
		path = config.ConfigFilePath()
	}

	cfg, err := config.LoadFromFile(path)
	switch {
	case err == nil:
		fmt.Fprintf(notice, "Config: %s\n", path)
	case errors.Is(err, os.ErrNotExist) && flagConfig == "":
		fmt.Fprintln(notice, "No config file found, using defaults.")
		fmt.Fprintf(notice, "Create %s to customize.\n", path)
		cfg = config.Defaults()
	default:
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if flagState != "" {
		cfg.Paths.State = flagState
	}
	return cfg, nil
}

// interactive reports whether the command reads from and writes to a
// terminal.
func interactive(cmd *cobra.Command) bool {
	in, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		return false
	}
	out, ok := cmd.OutOrStdout().(*os.File)
	return ok && isTerminal(in) && isTerminal(out)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
