package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/druarnfield/archie/internal/config"
	"github.com/druarnfield/archie/internal/exec"
	"github.com/druarnfield/archie/internal/logging"
	"github.com/druarnfield/archie/internal/platform"
	"github.com/druarnfield/archie/internal/prompt"
	"github.com/druarnfield/archie/internal/sequencer"
	"github.com/druarnfield/archie/internal/state"
	"github.com/druarnfield/archie/internal/steps"
	"github.com/druarnfield/archie/internal/ui"
	"github.com/spf13/cobra"
)

func newInstallCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install Arch Linux, resuming an aborted installation if there is one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, version)
		},
	}
}

func runInstall(cmd *cobra.Command, version string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	tty := interactive(cmd)

	cfg, err := loadConfig(out)
	if err != nil {
		return err
	}

	console := ui.NewConsole(out)
	console.SetExplain(flagExplain)

	logger, logErr := logging.SetupOrDiscard(cfg.Paths.Log, flagVerbose)
	if logErr != nil {
		console.Warn(fmt.Sprintf("Logging disabled: %v", logErr))
	}

	p := newPrompter(tty, cmd.InOrStdin(), out)
	runner := &exec.DefaultRunner{Logger: logger}
	deps := steps.Dependencies{
		Config: cfg,
		Exec:   runner,
		Prompt: p,
		UI:     console,
		Logger: logger,
		DetectFirmware: func() state.FirmwareMode {
			return platform.DetectFirmware(cfg.Paths.LiveRoot)
		},
	}
	catalogue := steps.Catalogue(deps)

	console.Welcome(version, catalogue.Len())
	ok, err := p.YesNo(ctx, "Do you want to continue?")
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	store := state.NewStore(cfg.Paths.State)
	s, err := sequencer.Resume(ctx, store, p, catalogue)
	if err != nil {
		if errors.Is(err, state.ErrCorrupt) {
			console.Failed(err)
			console.Notice("Run 'archie reset' to discard the saved state and start over.")
		}
		return err
	}
	if err := preflight(); err != nil {
		console.Failed(err)
		return err
	}
	if s.CurrentStep > 1 {
		console.Notice(fmt.Sprintf("Resuming at step %d/%d.", s.CurrentStep, s.TotalSteps))
	}
	logger.Info("installation started",
		slog.String("version", version),
		slog.Int("step", s.CurrentStep),
		slog.Int("total", s.TotalSteps),
	)

	seq := sequencer.New(catalogue, store, p, logger)
	seq.SetPreStepCallback(func(step *sequencer.Step, index, total int) {
		console.StepHeader(index, total, step.Name, step.Explain)
	})
	seq.SetCallback(func(step *sequencer.Step, index, total int, skipped bool, err error) {
		switch {
		case skipped:
			console.Skipped(step.Name)
		case err != nil:
			console.Failed(err)
		default:
			console.Done()
		}
	})

	if _, err := seq.Run(ctx, s); err != nil {
		console.Failure()
		var abort *sequencer.AbortError
		if errors.As(err, &abort) {
			console.Notice(fmt.Sprintf("Fix the problem and run archie again to continue from step %d.", abort.Index))
		}
		return err
	}

	console.Success()
	return restart(ctx, cfg, runner, console, cmd.InOrStdin(), tty)
}

// requiredTools are the live-medium commands the installation cannot do
// without.
var requiredTools = []string{"arch-chroot", "pacstrap", "genfstab", "reflector"}

// preflight fails when any of requiredTools is missing from PATH.
func preflight() error {
	var missing []string
	for _, name := range requiredTools {
		if !exec.CommandExists(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required commands: %s (run archie from the Arch Linux live medium)", strings.Join(missing, ", "))
	}
	return nil
}

func newPrompter(tty bool, in io.Reader, out io.Writer) prompt.Prompter {
	if tty && !flagPlain {
		return prompt.NewFormPrompter()
	}
	return prompt.NewLinePrompter(in, out)
}

// restart counts down, flushes filesystems and reboots into the new system.
func restart(ctx context.Context, cfg *config.Config, runner exec.Runner, console *ui.Console, in io.Reader, tty bool) error {
	if flagNoReboot || !cfg.Reboot.Enabled {
		console.Info("Reboot skipped. Restart the machine when you are ready.")
		return nil
	}

	countdown := &ui.Countdown{
		Seconds:     cfg.Reboot.Countdown,
		Out:         console.Writer(),
		In:          in,
		Interactive: tty,
	}
	if err := countdown.Run(ctx); err != nil {
		if errors.Is(err, ui.ErrCountdownCancelled) {
			console.Info("Reboot cancelled.")
			return nil
		}
		return err
	}

	if err := platform.Sync(); err != nil && !errors.Is(err, platform.ErrNotSupported) {
		return fmt.Errorf("syncing filesystems: %w", err)
	}
	return runner.Attach(ctx, "reboot")
}
