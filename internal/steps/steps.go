// Package steps defines the Arch Linux installation as a sequencer
// catalogue. Each step body asks the operator what it needs, runs external
// tools through an exec.Runner and edits files under the target root.
package steps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/druarnfield/archie/internal/config"
	"github.com/druarnfield/archie/internal/exec"
	"github.com/druarnfield/archie/internal/fileedit"
	"github.com/druarnfield/archie/internal/prompt"
	"github.com/druarnfield/archie/internal/state"
)

// Notifier receives informational lines printed from inside a step.
type Notifier interface {
	Info(msg string)
}

// Dependencies are the collaborators every step body may use.
type Dependencies struct {
	Config *config.Config
	Exec   exec.Runner
	Prompt prompt.Prompter
	UI     Notifier
	Logger *slog.Logger

	// DetectFirmware reports how the live system booted. Nil skips the hint.
	DetectFirmware func() state.FirmwareMode
}

type installer struct {
	Dependencies
}

func (in *installer) target(elem ...string) string {
	return filepath.Join(append([]string{in.Config.Paths.Target}, elem...)...)
}

func (in *installer) live(elem ...string) string {
	return filepath.Join(append([]string{in.Config.Paths.LiveRoot}, elem...)...)
}

func (in *installer) info(format string, args ...any) {
	if in.UI != nil {
		in.UI.Info(fmt.Sprintf(format, args...))
	}
}

// run starts an external tool attached to the terminal.
func (in *installer) run(ctx context.Context, name string, args ...string) error {
	return in.Exec.Attach(ctx, name, args...)
}

// chroot runs a command inside the target system as root.
func (in *installer) chroot(ctx context.Context, args ...string) error {
	return in.Exec.Attach(ctx, "arch-chroot", append([]string{in.Config.Paths.Target}, args...)...)
}

// chrootAs runs a command inside the target system as user.
func (in *installer) chrootAs(ctx context.Context, user string, args ...string) error {
	return in.Exec.Attach(ctx, "arch-chroot", append([]string{"-u", user, in.Config.Paths.Target}, args...)...)
}

// patch applies literal replacements to a file and logs the edit.
func (in *installer) patch(path string, repls ...fileedit.Replacement) error {
	if err := fileedit.Patch(path, repls...); err != nil {
		return err
	}
	in.Logger.Debug("file patched", slog.String("path", path), slog.Int("replacements", len(repls)))
	return nil
}

// askName asks until the operator gives a non-empty answer. Device, host
// and disk names are never blank.
func (in *installer) askName(ctx context.Context, question string) (string, error) {
	for {
		answer, err := in.Prompt.Text(ctx, question)
		if err != nil {
			return "", err
		}
		if answer = strings.TrimSpace(answer); answer != "" {
			return answer, nil
		}
	}
}

func dev(name string) string {
	return "/dev/" + name
}

const (
	cryptRoot = "cryptroot"
	cryptHome = "crypthome"
)

func mapper(name string) string {
	return "/dev/mapper/" + name
}

// rootDevice is the block device holding the root filesystem.
func rootDevice(s state.State) string {
	if s.EncryptVolumes {
		return mapper(cryptRoot)
	}
	return dev(s.Partitions.Root)
}

// homeDevice is the block device holding /home. Only valid with a home
// partition.
func homeDevice(s state.State) string {
	if s.EncryptVolumes {
		return mapper(cryptHome)
	}
	return dev(state.Value(s.Partitions.Home))
}

func isUEFI(s state.State) bool        { return s.UEFI() }
func hasUEFIPart(s state.State) bool   { return s.UEFI() && s.Partitions.UEFI != nil }
func hasBoot(s state.State) bool       { return s.Partitions.Boot != nil }
func hasHome(s state.State) bool       { return s.Partitions.Home != nil }
func isEncrypted(s state.State) bool   { return s.EncryptVolumes }
func encryptedSwap(s state.State) bool { return s.EncryptVolumes && s.Partitions.Swap != nil }

func rootRecorded(s state.State) error {
	if s.Partitions.Root == "" {
		return errors.New("no root partition recorded")
	}
	return nil
}

func uefiRecorded(s state.State) error {
	if s.Partitions.UEFI == nil {
		return errors.New("no UEFI partition recorded")
	}
	return nil
}

func userRecorded(s state.State) error {
	if s.Username == "" {
		return errors.New("no username recorded")
	}
	return nil
}

func crypttabNeeded(s state.State) bool {
	return s.EncryptVolumes && (s.Partitions.Swap != nil || s.Partitions.Home != nil)
}
