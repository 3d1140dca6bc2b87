package steps

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/druarnfield/archie/internal/fileedit"
	"github.com/druarnfield/archie/internal/state"
)

func (in *installer) networkManager(ctx context.Context, s state.State) (state.State, error) {
	return s, in.chroot(ctx, "systemctl", "enable", "NetworkManager")
}

func (in *installer) desktop(ctx context.Context, s state.State) (state.State, error) {
	args := append([]string{"pacman", "-Sy"}, in.Config.Packages.Desktop...)
	return s, in.chroot(ctx, args...)
}

func (in *installer) displayManager(ctx context.Context, s state.State) (state.State, error) {
	return s, in.chroot(ctx, "systemctl", "enable", "sddm")
}

// aurHelper builds and installs the AUR helper as the new user. Paths
// passed to arch-chroot are inside the target; host paths go through
// in.target.
func (in *installer) aurHelper(ctx context.Context, s state.State) (state.State, error) {
	user := s.Username
	repo := in.Config.AUR.HelperRepo
	home := "/home/" + user
	cloneDir := path.Join(home, strings.TrimSuffix(path.Base(repo), ".git"))
	script := path.Join(home, "makepkg.sh")

	// A previous attempt may have left the clone behind.
	if err := os.RemoveAll(in.target(cloneDir)); err != nil {
		return s, fmt.Errorf("removing old clone: %w", err)
	}

	if err := in.chrootAs(ctx, user, "git", "clone", repo, cloneDir); err != nil {
		return s, err
	}
	if err := fileedit.WriteFile(in.target(script), fmt.Sprintf("#!/bin/bash\ncd %s\nmakepkg -si", cloneDir)); err != nil {
		return s, err
	}
	if err := in.chrootAs(ctx, user, "sudo", "chmod", "+x", script); err != nil {
		return s, err
	}
	if err := in.chrootAs(ctx, user, script); err != nil {
		return s, err
	}
	if err := in.chroot(ctx, "rm", script); err != nil {
		return s, err
	}
	return s, in.chroot(ctx, "rm", "-r", cloneDir)
}
