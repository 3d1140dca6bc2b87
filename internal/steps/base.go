package steps

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/druarnfield/archie/internal/fileedit"
	"github.com/druarnfield/archie/internal/state"
)

var pacmanTweaks = []fileedit.Replacement{
	fileedit.R("#Color", "Color"),
	fileedit.R("#VerbosePkgLists", "VerbosePkgLists"),
	fileedit.R("#ParallelDownloads = 5", "ParallelDownloads = 5\nILoveCandy"),
}

var cpuVendors = []string{"amd", "intel"}

func (in *installer) mirrors(ctx context.Context, s state.State) (state.State, error) {
	country, err := in.askName(ctx, "Enter the name of your preferred country for mirrors. (For example: France,Germany,...): ")
	if err != nil {
		return s, err
	}
	m := in.Config.Mirrors
	return s, in.run(ctx, "reflector",
		"--latest", strconv.Itoa(m.Latest),
		"--country", country,
		"--protocol", m.Protocols,
		"--sort", m.Sort,
		"--save", in.live("etc", "pacman.d", "mirrorlist"),
	)
}

func (in *installer) livePacman(_ context.Context, s state.State) (state.State, error) {
	return s, in.patch(in.live("etc", "pacman.conf"), pacmanTweaks...)
}

func (in *installer) targetPacman(_ context.Context, s state.State) (state.State, error) {
	return s, in.patch(in.target("etc", "pacman.conf"), pacmanTweaks...)
}

func (in *installer) pacstrap(ctx context.Context, s state.State) (state.State, error) {
	vendor, err := in.Prompt.Choice(ctx, "What is your system's CPU brand?", cpuVendors)
	if err != nil {
		return s, err
	}

	args := []string{in.target()}
	args = append(args, in.Config.Packages.Base...)
	args = append(args, cpuVendors[vendor]+"-ucode")
	return s, in.run(ctx, "pacstrap", args...)
}

func (in *installer) fstab(ctx context.Context, s state.State) (state.State, error) {
	res, err := in.Exec.Run(ctx, "genfstab", "-U", in.target())
	if err != nil {
		return s, err
	}
	return s, fileedit.WriteFile(in.target("etc", "fstab"), res.Stdout)
}

const swapMapper = "/dev/mapper/swap"

// encryptSwap turns the swap partition into a labelled stub so crypttab
// can recreate it with a random key on every boot.
func (in *installer) encryptSwap(ctx context.Context, s state.State) (state.State, error) {
	swap := dev(state.Value(s.Partitions.Swap))
	if err := in.run(ctx, "swapoff", swap); err != nil {
		return s, err
	}
	if err := in.run(ctx, "mkfs.ext2", "-L", "cryptswap", swap, "1M"); err != nil {
		return s, err
	}

	path := in.target("etc", "fstab")
	content, err := fileedit.ReadFile(path)
	if err != nil {
		return s, err
	}
	device, err := swapDevice(content)
	if err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	if device == swapMapper {
		return s, nil
	}
	return s, in.patch(path, fileedit.R(device, swapMapper))
}

var errNoSwapEntry = errors.New("no swap entry")

// swapDevice returns the device field of the first fstab line mentioning
// swap.
func swapDevice(fstab string) (string, error) {
	for _, line := range strings.Split(fstab, "\n") {
		if !strings.Contains(line, "swap") {
			continue
		}
		if fields := strings.Fields(line); len(fields) > 0 {
			return fields[0], nil
		}
	}
	return "", errNoSwapEntry
}
