package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/druarnfield/archie/internal/blkid"
	"github.com/druarnfield/archie/internal/fileedit"
	"github.com/druarnfield/archie/internal/state"
)

const (
	grubQuiet   = `GRUB_CMDLINE_LINUX_DEFAULT="loglevel=3 quiet"`
	grubVerbose = `GRUB_CMDLINE_LINUX_DEFAULT="loglevel=3"`
)

func (in *installer) efibootmgr(ctx context.Context, s state.State) (state.State, error) {
	return s, in.chroot(ctx, "pacman", "-Sy", "efibootmgr", "--noconfirm")
}

func (in *installer) grubInstall(ctx context.Context, s state.State) (state.State, error) {
	b := in.Config.Bootloader
	if s.UEFI() {
		return s, in.chroot(ctx, "grub-install",
			"--target="+b.UEFITarget,
			"--bootloader-id="+b.BootloaderID,
			"--recheck",
		)
	}

	disk, err := in.askName(ctx, "Enter your disk's name the Arch Linux has been installed to. (sda or sdb or ...): ")
	if err != nil {
		return s, err
	}
	return s, in.chroot(ctx, "grub-install", "--target="+b.BIOSTarget, dev(disk))
}

func (in *installer) grubConfig(ctx context.Context, s state.State) (state.State, error) {
	path := in.target("etc", "default", "grub")

	dualBoot, err := in.Prompt.YesNo(ctx, "Are you installing Arch Linux alongside Windows?")
	if err != nil {
		return s, err
	}

	repls := []fileedit.Replacement{fileedit.R(grubQuiet, grubVerbose)}
	if dualBoot {
		if err := in.chroot(ctx, "pacman", "-Sy", "os-prober", "--noconfirm"); err != nil {
			return s, err
		}
		repls = append(repls, fileedit.R("#GRUB_DISABLE_OS_PROBER=false", "GRUB_DISABLE_OS_PROBER=false"))
	} else {
		repls = append(repls, fileedit.R("GRUB_TIMEOUT=5", "GRUB_TIMEOUT=0"))
	}

	if s.EncryptVolumes {
		cmdline, err := in.cryptCmdline(ctx, s)
		if err != nil {
			return s, err
		}
		repls = append(repls,
			fileedit.R(grubVerbose, cmdline),
			fileedit.R("GRUB_TIMEOUT=5", "GRUB_TIMEOUT=0"),
		)
	}
	return s, in.patch(path, repls...)
}

// cryptCmdline builds the kernel command line that unlocks the root
// container, addressing both the LUKS partition and the opened filesystem
// by UUID.
func (in *installer) cryptCmdline(ctx context.Context, s state.State) (string, error) {
	listing, err := in.blkid(ctx)
	if err != nil {
		return "", err
	}
	rootUUID, err := blkid.FindUUID(listing, dev(s.Partitions.Root)+":")
	if err != nil {
		return "", err
	}
	cryptUUID, err := blkid.FindUUID(listing, mapper(cryptRoot)+":")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`GRUB_CMDLINE_LINUX_DEFAULT="loglevel=3 cryptdevice=UUID=%s:%s root=UUID=%s"`,
		rootUUID, cryptRoot, cryptUUID), nil
}

// blkid lists block devices as the target system sees them.
func (in *installer) blkid(ctx context.Context) (string, error) {
	res, err := in.Exec.Run(ctx, "arch-chroot", in.target(), "blkid")
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// gpuModules returns the MODULES line for the detected GPUs, or "" when
// no module needs loading early.
func gpuModules(nvidia, intel bool) string {
	var mods []string
	if nvidia {
		mods = append(mods, "nvidia")
	}
	if intel {
		mods = append(mods, "i915")
	}
	if len(mods) == 0 {
		return ""
	}
	return "MODULES=(" + strings.Join(mods, " ") + ")"
}

func (in *installer) gpuDrivers(ctx context.Context, s state.State) (state.State, error) {
	nvidia, err := in.Prompt.YesNo(ctx, "Do you have Nvidia GPU?")
	if err != nil {
		return s, err
	}
	intel, err := in.Prompt.YesNo(ctx, "Do you have Intel GPU?")
	if err != nil {
		return s, err
	}

	if nvidia {
		args := append([]string{"pacman", "-Sy"}, in.Config.Packages.GPU...)
		if err := in.chroot(ctx, append(args, "--noconfirm")...); err != nil {
			return s, err
		}
	}

	modules := gpuModules(nvidia, intel)
	if modules == "" {
		return s, nil
	}
	return s, in.patch(in.target("etc", "mkinitcpio.conf"), fileedit.R("MODULES=()", modules))
}

func (in *installer) encryptHook(_ context.Context, s state.State) (state.State, error) {
	return s, in.patch(in.target("etc", "mkinitcpio.conf"), fileedit.R("block filesystems", "block encrypt filesystems"))
}

func (in *installer) mkinitcpio(ctx context.Context, s state.State) (state.State, error) {
	return s, in.chroot(ctx, "mkinitcpio", "-p", "linux")
}

func (in *installer) grubMkconfig(ctx context.Context, s state.State) (state.State, error) {
	return s, in.chroot(ctx, "grub-mkconfig", "-o", "/boot/grub/grub.cfg")
}

// crypttab enables the random-key swap entry and adds the home container.
func (in *installer) crypttab(ctx context.Context, s state.State) (state.State, error) {
	path := in.target("etc", "crypttab")

	if s.Partitions.Swap != nil {
		content, err := fileedit.ReadFile(path)
		if err != nil {
			return s, err
		}
		// "size=256" survives in its replacement, so patch only once.
		if !strings.Contains(content, "LABEL=cryptswap") {
			err := in.patch(path,
				fileedit.R("# swap", "swap"),
				fileedit.R("/dev/sdx4", "LABEL=cryptswap"),
				fileedit.R("size=256", "size=256,offset=2048"),
			)
			if err != nil {
				return s, err
			}
		}
	}

	if s.Partitions.Home != nil {
		listing, err := in.blkid(ctx)
		if err != nil {
			return s, err
		}
		uuid, err := blkid.FindUUID(listing, dev(*s.Partitions.Home)+":")
		if err != nil {
			return s, err
		}
		if err := fileedit.AppendLine(path, fmt.Sprintf("home UUID=%s none", uuid)); err != nil {
			return s, err
		}
	}
	return s, nil
}
