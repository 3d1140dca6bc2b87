package steps

import (
	"context"
	"fmt"
	"os"

	"github.com/druarnfield/archie/internal/state"
)

var firmwareOptions = []string{"BIOS", "UEFI"}

func (in *installer) firmwareMode(ctx context.Context, s state.State) (state.State, error) {
	if in.DetectFirmware != nil {
		in.info("This machine was booted in %s mode.", firmwareOptions[boolIndex(in.DetectFirmware() == state.UEFI)])
	}

	choice, err := in.Prompt.Choice(ctx, "Which installation mode do you want?", firmwareOptions)
	if err != nil {
		return s, err
	}
	if choice == 1 {
		s.FirmwareMode = state.UEFI
	} else {
		s.FirmwareMode = state.BIOS
		s.Partitions.UEFI = nil
	}
	return s, nil
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (in *installer) encryption(ctx context.Context, s state.State) (state.State, error) {
	yes, err := in.Prompt.YesNo(ctx, "Do you want to encrypt your root and home partitions?")
	if err != nil {
		return s, err
	}
	s.EncryptVolumes = yes
	return s, nil
}

func (in *installer) timeSync(ctx context.Context, s state.State) (state.State, error) {
	if err := in.run(ctx, "timedatectl", "set-ntp", "true"); err != nil {
		return s, err
	}
	return s, in.run(ctx, "timedatectl", "status")
}

func (in *installer) partitionDisk(ctx context.Context, s state.State) (state.State, error) {
	if err := in.run(ctx, "fdisk", "-l"); err != nil {
		return s, err
	}
	disk, err := in.askName(ctx, "Enter the disk you want to partition. (sda, sdb, ...): ")
	if err != nil {
		return s, err
	}
	if err := in.run(ctx, "fdisk", dev(disk)); err != nil {
		return s, err
	}
	in.info("Partitioning results:")
	return s, in.run(ctx, "lsblk")
}

// partitionNames records root and the optional boot and home partitions.
// A repeated run starts from scratch, so earlier optional answers are
// dropped first.
func (in *installer) partitionNames(ctx context.Context, s state.State) (state.State, error) {
	s.Partitions.Boot = nil
	s.Partitions.Home = nil

	root, err := in.askName(ctx, "Enter the name of your root partition: ")
	if err != nil {
		return s, err
	}
	s.Partitions.Root = root

	if s.Partitions.Boot, err = in.optionalPartition(ctx, "boot"); err != nil {
		return s, err
	}
	if s.Partitions.Home, err = in.optionalPartition(ctx, "home"); err != nil {
		return s, err
	}
	return s, nil
}

func (in *installer) optionalPartition(ctx context.Context, role string) (*string, error) {
	yes, err := in.Prompt.YesNo(ctx, fmt.Sprintf("Do you have a separate %s partition?", role))
	if err != nil || !yes {
		return nil, err
	}
	name, err := in.askName(ctx, fmt.Sprintf("Enter the name of your %s partition: ", role))
	if err != nil {
		return nil, err
	}
	return state.Some(name), nil
}

func (in *installer) uefiPartition(ctx context.Context, s state.State) (state.State, error) {
	name, err := in.askName(ctx, "Enter the name of your uefi partition: ")
	if err != nil {
		return s, err
	}
	s.Partitions.UEFI = state.Some(name)
	return s, nil
}

// formatLUKS formats the filesystem of an optionally encrypted partition.
// With encryption on, an existing container is still opened when the
// operator declines to format it.
func (in *installer) formatLUKS(ctx context.Context, s state.State, role, partition, mapped string) error {
	format, err := in.Prompt.YesNo(ctx, fmt.Sprintf("Do you want to format your %s partition?", role))
	if err != nil {
		return err
	}

	if !s.EncryptVolumes {
		if !format {
			return nil
		}
		return in.run(ctx, "mkfs.btrfs", "-f", dev(partition))
	}

	if format {
		if err := in.run(ctx, "cryptsetup", "luksFormat", dev(partition)); err != nil {
			return err
		}
	}
	if err := in.run(ctx, "cryptsetup", "open", dev(partition), mapped); err != nil {
		return err
	}
	if !format {
		return nil
	}
	return in.run(ctx, "mkfs.btrfs", "-f", mapper(mapped))
}

func (in *installer) formatRoot(ctx context.Context, s state.State) (state.State, error) {
	return s, in.formatLUKS(ctx, s, "root", s.Partitions.Root, cryptRoot)
}

func (in *installer) formatHome(ctx context.Context, s state.State) (state.State, error) {
	return s, in.formatLUKS(ctx, s, "home", state.Value(s.Partitions.Home), cryptHome)
}

func (in *installer) formatBoot(ctx context.Context, s state.State) (state.State, error) {
	yes, err := in.Prompt.YesNo(ctx, "Do you want to format your boot partition?")
	if err != nil || !yes {
		return s, err
	}
	return s, in.run(ctx, "mkfs.btrfs", "-f", dev(state.Value(s.Partitions.Boot)))
}

func (in *installer) formatUEFI(ctx context.Context, s state.State) (state.State, error) {
	yes, err := in.Prompt.YesNo(ctx, "Do you want to format your uefi partition?")
	if err != nil || !yes {
		return s, err
	}
	return s, in.run(ctx, "mkfs.fat", "-F32", dev(state.Value(s.Partitions.UEFI)))
}

func (in *installer) swap(ctx context.Context, s state.State) (state.State, error) {
	s.Partitions.Swap = nil

	yes, err := in.Prompt.YesNo(ctx, "Do you want to enable swap?")
	if err != nil || !yes {
		return s, err
	}
	name, err := in.askName(ctx, "Enter name of the swap partition: ")
	if err != nil {
		return s, err
	}
	if err := in.run(ctx, "mkswap", dev(name)); err != nil {
		return s, err
	}
	if err := in.run(ctx, "swapon", dev(name)); err != nil {
		return s, err
	}
	s.Partitions.Swap = state.Some(name)
	return s, nil
}

func (in *installer) mount(ctx context.Context, device string, elem ...string) error {
	dir := in.target(elem...)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating mount point: %w", err)
	}
	return in.run(ctx, "mount", device, dir)
}

func (in *installer) mountRoot(ctx context.Context, s state.State) (state.State, error) {
	return s, in.mount(ctx, rootDevice(s))
}

func (in *installer) mountBoot(ctx context.Context, s state.State) (state.State, error) {
	return s, in.mount(ctx, dev(state.Value(s.Partitions.Boot)), "boot")
}

func (in *installer) mountUEFI(ctx context.Context, s state.State) (state.State, error) {
	return s, in.mount(ctx, dev(state.Value(s.Partitions.UEFI)), "boot", "EFI")
}

func (in *installer) mountHome(ctx context.Context, s state.State) (state.State, error) {
	return s, in.mount(ctx, homeDevice(s), "home")
}

// unmount releases everything mounted under the target, innermost first,
// and closes the encrypted containers.
func (in *installer) unmount(ctx context.Context, s state.State) (state.State, error) {
	type volume struct {
		label  string
		device string
		mapped string
	}

	var volumes []volume
	if s.Partitions.UEFI != nil {
		volumes = append(volumes, volume{label: "UEFI", device: dev(*s.Partitions.UEFI)})
	}
	if s.Partitions.Boot != nil {
		volumes = append(volumes, volume{label: "Boot", device: dev(*s.Partitions.Boot)})
	}
	if s.Partitions.Home != nil {
		v := volume{label: "Home", device: homeDevice(s)}
		if s.EncryptVolumes {
			v.mapped = v.device
		}
		volumes = append(volumes, v)
	}
	root := volume{label: "Root", device: rootDevice(s)}
	if s.EncryptVolumes {
		root.mapped = root.device
	}
	volumes = append(volumes, root)

	for _, v := range volumes {
		if err := in.run(ctx, "umount", v.device); err != nil {
			return s, err
		}
		in.info("%s (%s): Unmounted", v.label, v.device)
		if v.mapped == "" {
			continue
		}
		if err := in.run(ctx, "cryptsetup", "close", v.mapped); err != nil {
			return s, err
		}
		in.info("%s (%s): Closed", v.label, v.mapped)
	}
	return s, nil
}
