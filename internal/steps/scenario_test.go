package steps

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/druarnfield/archie/internal/exec"
	"github.com/druarnfield/archie/internal/prompt/mock"
	"github.com/druarnfield/archie/internal/sequencer"
	"github.com/druarnfield/archie/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// biosAnswers covers steps 1-11 for a BIOS, unencrypted install with only
// a root partition on sda1 and no swap.
func biosAnswers() []mock.Answer {
	return []mock.Answer{
		mock.Choose(0).On("installation mode"),
		mock.No().On("encrypt"),
		mock.Text("sda").On("disk you want to partition"),
		mock.Text("sda1").On("root partition"),
		mock.No().On("separate boot"),
		mock.No().On("separate home"),
		mock.Yes().On("format your root"),
		mock.No().On("enable swap"),
	}
}

// laterBIOSAnswers covers steps 16 onwards for the same install.
func laterBIOSAnswers() []mock.Answer {
	return []mock.Answer{
		mock.Text("Germany").On("mirrors"),
		mock.Choose(1).On("CPU brand"),
		mock.Text("Europe/London").On("time zone"),
		mock.Text("archbox").On("host name"),
		mock.Text("alice").On("username"),
		mock.Text("sda").On("disk's name"),
		mock.No().On("alongside Windows"),
		mock.No().On("Nvidia"),
		mock.No().On("Intel"),
	}
}

func TestScenario_BIOSRootOnly(t *testing.T) {
	f := newFixture(t)
	f.runner.Results[exec.Key("genfstab", "-U", f.target)] = exec.Result{
		Stdout: "# /dev/sda1\nUUID=1111 / btrfs rw,relatime 0 1\n",
	}
	p := mock.New(append(biosAnswers(), laterBIOSAnswers()...)...)
	cat := Catalogue(f.deps(p))

	final, err := sequencer.New(cat, f.store(), p, nopLogger()).Run(context.Background(), state.New(cat.Len()))
	require.NoError(t, err)
	assert.Zero(t, p.Remaining(), "unused answers")

	assert.Equal(t, state.BIOS, final.FirmwareMode)
	assert.False(t, final.EncryptVolumes)
	assert.Equal(t, state.Partitions{Root: "sda1"}, final.Partitions)
	assert.Equal(t, "alice", final.Username)
	assert.True(t, final.Done())

	for _, forbidden := range []string{"cryptsetup", "mkfs.fat", "efibootmgr", "mkswap", "swapoff", "/boot/EFI", "nvidia"} {
		assert.Empty(t, f.calledContaining(forbidden), "unexpected %s call", forbidden)
	}

	assert.True(t, f.called(exec.Key("mkfs.btrfs", "-f", "/dev/sda1")))
	assert.True(t, f.called(exec.Key("mount", "/dev/sda1", f.target)))
	assert.True(t, f.called(exec.Key("reflector",
		"--latest", "10", "--country", "Germany", "--protocol", "http,https",
		"--sort", "rate", "--save", filepath.Join(f.live, "etc", "pacman.d", "mirrorlist"))))

	pacstrap := append([]string{f.target}, f.cfg.Packages.Base...)
	assert.True(t, f.called(exec.Key("pacstrap", append(pacstrap, "intel-ucode")...)))
	assert.True(t, f.called(f.chroot("ln", "-sf", "/usr/share/zoneinfo/Europe/London", "/etc/localtime")))
	assert.True(t, f.called(f.chroot("passwd", "alice")))
	assert.True(t, f.called(f.chroot("usermod", "-aG", "wheel", "alice")))
	assert.True(t, f.called(f.chroot("grub-install", "--target=i386-pc", "/dev/sda")))
	assert.True(t, f.called(exec.Key("arch-chroot", "-u", "alice", f.target,
		"git", "clone", "https://aur.archlinux.org/paru-bin.git", "/home/alice/paru-bin")))
	assert.Equal(t, exec.Key("umount", "/dev/sda1"), f.runner.Calls[len(f.runner.Calls)-1])

	assert.Contains(t, f.read("etc/pacman.conf"), "ParallelDownloads = 5\nILoveCandy")
	assert.Contains(t, f.read("etc/fstab"), "UUID=1111 /")
	assert.Contains(t, f.read("etc/locale.gen"), "\nen_US.UTF-8 UTF-8")
	assert.Equal(t, "archbox\n", f.read("etc/hostname"))
	assert.Contains(t, f.read("etc/hosts"), "127.0.1.1\tarchbox.localdomain\tarchbox")
	assert.Contains(t, f.read("etc/sudoers"), "\n%wheel ALL=(ALL:ALL) ALL")
	assert.Contains(t, f.read("etc/default/grub"), "GRUB_TIMEOUT=0")
	assert.Contains(t, f.read("etc/default/grub"), `GRUB_CMDLINE_LINUX_DEFAULT="loglevel=3"`)
	assert.Equal(t, mkinitTpl, f.read("etc/mkinitcpio.conf"))
	assert.Equal(t, crypttabTp, f.read("etc/crypttab"))
	assert.Contains(t, f.read("home/alice/makepkg.sh"), "cd /home/alice/paru-bin\nmakepkg -si")

	_, err = f.store().Load()
	assert.ErrorIs(t, err, state.ErrNotFound, "state must be cleared after completion")
}

const blkidListing = `/dev/sda1: UUID="AAAA-BBBB" BLOCK_SIZE="512" TYPE="vfat" PARTUUID="0001-01"
/dev/sda2: UUID="root-luks-uuid" TYPE="crypto_LUKS" PARTUUID="0001-02"
/dev/sda3: LABEL="cryptswap" UUID="swap-uuid" BLOCK_SIZE="1024" TYPE="ext2" PARTUUID="0001-03"
/dev/sda4: UUID="home-luks-uuid" TYPE="crypto_LUKS" PARTUUID="0001-04"
/dev/mapper/cryptroot: UUID="cryptroot-fs-uuid" UUID_SUB="sub-uuid" BLOCK_SIZE="4096" TYPE="btrfs"
/dev/mapper/crypthome: UUID="crypthome-fs-uuid" UUID_SUB="sub-uuid-2" BLOCK_SIZE="4096" TYPE="btrfs"
`

func TestScenario_UEFIEncrypted(t *testing.T) {
	f := newFixture(t)
	f.runner.Results[exec.Key("genfstab", "-U", f.target)] = exec.Result{
		Stdout: "UUID=cryptroot-fs-uuid / btrfs rw 0 1\nUUID=AAAA-BBBB /boot/EFI vfat rw 0 2\nUUID=swap-old none swap defaults 0 0\n",
	}
	f.runner.Results[f.chroot("blkid")] = exec.Result{Stdout: blkidListing}

	p := mock.New(
		mock.Choose(1).On("installation mode"),
		mock.Yes().On("encrypt"),
		mock.Text("sda").On("disk you want to partition"),
		mock.Text("sda2").On("root partition"),
		mock.No().On("separate boot"),
		mock.Yes().On("separate home"),
		mock.Text("sda4").On("home partition"),
		mock.Text("sda1").On("uefi partition"),
		mock.Yes().On("format your root"),
		mock.Yes().On("format your uefi"),
		mock.Yes().On("format your home"),
		mock.Yes().On("enable swap"),
		mock.Text("sda3").On("swap partition"),
		mock.Text("France").On("mirrors"),
		mock.Choose(0).On("CPU brand"),
		mock.Text("America/Argentina/Buenos_Aires").On("time zone"),
		mock.Text("archbox").On("host name"),
		mock.Text("alice").On("username"),
		mock.No().On("alongside Windows"),
		mock.Yes().On("Nvidia"),
		mock.Yes().On("Intel"),
	)
	deps := f.deps(p)
	deps.DetectFirmware = func() state.FirmwareMode { return state.UEFI }
	cat := Catalogue(deps)

	final, err := sequencer.New(cat, f.store(), p, nopLogger()).Run(context.Background(), state.New(cat.Len()))
	require.NoError(t, err)
	assert.Zero(t, p.Remaining(), "unused answers")

	assert.Equal(t, state.Partitions{
		UEFI: state.Some("sda1"),
		Root: "sda2",
		Home: state.Some("sda4"),
		Swap: state.Some("sda3"),
	}, final.Partitions)
	assert.True(t, final.EncryptVolumes)
	assert.Contains(t, f.notes.lines, "This machine was booted in UEFI mode.")

	for _, key := range []string{
		exec.Key("cryptsetup", "luksFormat", "/dev/sda2"),
		exec.Key("cryptsetup", "open", "/dev/sda2", "cryptroot"),
		exec.Key("mkfs.btrfs", "-f", "/dev/mapper/cryptroot"),
		exec.Key("mkfs.fat", "-F32", "/dev/sda1"),
		exec.Key("cryptsetup", "luksFormat", "/dev/sda4"),
		exec.Key("cryptsetup", "open", "/dev/sda4", "crypthome"),
		exec.Key("mkfs.btrfs", "-f", "/dev/mapper/crypthome"),
		exec.Key("mkswap", "/dev/sda3"),
		exec.Key("mount", "/dev/mapper/cryptroot", f.target),
		exec.Key("mount", "/dev/sda1", filepath.Join(f.target, "boot", "EFI")),
		exec.Key("mount", "/dev/mapper/crypthome", filepath.Join(f.target, "home")),
		exec.Key("swapoff", "/dev/sda3"),
		exec.Key("mkfs.ext2", "-L", "cryptswap", "/dev/sda3", "1M"),
		f.chroot("ln", "-sf", "/usr/share/zoneinfo/America/Argentina/Buenos_Aires", "/etc/localtime"),
		f.chroot("pacman", "-Sy", "efibootmgr", "--noconfirm"),
		f.chroot("grub-install", "--target=x86_64-efi", "--bootloader-id=grub_uefi", "--recheck"),
		f.chroot("pacman", "-Sy", "nvidia", "--noconfirm"),
		f.chroot("mkinitcpio", "-p", "linux"),
	} {
		assert.True(t, f.called(key), "missing call %q", key)
	}
	assert.Empty(t, f.calledContaining("mkfs.btrfs -f /dev/sda2"), "root must be formatted inside the container")

	assert.Contains(t, f.read("etc/default/grub"),
		`GRUB_CMDLINE_LINUX_DEFAULT="loglevel=3 cryptdevice=UUID=root-luks-uuid:cryptroot root=UUID=cryptroot-fs-uuid"`)
	assert.Contains(t, f.read("etc/default/grub"), "GRUB_TIMEOUT=0")

	mkinit := f.read("etc/mkinitcpio.conf")
	assert.Contains(t, mkinit, "MODULES=(nvidia i915)")
	assert.Contains(t, mkinit, "block encrypt filesystems")

	fstab := f.read("etc/fstab")
	assert.Contains(t, fstab, "/dev/mapper/swap none swap defaults 0 0")
	assert.NotContains(t, fstab, "swap-old")

	crypttab := f.read("etc/crypttab")
	assert.Contains(t, crypttab, "swap\tLABEL=cryptswap\t/dev/urandom\tswap,cipher=aes-cbc-essiv:sha256,size=256,offset=2048")
	assert.NotContains(t, crypttab, "# swap")
	assert.Contains(t, crypttab, "home UUID=home-luks-uuid none\n")

	calls := f.runner.Calls
	require.GreaterOrEqual(t, len(calls), 5)
	assert.Equal(t, []string{
		exec.Key("umount", "/dev/sda1"),
		exec.Key("umount", "/dev/mapper/crypthome"),
		exec.Key("cryptsetup", "close", "/dev/mapper/crypthome"),
		exec.Key("umount", "/dev/mapper/cryptroot"),
		exec.Key("cryptsetup", "close", "/dev/mapper/cryptroot"),
	}, calls[len(calls)-5:])
}

func TestScenario_MountFailureThenResume(t *testing.T) {
	f := newFixture(t)
	mountKey := exec.Key("mount", "/dev/sda1", f.target)
	f.runner.Results[mountKey] = exec.Result{ExitCode: 32, Stderr: "mount: wrong fs type"}

	p := mock.New(biosAnswers()...)
	cat := Catalogue(f.deps(p))
	mountIndex := cat.Index("Mount root partition")

	_, err := sequencer.New(cat, f.store(), p, nopLogger()).Run(context.Background(), state.New(cat.Len()))

	var abort *sequencer.AbortError
	require.True(t, errors.As(err, &abort), "err = %v", err)
	assert.Equal(t, mountIndex, abort.Index)
	var cerr *exec.CommandError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, 32, cerr.ExitCode)

	saved, err := f.store().Load()
	require.NoError(t, err)
	assert.Equal(t, mountIndex, saved.CurrentStep)
	assert.Equal(t, "sda1", saved.Partitions.Root)

	// The operator fixes the problem and starts the installer again.
	delete(f.runner.Results, mountKey)
	f.runner.Calls = nil
	f.runner.Results[exec.Key("genfstab", "-U", f.target)] = exec.Result{Stdout: "UUID=1111 / btrfs rw 0 1\n"}

	p2 := mock.New(append([]mock.Answer{mock.Yes().On("(12/44)")}, laterBIOSAnswers()...)...)
	s, err := sequencer.Resume(context.Background(), f.store(), p2, cat)
	require.NoError(t, err)
	assert.Equal(t, mountIndex, s.CurrentStep)

	cat = Catalogue(f.deps(p2))
	final, err := sequencer.New(cat, f.store(), p2, nopLogger()).Run(context.Background(), s)
	require.NoError(t, err)
	assert.Zero(t, p2.Remaining())
	assert.Equal(t, "sda1", final.Partitions.Root)

	require.NotEmpty(t, f.runner.Calls)
	assert.Equal(t, mountKey, f.runner.Calls[0], "resume starts at the failed step")
	for _, earlier := range []string{"timedatectl", "fdisk", "mkfs.btrfs", "lsblk"} {
		assert.Empty(t, f.calledContaining(earlier), "step before the mount re-ran: %s", earlier)
	}
}

func TestScenario_RootPasswordRetry(t *testing.T) {
	f := newFixture(t)
	f.runner.Sequences[f.chroot("passwd")] = []exec.Result{{ExitCode: 10}, {}}
	p := mock.New(mock.Yes().On("root password again"))

	final, err := f.single(p, "Setting root password", state.New(1))
	require.NoError(t, err)
	assert.Zero(t, p.Remaining())
	assert.Equal(t, 2, f.runner.Count(f.chroot("passwd")))
	assert.True(t, final.Done())

	_, err = f.store().Load()
	assert.ErrorIs(t, err, state.ErrNotFound)
}

func TestScenario_TimeZoneNeedsSlash(t *testing.T) {
	f := newFixture(t)
	p := mock.New(
		mock.Text("London").On("time zone"),
		mock.Yes().On("time zone again"),
		mock.Text("Europe/London").On("time zone"),
	)

	_, err := f.single(p, "Setting time zone", state.New(1))
	require.NoError(t, err)
	assert.Zero(t, p.Remaining())
	assert.Equal(t, 1, f.runner.Count(f.chroot("ln", "-sf", "/usr/share/zoneinfo/Europe/London", "/etc/localtime")))
	assert.Len(t, f.calledContaining("zoneinfo"), 1, "invalid zone must not reach ln")
}

func TestScenario_CreateUserDeclined(t *testing.T) {
	f := newFixture(t)
	f.runner.Results[f.chroot("useradd", "-m", "bob")] = exec.Result{ExitCode: 9}
	p := mock.New(
		mock.Text("bob").On("username"),
		mock.No().On("username again"),
	)

	s, err := f.single(p, "Creating user", state.New(1))

	var cerr *exec.CommandError
	require.True(t, errors.As(err, &cerr), "err = %v", err)
	var abort *sequencer.AbortError
	require.True(t, errors.As(err, &abort))
	assert.Equal(t, 1, abort.Index)
	assert.Equal(t, 1, s.CurrentStep)
	assert.Empty(t, s.Username, "a failed step must not commit its answers")
}

func TestScenario_GPUDrivers(t *testing.T) {
	tests := []struct {
		name          string
		nvidia, intel bool
		wantModules   string
	}{
		{"neither", false, false, "MODULES=()"},
		{"nvidia only", true, false, "MODULES=(nvidia)"},
		{"intel only", false, true, "MODULES=(i915)"},
		{"both", true, true, "MODULES=(nvidia i915)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p := mock.New(yesNo(tt.nvidia).On("Nvidia"), yesNo(tt.intel).On("Intel"))

			_, err := f.single(p, "Configuring GPU drivers", state.New(1))
			require.NoError(t, err)

			mkinit := f.read("etc/mkinitcpio.conf")
			assert.True(t, strings.HasPrefix(mkinit, tt.wantModules+"\n"), "mkinitcpio.conf = %q", mkinit)
			assert.Equal(t, tt.nvidia, f.called(f.chroot("pacman", "-Sy", "nvidia", "--noconfirm")))
		})
	}
}

func yesNo(b bool) mock.Answer {
	if b {
		return mock.Yes()
	}
	return mock.No()
}

func TestScenario_MkinitcpioContinue(t *testing.T) {
	f := newFixture(t)
	f.runner.Results[f.chroot("mkinitcpio", "-p", "linux")] = exec.Result{ExitCode: 1}

	_, err := f.single(mock.New(mock.Yes().On("continue")), "Running mkinitcpio", state.New(1))
	assert.NoError(t, err)

	_, err = f.single(mock.New(mock.No().On("continue")), "Running mkinitcpio", state.New(1))
	var abort *sequencer.AbortError
	assert.True(t, errors.As(err, &abort), "err = %v", err)
}

func TestScenario_CrypttabResumeDoesNotDuplicate(t *testing.T) {
	f := newFixture(t)
	f.runner.Results[f.chroot("blkid")] = exec.Result{Stdout: blkidListing}

	s := state.New(1)
	s.EncryptVolumes = true
	s.Partitions.Root = "sda2"
	s.Partitions.Home = state.Some("sda4")
	s.Partitions.Swap = state.Some("sda3")

	for i := 0; i < 2; i++ {
		_, err := f.single(mock.New(), "Configuring crypttab", s)
		require.NoError(t, err)
	}

	crypttab := f.read("etc/crypttab")
	assert.Equal(t, 1, strings.Count(crypttab, "home UUID=home-luks-uuid none"))
	assert.Equal(t, 1, strings.Count(crypttab, "offset=2048"))
}

func TestScenario_HostsSurvivesResume(t *testing.T) {
	f := newFixture(t)
	f.write(f.target, "etc/hostname", "resumed-host\n")

	_, err := f.single(mock.New(), "Setting hosts configuration", state.New(1))
	require.NoError(t, err)
	assert.Contains(t, f.read("etc/hosts"), "resumed-host.localdomain\tresumed-host")
}

func TestScenario_EncryptedGrubWithoutListingEntry(t *testing.T) {
	f := newFixture(t)
	f.runner.Results[f.chroot("blkid")] = exec.Result{Stdout: "/dev/sda9: UUID=\"x\"\n"}

	s := state.New(1)
	s.EncryptVolumes = true
	s.Partitions.Root = "sda2"

	_, err := f.single(mock.New(mock.No().On("alongside Windows")), "Configuring grub", s)
	require.Error(t, err)
	assert.Equal(t, grubTpl, f.read("etc/default/grub"), "grub must not be half patched")
}

func TestScenario_ResumeRefusesRecordWithoutAnswers(t *testing.T) {
	f := newFixture(t)
	cat := Catalogue(f.deps(mock.New()))

	wheel := state.New(cat.Len())
	wheel.CurrentStep = cat.Index("Adding user to wheel group")
	wheel.Partitions.Root = "sda2"

	uefi := state.New(cat.Len())
	uefi.FirmwareMode = state.UEFI
	uefi.Partitions.Root = "sda2"
	uefi.Username = "alice"
	uefi.CurrentStep = cat.Len()

	noRoot := state.New(cat.Len())
	noRoot.CurrentStep = cat.Index("Formatting root partition")

	for name, saved := range map[string]state.State{
		"username":       wheel,
		"UEFI partition": uefi,
		"root partition": noRoot,
	} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, f.store().Save(saved))
			f.runner.Calls = nil

			_, err := sequencer.Resume(context.Background(), f.store(), mock.New(), cat)
			require.ErrorIs(t, err, state.ErrCorrupt)
			assert.ErrorContains(t, err, "no "+name+" recorded")
			assert.Empty(t, f.runner.Calls)
		})
	}
}
