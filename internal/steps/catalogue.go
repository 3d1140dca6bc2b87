package steps

import (
	"github.com/druarnfield/archie/internal/sequencer"
)

// Catalogue returns the installation steps in execution order. The order
// and length are part of the persisted state: a saved run can only resume
// against the catalogue it was started with.
func Catalogue(deps Dependencies) sequencer.Catalogue {
	in := &installer{Dependencies: deps}

	return sequencer.Catalogue{
		{
			Name:    "BIOS / UEFI installation mode",
			Explain: "Chooses how the bootloader will be installed. UEFI needs an EFI system partition.",
			Run:     in.firmwareMode,
		},
		{
			Name:    "Encrypted partitions",
			Explain: "Decides whether root and home are placed in LUKS containers.",
			Run:     in.encryption,
		},
		{
			Name:    "Configuring timedatectl",
			Explain: "Enables network time sync so package signatures validate.",
			Run:     in.timeSync,
		},
		{
			Name:    "Configuring partitions",
			Explain: "Runs fdisk interactively on the disk you name.",
			Run:     in.partitionDisk,
		},
		{
			Name:    "Getting partition names",
			Explain: "Records the root partition and any separate boot or home partitions.",
			Run:     in.partitionNames,
			Ensures: rootRecorded,
		},
		{
			Name:    "Getting UEFI partition name",
			Explain: "Records the EFI system partition.",
			When:    isUEFI,
			Run:     in.uefiPartition,
			Ensures: uefiRecorded,
		},
		{
			Name:    "Formatting root partition",
			Explain: "Creates a btrfs filesystem on root, inside a LUKS container when encrypting.",
			Run:     in.formatRoot,
		},
		{
			Name:    "Formatting boot partition",
			Explain: "Creates a btrfs filesystem on the boot partition.",
			When:    hasBoot,
			Run:     in.formatBoot,
		},
		{
			Name:    "Formatting UEFI partition",
			Explain: "Creates a FAT32 filesystem on the EFI system partition.",
			When:    hasUEFIPart,
			Run:     in.formatUEFI,
		},
		{
			Name:    "Formatting home partition",
			Explain: "Creates a btrfs filesystem on home, inside a LUKS container when encrypting.",
			When:    hasHome,
			Run:     in.formatHome,
		},
		{
			Name:    "Enabling swap",
			Explain: "Initialises and activates a swap partition if you have one.",
			Run:     in.swap,
		},
		{
			Name:    "Mount root partition",
			Explain: "Mounts the root filesystem at the target directory.",
			Run:     in.mountRoot,
		},
		{
			Name:    "Mount boot partition",
			Explain: "Mounts the boot partition at /boot in the target.",
			When:    hasBoot,
			Run:     in.mountBoot,
		},
		{
			Name:    "Mount UEFI partition",
			Explain: "Mounts the EFI system partition at /boot/EFI in the target.",
			When:    hasUEFIPart,
			Run:     in.mountUEFI,
		},
		{
			Name:    "Mount home partition",
			Explain: "Mounts the home filesystem at /home in the target.",
			When:    hasHome,
			Run:     in.mountHome,
		},
		{
			Name:    "Updating mirrors",
			Explain: "Ranks the fastest recent mirrors for your country with reflector.",
			Run:     in.mirrors,
		},
		{
			Name:    "Configuring pacman",
			Explain: "Turns on colour, verbose package lists and parallel downloads on the live system.",
			Run:     in.livePacman,
		},
		{
			Name:    "Installing base system",
			Explain: "Installs the base packages and CPU microcode into the target with pacstrap.",
			Run:     in.pacstrap,
		},
		{
			Name:    "Generating file system table",
			Explain: "Writes /etc/fstab for the mounted filesystems, addressed by UUID.",
			Run:     in.fstab,
		},
		{
			Name:    "Configuring encrypted swap",
			Explain: "Labels the swap partition so crypttab can encrypt it with a random key on boot.",
			When:    encryptedSwap,
			Run:     in.encryptSwap,
		},
		{
			Name:    "Configuring pacman for installed system",
			Explain: "Applies the same pacman tweaks to the installed system.",
			Run:     in.targetPacman,
		},
		{
			Name:        "Setting time zone",
			Explain:     "Links /etc/localtime to your zone, for example Europe/London.",
			Run:         in.timeZone,
			Policy:      sequencer.PolicyAskRetry,
			RetryPrompt: "Do you want to enter the time zone again?",
		},
		{
			Name:    "Setting hardware clock",
			Explain: "Writes the system time to the hardware clock.",
			Run:     in.hardwareClock,
		},
		{
			Name:    "Setting locale",
			Explain: "Enables en_US.UTF-8 and generates locales.",
			Run:     in.locale,
		},
		{
			Name:    "Setting host name",
			Explain: "Writes /etc/hostname.",
			Run:     in.hostname,
		},
		{
			Name:    "Setting hosts configuration",
			Explain: "Writes /etc/hosts for localhost and the host name.",
			Run:     in.hosts,
		},
		{
			Name:        "Setting root password",
			Explain:     "Runs passwd for root inside the new system.",
			Run:         in.rootPassword,
			Policy:      sequencer.PolicyAskRetry,
			RetryPrompt: "Do you want to enter the root password again?",
		},
		{
			Name:        "Creating user",
			Explain:     "Creates your user account with a home directory.",
			Run:         in.createUser,
			Ensures:     userRecorded,
			Policy:      sequencer.PolicyAskRetry,
			RetryPrompt: "Do you want to enter the username again?",
		},
		{
			Name:        "Setting your user password",
			Explain:     "Runs passwd for your user.",
			Run:         in.userPassword,
			Policy:      sequencer.PolicyAskRetry,
			RetryPrompt: "Do you want to enter the user password again?",
		},
		{
			Name:    "Adding user to wheel group",
			Explain: "Adds your user to the wheel group.",
			Run:     in.wheelGroup,
		},
		{
			Name:    "Updating sudoers file",
			Explain: "Lets members of wheel use sudo.",
			Run:     in.sudoers,
		},
		{
			Name:    "Installing efibootmgr",
			Explain: "Installs the tool grub uses to register itself with the UEFI firmware.",
			When:    isUEFI,
			Run:     in.efibootmgr,
		},
		{
			Name:    "Installing grub",
			Explain: "Installs the grub bootloader for the chosen firmware mode.",
			Run:     in.grubInstall,
		},
		{
			Name:    "Configuring grub",
			Explain: "Adjusts /etc/default/grub for dual boot or a zero timeout, and for the encrypted root.",
			Run:     in.grubConfig,
		},
		{
			Name:    "Configuring GPU drivers",
			Explain: "Installs Nvidia drivers and loads GPU kernel modules early.",
			Run:     in.gpuDrivers,
		},
		{
			Name:    "Adding encrypt hook",
			Explain: "Adds the encrypt hook to the initramfs so the root container can be unlocked.",
			When:    isEncrypted,
			Run:     in.encryptHook,
		},
		{
			Name:        "Running mkinitcpio",
			Explain:     "Rebuilds the initramfs. Warnings here are common and usually harmless.",
			Run:         in.mkinitcpio,
			Policy:      sequencer.PolicyAskContinue,
			RetryPrompt: "The 'mkinitcpio -p linux' command failed, which can be expected. Do you want to continue?",
		},
		{
			Name:    "Making grub config",
			Explain: "Generates /boot/grub/grub.cfg.",
			Run:     in.grubMkconfig,
		},
		{
			Name:    "Configuring crypttab",
			Explain: "Adds the encrypted swap and home containers to /etc/crypttab.",
			When:    crypttabNeeded,
			Run:     in.crypttab,
		},
		{
			Name:    "Enabling network manager service",
			Explain: "Starts NetworkManager on boot.",
			Run:     in.networkManager,
		},
		{
			Name:    "Installing KDE desktop and applications",
			Explain: "Installs the Plasma desktop and a set of KDE applications.",
			Run:     in.desktop,
		},
		{
			Name:    "Enabling SDDM service",
			Explain: "Starts the SDDM login screen on boot.",
			Run:     in.displayManager,
		},
		{
			Name:    "Installing paru AUR helper",
			Explain: "Builds paru from the AUR as your user.",
			Run:     in.aurHelper,
		},
		{
			Name:    "Unmounting partitions",
			Explain: "Unmounts the target and closes encrypted containers.",
			Run:     in.unmount,
		},
	}
}
