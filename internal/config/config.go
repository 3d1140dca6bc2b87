package config

import (
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Paths      PathsConfig      `toml:"paths"`
	Mirrors    MirrorsConfig    `toml:"mirrors"`
	Packages   PackagesConfig   `toml:"packages"`
	Bootloader BootloaderConfig `toml:"bootloader"`
	AUR        AURConfig        `toml:"aur"`
	Reboot     RebootConfig     `toml:"reboot"`
}

// PathsConfig locates the installer's own files and the two system roots.
// Target is where the new system is mounted; LiveRoot is the running
// installation medium, whose pacman.conf is tuned before pacstrap.
type PathsConfig struct {
	State    string `toml:"state"`
	Log      string `toml:"log"`
	Target   string `toml:"target"`
	LiveRoot string `toml:"live_root"`
}

type MirrorsConfig struct {
	Latest    int    `toml:"latest"`
	Protocols string `toml:"protocols"`
	Sort      string `toml:"sort"`
}

type PackagesConfig struct {
	Base    []string `toml:"base"`
	Desktop []string `toml:"desktop"`
	GPU     []string `toml:"gpu"`
}

type BootloaderConfig struct {
	UEFITarget   string `toml:"uefi_target"`
	BIOSTarget   string `toml:"bios_target"`
	BootloaderID string `toml:"bootloader_id"`
}

type AURConfig struct {
	HelperRepo string `toml:"helper_repo"`
}

type RebootConfig struct {
	Enabled   bool `toml:"enabled"`
	Countdown int  `toml:"countdown"`
}

func Defaults() *Config {
	return &Config{
		Paths: PathsConfig{
			State:    StateFilePath(),
			Log:      LogFilePath(),
			Target:   "/mnt",
			LiveRoot: "/",
		},
		Mirrors: MirrorsConfig{
			Latest:    10,
			Protocols: "http,https",
			Sort:      "rate",
		},
		Packages: PackagesConfig{
			Base: []string{
				"base", "linux", "linux-firmware", "sudo", "helix", "grub",
				"dosfstools", "mtools", "networkmanager", "git", "base-devel",
			},
			Desktop: []string{
				"sddm", "bluedevil", "breeze", "breeze-gtk", "kactivitymanagerd",
				"kde-gtk-config", "kgamma5", "kpipewire", "kscreen", "kscreenlocker",
				"ksystemstats", "kwayland-integration", "kwin", "libkscreen",
				"libksysguard", "plasma-desktop", "plasma-disks", "plasma-firewall",
				"plasma-nm", "plasma-pa", "plasma-systemmonitor", "plasma-workspace",
				"plasma-workspace-wallpapers", "powerdevil", "sddm-kcm",
				"systemsettings", "ark", "dolphin", "elisa", "gwenview", "kalarm",
				"kcalc", "kdeconnect", "kdialog", "konsole", "ktimer", "okular",
				"partitionmanager", "print-manager", "spectacle", "firefox",
			},
			GPU: []string{"nvidia"},
		},
		Bootloader: BootloaderConfig{
			UEFITarget:   "x86_64-efi",
			BIOSTarget:   "i386-pc",
			BootloaderID: "grub_uefi",
		},
		AUR: AURConfig{
			HelperRepo: "https://aur.archlinux.org/paru-bin.git",
		},
		Reboot: RebootConfig{
			Enabled:   true,
			Countdown: 5,
		},
	}
}

func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects values the installation steps cannot work with.
func (c *Config) Validate() error {
	if c.Paths.State == "" {
		return fmt.Errorf("paths.state must not be empty")
	}
	if !strings.HasPrefix(c.Paths.Target, "/") {
		return fmt.Errorf("paths.target %q must be absolute", c.Paths.Target)
	}
	if !strings.HasPrefix(c.Paths.LiveRoot, "/") {
		return fmt.Errorf("paths.live_root %q must be absolute", c.Paths.LiveRoot)
	}
	if c.Mirrors.Latest <= 0 {
		return fmt.Errorf("mirrors.latest must be positive, got %d", c.Mirrors.Latest)
	}
	if len(c.Packages.Base) == 0 {
		return fmt.Errorf("packages.base must list at least one package")
	}
	if c.Reboot.Countdown < 0 {
		return fmt.Errorf("reboot.countdown must not be negative, got %d", c.Reboot.Countdown)
	}
	return nil
}
