package config

import (
	"os"
	"path/filepath"
)

const (
	appName = "archie"

	// HomeEnv names a directory that replaces ConfigDir entirely.
	HomeEnv = "ARCHIE_HOME"
)

// ConfigDir holds the config, state and log files. It is $ARCHIE_HOME when
// set, else $XDG_CONFIG_HOME/archie, else ~/.config/archie. Root's home on
// the live system is a tmpfs; point ARCHIE_HOME at a persistent disk to
// keep a saved run across a reboot of the live medium.
func ConfigDir() string {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", appName)
	}
	return filepath.Join(home, ".config", appName)
}

// ConfigFilePath prefers an archie.toml shipped next to the binary, which
// is how the installer is usually carried on the live medium.
func ConfigFilePath() string {
	if exe, err := os.Executable(); err == nil {
		adjacent := filepath.Join(filepath.Dir(exe), appName+".toml")
		if _, err := os.Stat(adjacent); err == nil {
			return adjacent
		}
	}
	return filepath.Join(ConfigDir(), appName+".toml")
}

func StateFilePath() string {
	return filepath.Join(ConfigDir(), "state.json")
}

func LogFilePath() string {
	return filepath.Join(ConfigDir(), appName+".log")
}
