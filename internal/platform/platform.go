// Package platform holds the few facts and actions the installer needs
// from the running live system itself.
package platform

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/druarnfield/archie/internal/state"
)

var ErrNotSupported = errors.New("not supported on this platform")

// efiDir exists only when the kernel was booted by UEFI firmware.
const efiDir = "sys/firmware/efi"

// DetectFirmware reports how the live system under root was booted. It is
// a hint shown to the operator, who still chooses the installation mode.
func DetectFirmware(root string) state.FirmwareMode {
	if info, err := os.Stat(filepath.Join(root, efiDir)); err == nil && info.IsDir() {
		return state.UEFI
	}
	return state.BIOS
}
