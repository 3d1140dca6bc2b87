// Package state holds the record of an installation in progress: the
// operator's answers so far and the index of the next step to run. The
// record is persisted after every completed step so an interrupted run can
// resume where it stopped.
package state

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no previous run left a record behind.
	ErrNotFound = errors.New("no saved installation state")

	// ErrCorrupt means a record exists but cannot be trusted.
	ErrCorrupt = errors.New("saved installation state is corrupt")
)

// FirmwareMode is the boot firmware the target system is installed for.
type FirmwareMode string

const (
	BIOS FirmwareMode = "bios"
	UEFI FirmwareMode = "uefi"
)

// Valid reports whether m is a known firmware mode.
func (m FirmwareMode) Valid() bool {
	return m == BIOS || m == UEFI
}

func (m FirmwareMode) String() string {
	switch m {
	case BIOS:
		return "BIOS"
	case UEFI:
		return "UEFI"
	default:
		return fmt.Sprintf("FirmwareMode(%q)", string(m))
	}
}

// Partitions maps each partition role to a device name such as "sda2".
// Optional roles are nil when the operator has no such partition.
type Partitions struct {
	UEFI *string `json:"uefi" yaml:"uefi"`
	Boot *string `json:"boot" yaml:"boot"`
	Root string  `json:"root" yaml:"root"`
	Home *string `json:"home" yaml:"home"`
	Swap *string `json:"swap" yaml:"swap"`
}

// State is the persisted record. Step bodies receive a copy and return the
// updated copy; it is committed only when the step succeeds.
type State struct {
	FirmwareMode   FirmwareMode `json:"firmware_mode" yaml:"firmware_mode"`
	Partitions     Partitions   `json:"partitions" yaml:"partitions"`
	Username       string       `json:"username" yaml:"username"`
	EncryptVolumes bool         `json:"encrypt_volumes" yaml:"encrypt_volumes"`
	CurrentStep    int          `json:"current_step" yaml:"current_step"`
	TotalSteps     int          `json:"total_steps" yaml:"total_steps"`
}

// New returns a fresh record positioned at the first step.
func New(totalSteps int) State {
	return State{
		FirmwareMode: BIOS,
		CurrentStep:  1,
		TotalSteps:   totalSteps,
	}
}

// Reset discards every collected answer and rewinds to the first step,
// keeping TotalSteps.
func (s State) Reset() State {
	return New(s.TotalSteps)
}

// Done reports whether every step has completed.
func (s State) Done() bool {
	return s.CurrentStep > s.TotalSteps
}

// UEFI reports whether the installation targets UEFI firmware.
func (s State) UEFI() bool {
	return s.FirmwareMode == UEFI
}

// Percent is the progress shown for the current step, 0-100.
func (s State) Percent() int {
	if s.TotalSteps <= 0 {
		return 0
	}
	p := s.CurrentStep * 100 / s.TotalSteps
	if p > 100 {
		p = 100
	}
	return p
}

// Validate checks the structural invariants a loaded record must satisfy.
func (s State) Validate() error {
	if !s.FirmwareMode.Valid() {
		return fmt.Errorf("unknown firmware mode %q", string(s.FirmwareMode))
	}
	if s.TotalSteps <= 0 {
		return fmt.Errorf("total steps %d must be positive", s.TotalSteps)
	}
	if s.CurrentStep < 1 || s.CurrentStep > s.TotalSteps+1 {
		return fmt.Errorf("current step %d outside 1..%d", s.CurrentStep, s.TotalSteps+1)
	}
	for role, p := range map[string]*string{
		"uefi": s.Partitions.UEFI,
		"boot": s.Partitions.Boot,
		"home": s.Partitions.Home,
		"swap": s.Partitions.Swap,
	} {
		if p != nil && *p == "" {
			return fmt.Errorf("%s partition recorded with an empty name", role)
		}
	}
	if s.Partitions.UEFI != nil && !s.UEFI() {
		return errors.New("uefi partition recorded for a BIOS installation")
	}
	return nil
}

// Some returns a pointer to a copy of v, for filling optional partitions.
func Some(v string) *string {
	return &v
}

// Value returns the pointed-to string, or "" for nil.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
