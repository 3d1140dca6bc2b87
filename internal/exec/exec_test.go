package exec

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"testing"
)

func TestRun_SimpleCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test uses unix commands")
	}

	result, err := (&DefaultRunner{}).Run(context.Background(), "echo", "hello")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", result.ExitCode)
	}
	if result.Stdout != "hello\n" {
		t.Errorf("stdout = %q, want %q", result.Stdout, "hello\n")
	}
}

func TestRun_FailingCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test uses unix commands")
	}

	result, err := (&DefaultRunner{}).Run(context.Background(), "false")
	if err == nil {
		t.Fatal("expected error for failing command")
	}

	var cerr *CommandError
	if !errors.As(err, &cerr) {
		t.Fatalf("error type = %T, want *CommandError", err)
	}
	if cerr.ExitCode != 1 || result.ExitCode != 1 {
		t.Errorf("exit code = %d/%d, want 1", cerr.ExitCode, result.ExitCode)
	}
	if cerr.Command() != "false" {
		t.Errorf("command = %q", cerr.Command())
	}
}

func TestRun_CommandNotFound(t *testing.T) {
	_, err := (&DefaultRunner{}).Run(context.Background(), "nonexistent_command_12345")
	if err == nil {
		t.Fatal("expected error for missing command")
	}

	var cerr *CommandError
	if !errors.As(err, &cerr) {
		t.Fatalf("error type = %T, want *CommandError", err)
	}
	if cerr.ExitCode != -1 {
		t.Errorf("exit code = %d, want -1 for launch failure", cerr.ExitCode)
	}
}

func TestAttach_UsesConfiguredStreams(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test uses unix commands")
	}

	var out bytes.Buffer
	r := &DefaultRunner{Stdout: &out}
	if err := r.Attach(context.Background(), "echo", "attached"); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if out.String() != "attached\n" {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestAttach_FailingCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test uses unix commands")
	}

	err := (&DefaultRunner{Stdout: &bytes.Buffer{}}).Attach(context.Background(), "sh", "-c", "exit 3")
	var cerr *CommandError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want *CommandError", err)
	}
	if cerr.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", cerr.ExitCode)
	}
}

func TestCommandExists(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test uses unix commands")
	}

	if !CommandExists("echo") {
		t.Error("echo should exist")
	}
	if CommandExists("nonexistent_command_12345") {
		t.Error("nonexistent command should not exist")
	}
}

func TestCommandError_Message(t *testing.T) {
	err := &CommandError{Name: "cryptsetup", Args: []string{"open", "/dev/sda2", "cryptroot"}, ExitCode: 2, Stderr: "No key available\n"}
	want := `command "cryptsetup open /dev/sda2 cryptroot" exited with code 2: No key available`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestMockRunner(t *testing.T) {
	mock := &MockRunner{
		Results: map[string]Result{
			"blkid": {Stdout: "/dev/sda1: UUID=\"abc\"\n", ExitCode: 0},
		},
	}

	result, err := mock.Run(context.Background(), "blkid")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Stdout != "/dev/sda1: UUID=\"abc\"\n" {
		t.Errorf("stdout = %q", result.Stdout)
	}

	if _, err := mock.Run(context.Background(), "lsblk"); err == nil {
		t.Error("expected error for unexpected command")
	}
}

func TestMockRunner_Sequences(t *testing.T) {
	mock := &MockRunner{
		Results: map[string]Result{"arch-chroot /mnt passwd": {}},
		Sequences: map[string][]Result{
			"arch-chroot /mnt passwd": {{ExitCode: 10}},
		},
	}
	ctx := context.Background()

	err := mock.Attach(ctx, "arch-chroot", "/mnt", "passwd")
	var cerr *CommandError
	if !errors.As(err, &cerr) || cerr.ExitCode != 10 {
		t.Fatalf("first call error = %v, want exit code 10", err)
	}
	if err := mock.Attach(ctx, "arch-chroot", "/mnt", "passwd"); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if n := mock.Count("arch-chroot /mnt passwd"); n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
}

func TestMockRunner_AllowUnknown(t *testing.T) {
	mock := &MockRunner{AllowUnknown: true}
	if err := mock.Attach(context.Background(), "timedatectl", "set-ntp", "true"); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if len(mock.Calls) != 1 || mock.Calls[0] != "timedatectl set-ntp true" {
		t.Errorf("Calls = %v", mock.Calls)
	}
}
