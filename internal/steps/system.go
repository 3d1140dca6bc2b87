package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/druarnfield/archie/internal/fileedit"
	"github.com/druarnfield/archie/internal/sequencer"
	"github.com/druarnfield/archie/internal/state"
)

func (in *installer) timeZone(ctx context.Context, s state.State) (state.State, error) {
	zone, err := in.Prompt.Text(ctx, "Enter your time zone. (For example: Europe/London): ")
	if err != nil {
		return s, err
	}
	zone = strings.Trim(strings.TrimSpace(zone), "/")
	if !strings.Contains(zone, "/") {
		return s, sequencer.InvalidInput("please enter a forward slash (/) between the continent and city name")
	}
	return s, in.chroot(ctx, "ln", "-sf", "/usr/share/zoneinfo/"+zone, "/etc/localtime")
}

func (in *installer) hardwareClock(ctx context.Context, s state.State) (state.State, error) {
	return s, in.chroot(ctx, "hwclock", "--systohc")
}

func (in *installer) locale(ctx context.Context, s state.State) (state.State, error) {
	if err := in.patch(in.target("etc", "locale.gen"), fileedit.R("#en_US.UTF-8 UTF-8", "en_US.UTF-8 UTF-8")); err != nil {
		return s, err
	}
	return s, in.chroot(ctx, "locale-gen")
}

func (in *installer) hostname(ctx context.Context, s state.State) (state.State, error) {
	name, err := in.askName(ctx, "Enter your host name: ")
	if err != nil {
		return s, err
	}
	return s, fileedit.WriteFile(in.target("etc", "hostname"), name+"\n")
}

// hosts reads the host name back from the target so that it also works
// when the run resumes between the two steps.
func (in *installer) hosts(_ context.Context, s state.State) (state.State, error) {
	content, err := fileedit.ReadFile(in.target("etc", "hostname"))
	if err != nil {
		return s, err
	}
	name := strings.TrimSpace(content)
	if name == "" {
		return s, errors.New("host name file is empty")
	}
	return s, fileedit.WriteFile(in.target("etc", "hosts"), hostsFile(name))
}

func hostsFile(name string) string {
	return fmt.Sprintf("127.0.0.1\tlocalhost\n::1 \t\tlocalhost\n127.0.1.1\t%s.localdomain\t%s\n", name, name)
}

func (in *installer) rootPassword(ctx context.Context, s state.State) (state.State, error) {
	return s, in.chroot(ctx, "passwd")
}

func (in *installer) createUser(ctx context.Context, s state.State) (state.State, error) {
	name, err := in.Prompt.Text(ctx, "Enter your username: ")
	if err != nil {
		return s, err
	}
	if name = strings.TrimSpace(name); name == "" {
		return s, sequencer.InvalidInput("the username must not be empty")
	}
	if err := in.chroot(ctx, "useradd", "-m", name); err != nil {
		return s, err
	}
	s.Username = name
	return s, nil
}

func (in *installer) userPassword(ctx context.Context, s state.State) (state.State, error) {
	return s, in.chroot(ctx, "passwd", s.Username)
}

func (in *installer) wheelGroup(ctx context.Context, s state.State) (state.State, error) {
	return s, in.chroot(ctx, "usermod", "-aG", "wheel", s.Username)
}

func (in *installer) sudoers(_ context.Context, s state.State) (state.State, error) {
	return s, in.patch(in.target("etc", "sudoers"), fileedit.R("# %wheel ALL=(ALL:ALL) ALL", "%wheel ALL=(ALL:ALL) ALL"))
}
