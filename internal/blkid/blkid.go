// Package blkid extracts volume identifiers from the output of blkid(8).
package blkid

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// ErrNotFound is returned when no listing line matches or the matching line
// carries no UUID.
var ErrNotFound = errors.New("identifier not found")

// FindUUID returns the UUID of the first device line in output that
// contains name. Lines look like
//
//	/dev/sda2: UUID="5c0f..." TYPE="crypto_LUKS" PARTUUID="9e1a..."
//
// name is matched as a plain substring, so both "sda2" and a mapper name
// such as "cryptroot" select their line.
func FindUUID(output, name string) (string, error) {
	for _, line := range strings.Split(output, "\n") {
		if name == "" || !strings.Contains(line, name) {
			continue
		}
		return uuidFromLine(line, name)
	}
	return "", fmt.Errorf("%w: no device matching %q", ErrNotFound, name)
}

func uuidFromLine(line, name string) (string, error) {
	// the device path ends at the first ": "; everything after is KEY="value"
	fields := line
	if i := strings.Index(line, ": "); i >= 0 {
		fields = line[i+2:]
	}

	tokens, err := shlex.Split(fields)
	if err != nil {
		return "", fmt.Errorf("parsing blkid line for %q: %w", name, err)
	}
	for _, tok := range tokens {
		k, v, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}
		// shlex strips the quotes around v
		if strings.EqualFold(k, "UUID") && v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: device matching %q has no UUID", ErrNotFound, name)
}
