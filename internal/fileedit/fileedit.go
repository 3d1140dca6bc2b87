// Package fileedit makes the small configuration-file edits an installation
// needs: literal substring replacement, whole-file writes, and appending a
// line once.
package fileedit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Replacement replaces every literal occurrence of From with To.
type Replacement struct {
	From string
	To   string
}

// R is shorthand for building a Replacement.
func R(from, to string) Replacement {
	return Replacement{From: from, To: to}
}

// Apply performs the replacements on content in order. There is no regex
// interpretation; each From is matched literally.
func Apply(content string, repls ...Replacement) string {
	for _, r := range repls {
		if r.From == "" {
			continue
		}
		content = strings.ReplaceAll(content, r.From, r.To)
	}
	return content
}

// Patch reads path, applies the replacements in order and writes the result
// back. Running the same Patch twice is a no-op the second time as long as
// no To contains its own From.
func Patch(path string, repls ...Replacement) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("patching %s: %w", path, err)
	}

	content := string(data)
	patched := Apply(content, repls...)
	if patched == content {
		return nil
	}
	return WriteFile(path, patched)
}

// WriteFile replaces the content of path through a temporary file in the
// same directory, keeping the mode of an existing file.
func WriteFile(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// AppendLine adds line to the end of path unless an identical line is
// already present. The file must exist.
func AppendLine(path, line string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("appending to %s: %w", path, err)
	}

	content := string(data)
	for _, l := range strings.Split(content, "\n") {
		if l == line {
			return nil
		}
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return WriteFile(path, content+line+"\n")
}

// ReadFile returns the content of path as a string.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
