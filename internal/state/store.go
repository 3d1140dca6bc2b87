package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store persists a State as a JSON document at a fixed path.
type Store struct {
	path string
}

// NewStore returns a Store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the record.
func (st *Store) Path() string {
	return st.path
}

// Load reads the persisted record. It returns ErrNotFound when no record
// exists and an error wrapping ErrCorrupt when the record cannot be decoded
// or violates its invariants.
func (st *Store) Load() (State, error) {
	data, err := os.ReadFile(st.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return State{}, ErrNotFound
		}
		return State{}, fmt.Errorf("reading %s: %w", st.path, err)
	}

	var s State
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return State{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, st.path, err)
	}
	if dec.More() {
		return State{}, fmt.Errorf("%w: %s: trailing data after record", ErrCorrupt, st.path)
	}
	if err := s.Validate(); err != nil {
		return State{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, st.path, err)
	}
	return s, nil
}

// Save writes the record to a temporary file in the same directory and
// renames it over the previous one, so a concurrent Load sees either the
// old record or the new one.
func (st *Store) Save(s State) error {
	dir := filepath.Dir(st.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, filepath.Base(st.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("saving state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("saving state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	if err := os.Rename(tmpName, st.path); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}

// Clear deletes the record. A missing record is not an error.
func (st *Store) Clear() error {
	if err := os.Remove(st.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing state: %w", err)
	}
	return nil
}
