package clientstate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Store holds the current state and the file it persists to. Dispatch is
// serialized.
type Store struct {
	mu    sync.Mutex
	path  string
	state State
}

// Load opens the store at path. A missing file yields the initial state.
func Load(path string) (*Store, error) {
	st := &Store{path: path, state: Initial()}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read client state: %w", err)
	}
	s, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	st.state = s
	return st, nil
}

// State returns a copy of the current state.
func (st *Store) State() State {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state.clone()
}

// Dispatch applies a and returns the new state.
func (st *Store) Dispatch(a Action) State {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.state = Reduce(st.state, a)
	return st.state.clone()
}

// Save writes the state atomically through a temp file in the same
// directory.
func (st *Store) Save() error {
	st.mu.Lock()
	data, err := Marshal(st.state)
	st.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode client state: %w", err)
	}

	dir := filepath.Dir(st.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".clientstate-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write client state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write client state: %w", err)
	}
	if err := os.Rename(tmp.Name(), st.path); err != nil {
		return fmt.Errorf("replace client state: %w", err)
	}
	return nil
}
