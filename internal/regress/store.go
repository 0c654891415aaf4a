package regress

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/openpdk/sg13/internal/layout"
	"github.com/openpdk/sg13/internal/tech"
	"github.com/openpdk/sg13/internal/verify"
)

// MissingReferenceError reports a check against a snapshot that was
// never recorded. Check mode treats this as a hard failure; only
// update mode creates snapshots.
type MissingReferenceError struct {
	Name string
	Path string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("no reference snapshot for %s (expected %s)", e.Name, e.Path)
}

// IsMissingReference reports whether err wraps a MissingReferenceError.
func IsMissingReference(err error) (*MissingReferenceError, bool) {
	var m *MissingReferenceError
	ok := errors.As(err, &m)
	return m, ok
}

// Store is a directory of golden cell snapshots, one canonical JSON
// file per cell name.
type Store struct {
	dir   string
	stack *tech.Stack
}

// NewStore opens (creating if needed) a snapshot directory.
func NewStore(dir string, stack *tech.Stack) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &Store{dir: dir, stack: stack}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Load reads the snapshot for a cell name.
func (s *Store) Load(name string) (*layout.Cell, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, &MissingReferenceError{Name: name, Path: s.path(name)}
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", name, err)
	}
	cell, err := layout.UnmarshalCell(data, s.stack)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", name, err)
	}
	return cell, nil
}

// Check compares a synthesized cell against its snapshot and returns
// the full equivalence report. A missing snapshot is an error; check
// mode never writes.
func (s *Store) Check(cell *layout.Cell) (*verify.Result, error) {
	ref, err := s.Load(cell.Name)
	if err != nil {
		return nil, err
	}
	if ref.Key != cell.Key {
		return nil, fmt.Errorf("snapshot %s records key %q, cell has %q", cell.Name, ref.Key, cell.Key)
	}
	return verify.Compare(ref, cell), nil
}

// Update writes (or overwrites) the snapshot for a cell. The write is
// atomic: a crashed run never leaves a half-written snapshot behind.
func (s *Store) Update(cell *layout.Cell) error {
	data, err := layout.MarshalCanonical(cell)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", cell.Name, err)
	}
	tmp, err := os.CreateTemp(s.dir, "."+cell.Name+".*")
	if err != nil {
		return fmt.Errorf("stage snapshot %s: %w", cell.Name, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot %s: %w", cell.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write snapshot %s: %w", cell.Name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(cell.Name)); err != nil {
		return fmt.Errorf("commit snapshot %s: %w", cell.Name, err)
	}
	return nil
}

// Names lists the recorded snapshot names, sorted.
func (s *Store) Names() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}
