package cartstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultRecordName names the persisted cart record.
const DefaultRecordName = "cart-storage"

const recordVersion = 0

type record struct {
	State   recordState `json:"state"`
	Version int         `json:"version"`
}

type recordState struct {
	Items []Line `json:"items"`
}

// FileStorage keeps the cart as a JSON record at <Dir>/<Name>.json.
type FileStorage struct {
	Dir  string
	Name string
}

func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{Dir: dir, Name: DefaultRecordName}
}

func (f *FileStorage) path() string {
	name := f.Name
	if name == "" {
		name = DefaultRecordName
	}
	return filepath.Join(f.Dir, name+".json")
}

// Load returns the stored lines; a missing record is an empty cart.
func (f *FileStorage) Load() ([]Line, error) {
	raw, err := os.ReadFile(f.path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cart record: %w", err)
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode cart record: %w", err)
	}
	return rec.State.Items, nil
}

// Save replaces the record atomically.
func (f *FileStorage) Save(lines []Line) error {
	if lines == nil {
		lines = []Line{}
	}
	payload, err := json.Marshal(record{State: recordState{Items: lines}, Version: recordVersion})
	if err != nil {
		return fmt.Errorf("encode cart record: %w", err)
	}
	if err := os.MkdirAll(f.Dir, 0o700); err != nil {
		return fmt.Errorf("create cart dir: %w", err)
	}
	tmp, err := os.CreateTemp(f.Dir, ".cart-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cart record: %w", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cart record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close cart record: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path()); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace cart record: %w", err)
	}
	return nil
}
