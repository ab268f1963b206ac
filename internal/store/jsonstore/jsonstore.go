package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/idilsaglam/todoview/internal/model"
)

// JSON array files of todos, the same shape the endpoint serves.
// Used as a fixture source for the file gateway and as the target of
// `todo export`. Nothing reads an export back on its own.

// ErrNotFound is returned by Load when the file does not exist.
var ErrNotFound = errors.New("todo file not found")

// LoadRaw returns the file contents undecoded so callers can validate
// them before mapping into model.Todo.
func LoadRaw(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return b, nil
}

func Load(path string) ([]model.Todo, error) {
	b, err := LoadRaw(path)
	if err != nil {
		return nil, err
	}
	var todos []model.Todo
	if err := json.Unmarshal(b, &todos); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return todos, nil
}

func Save(path string, todos []model.Todo) error {
	if todos == nil {
		todos = []model.Todo{}
	}
	b, err := json.MarshalIndent(todos, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
