// Package production provides production integrations: snapshot persistence,
// transition publishing, visualization.
package production

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/comalice/superloop/realtime"
)

// Persister stores loop snapshots keyed by run id.
type Persister interface {
	Save(ctx context.Context, snapshot realtime.Snapshot) error
	Load(ctx context.Context, runID string) (realtime.Snapshot, error)
}

var ErrInvalidSnapshot = errors.New("invalid snapshot")

// JSONPersister is a file-based persister using JSON serialization.
type JSONPersister struct {
	dir string
}

// NewJSONPersister creates a JSONPersister, ensuring the directory exists.
func NewJSONPersister(dir string) (*JSONPersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &JSONPersister{dir: dir}, nil
}

func (p *JSONPersister) Save(ctx context.Context, snapshot realtime.Snapshot) error {
	if err := validate(snapshot); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}

	fn := filepath.Join(p.dir, snapshot.RunID+".json")
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}

	return nil
}

func (p *JSONPersister) Load(ctx context.Context, runID string) (realtime.Snapshot, error) {
	data, err := readSnapshot(filepath.Join(p.dir, runID+".json"), runID)
	if err != nil {
		return realtime.Snapshot{}, err
	}

	var snapshot realtime.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return realtime.Snapshot{}, fmt.Errorf("json unmarshal: %w", err)
	}
	if err := validate(snapshot); err != nil {
		return realtime.Snapshot{}, fmt.Errorf("after load: %w", err)
	}

	return snapshot, nil
}

// YAMLPersister is a file-based persister using YAML serialization.
type YAMLPersister struct {
	dir string
}

// NewYAMLPersister creates a YAMLPersister, ensuring the directory exists.
func NewYAMLPersister(dir string) (*YAMLPersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &YAMLPersister{dir: dir}, nil
}

func (p *YAMLPersister) Save(ctx context.Context, snapshot realtime.Snapshot) error {
	if err := validate(snapshot); err != nil {
		return err
	}

	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}

	fn := filepath.Join(p.dir, snapshot.RunID+".yaml")
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}

	return nil
}

func (p *YAMLPersister) Load(ctx context.Context, runID string) (realtime.Snapshot, error) {
	data, err := readSnapshot(filepath.Join(p.dir, runID+".yaml"), runID)
	if err != nil {
		return realtime.Snapshot{}, err
	}

	var snapshot realtime.Snapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return realtime.Snapshot{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := validate(snapshot); err != nil {
		return realtime.Snapshot{}, fmt.Errorf("after load: %w", err)
	}

	return snapshot, nil
}

func readSnapshot(fn, runID string) ([]byte, error) {
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("run %q: %w", runID, os.ErrNotExist)
		}
		return nil, fmt.Errorf("read %s: %w", fn, err)
	}
	return data, nil
}

// validate checks the run id names a file safely and the task list is usable.
func validate(s realtime.Snapshot) error {
	if _, err := uuid.Parse(s.RunID); err != nil {
		return fmt.Errorf("%w: run id %q: %v", ErrInvalidSnapshot, s.RunID, err)
	}
	seen := make(map[string]bool, len(s.Tasks))
	for _, t := range s.Tasks {
		if t.Name == "" {
			return fmt.Errorf("%w: unnamed task", ErrInvalidSnapshot)
		}
		if seen[t.Name] {
			return fmt.Errorf("%w: duplicate task %q", ErrInvalidSnapshot, t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}
