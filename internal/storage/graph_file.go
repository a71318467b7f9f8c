package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"txflow/internal/model"
)

// GraphFileSuffix is appended to the graph name to form the output file name.
const GraphFileSuffix = "_graph.json"

// GraphFileStorage writes each graph to <dir>/<name>_graph.json.
type GraphFileStorage struct {
	dir string
}

func NewGraphFileStorage(dir string) *GraphFileStorage {
	return &GraphFileStorage{dir: dir}
}

// Path returns the file a graph with the given name is written to.
func (s *GraphFileStorage) Path(name string) string {
	return filepath.Join(s.dir, name+GraphFileSuffix)
}

// PutGraph writes the graph atomically through a temporary file.
func (s *GraphFileStorage) PutGraph(_ context.Context, name string, g *model.Graph) error {
	if name == "" {
		return fmt.Errorf("graph name required")
	}
	if g == nil {
		return fmt.Errorf("graph is nil")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal graph: %w", err)
	}

	path := s.Path(name)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write graph tmp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename graph: %w", err)
	}
	return nil
}

// ReadGraphFile loads a graph previously written by PutGraph.
func ReadGraphFile(path string) (*model.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}
	var g model.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse graph: %w", err)
	}
	return &g, nil
}
