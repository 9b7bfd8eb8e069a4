package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds a generation's starting population for replay.
type Snapshot struct {
	Version    int    `json:"version"`
	RunID      string `json:"run_id"`
	Seed       int64  `json:"seed"`
	Generation int    `json:"generation"`

	Animals []AnimalState `json:"animals"`
	Foods   []FoodState   `json:"foods"`

	Milestone *Milestone `json:"milestone,omitempty"`
}

// AnimalState holds one animal's pose and genome.
type AnimalState struct {
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Rotation float64   `json:"rotation"`
	Genome   []float64 `json:"genome"`
}

// FoodState holds one food item's position.
type FoodState struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Genomes returns the snapshot's genomes in animal order.
func (s *Snapshot) Genomes() [][]float64 {
	genomes := make([][]float64, len(s.Animals))
	for i, a := range s.Animals {
		genomes[i] = a.Genome
	}
	return genomes
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename
	name := fmt.Sprintf("snapshot_gen%d", snapshot.Generation)
	if snapshot.Milestone != nil {
		// Sanitize milestone type for filename
		sanitized := strings.ReplaceAll(string(snapshot.Milestone.Type), " ", "_")
		name = fmt.Sprintf("snapshot_gen%d_%s", snapshot.Generation, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
