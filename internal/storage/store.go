// Package storage persists simulation runs as a directory per run holding
// metadata.json and telemetry.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/swervesim/internal/sim"
)

var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile  = "metadata.json"
	telemetryFile = "telemetry.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo describes how a run was produced.
type RunInfo struct {
	Scenario   string  `json:"scenario"`
	Preset     string  `json:"preset"`
	Strategy   string  `json:"strategy"`
	Integrator string  `json:"integrator"`
	Period     float64 `json:"period"`
	Duration   float64 `json:"duration"`
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	RunInfo
	Steps   int                `json:"steps"`
	Metrics map[string]float64 `json:"metrics"`
}

func newRunID(name string) string {
	if name == "" {
		name = "run"
	}
	return fmt.Sprintf("%s_%s_%s", name, time.Now().Format("20060102T150405"), uuid.NewString()[:8])
}

func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	runID := newRunID(info.Scenario)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Timestamp: time.Now(),
		RunInfo:   info,
		Steps:     len(result.Samples),
		Metrics:   result.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	if err := writeTelemetry(filepath.Join(runDir, telemetryFile), result.Samples); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTelemetry(path string, samples []sim.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns()); err != nil {
		return err
	}
	for _, smp := range samples {
		if err := w.Write(formatRow(smp)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("read %s metadata: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]sim.Sample, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, telemetryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Sample{}, nil
	}

	samples := make([]sim.Sample, 0, len(records)-1)
	for i, rec := range records[1:] {
		smp, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", telemetryFile, i+2, err)
		}
		samples = append(samples, smp)
	}
	return samples, nil
}

// Path returns the directory of a run.
func (s *Store) Path(runID string) string {
	return filepath.Join(s.baseDir, runID)
}
