// Package storage keeps recorded headless runs on disk, one directory per
// run holding metadata.json and trace.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/seaglass/internal/dynamo"
)

var traceHeader = []string{"step", "id", "x", "y", "vx", "vy", "angle", "radius"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Profile   string             `json:"profile"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Steps     int                `json:"steps"`
	StepHz    float64            `json:"step_hz"`
	Bodies    int                `json:"bodies"`
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Scenario  string             `json:"scenario,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Sample is the scene as it stood after one step.
type Sample struct {
	Step   int
	States []dynamo.BodyState
}

// Save writes meta and trace under a new run id and returns it. The id is
// derived from the profile and meta.Timestamp.
func (s *Store) Save(meta RunMetadata, trace []Sample) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.ID = fmt.Sprintf("%s_%d", meta.Profile, meta.Timestamp.UnixNano())
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}
	if err := writeTrace(filepath.Join(runDir, "trace.csv"), trace); err != nil {
		return "", fmt.Errorf("write trace: %w", err)
	}
	return meta.ID, nil
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

func writeTrace(path string, trace []Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(traceHeader); err != nil {
		return err
	}
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	for _, smp := range trace {
		step := strconv.Itoa(smp.Step)
		for _, b := range smp.States {
			row := []string{step, b.ID, num(b.Pos.X), num(b.Pos.Y), num(b.Vel.X), num(b.Vel.Y), num(b.Angle), num(b.Radius)}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
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
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadTrace reads a run's trace back, grouped by step in file order.
// Malformed rows are skipped.
func (s *Store) LoadTrace(runID string) ([]Sample, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "trace.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	var out []Sample
	for _, rec := range records[min(1, len(records)):] {
		if len(rec) != len(traceHeader) {
			continue
		}
		step, err := strconv.Atoi(rec[0])
		if err != nil {
			continue
		}
		var vals [6]float64
		ok := true
		for i := range vals {
			if vals[i], err = strconv.ParseFloat(rec[i+2], 64); err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if len(out) == 0 || out[len(out)-1].Step != step {
			out = append(out, Sample{Step: step})
		}
		last := &out[len(out)-1]
		last.States = append(last.States, dynamo.BodyState{
			ID:     rec[1],
			Pos:    dynamo.V(vals[0], vals[1]),
			Vel:    dynamo.V(vals[2], vals[3]),
			Angle:  vals[4],
			Radius: vals[5],
		})
	}
	return out, nil
}

// MeanSpeeds returns the mean body speed of each sample.
func MeanSpeeds(trace []Sample) []float64 {
	out := make([]float64, len(trace))
	for i, smp := range trace {
		if len(smp.States) == 0 {
			continue
		}
		sum := 0.0
		for _, b := range smp.States {
			sum += b.Speed()
		}
		out[i] = sum / float64(len(smp.States))
	}
	return out
}
