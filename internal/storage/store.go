package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/chaser/internal/sim"
)

var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile = "metadata.json"
	ticksFile    = "ticks.csv"
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

type GainsMeta struct {
	SpeedGain         float64 `json:"speed_gain"`
	AngularGain       float64 `json:"angular_gain"`
	DistanceTolerance float64 `json:"distance_tolerance"`
	WrapHeading       bool    `json:"wrap_heading"`
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Kind       string             `json:"kind"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Rate       float64            `json:"rate"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Motion     string             `json:"motion"`
	Gains      GainsMeta          `json:"gains"`
	Ticks      int                `json:"ticks"`
	Captured   bool               `json:"captured"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes a run directory and returns its id. A missing ID or
// Timestamp is filled in.
func (s *Store) Save(meta RunMetadata, ticks []sim.Tick) (string, error) {
	if meta.ID == "" {
		meta.ID = uuid.New().String()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}
	meta.Ticks = len(ticks)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, ticksFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	for _, t := range ticks {
		if err := w.Write(Record(t).row()); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
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

// Resolve expands a unique id prefix to a full run id.
func (s *Store) Resolve(prefix string) (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	var match []string
	for _, r := range runs {
		if r.ID == prefix {
			return r.ID, nil
		}
		if strings.HasPrefix(r.ID, prefix) {
			match = append(match, r.ID)
		}
	}
	switch len(match) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return match[0], nil
	default:
		return "", fmt.Errorf("storage: run id %q is ambiguous (%d matches)", prefix, len(match))
	}
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
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadTicks(runID string) ([]sim.Tick, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, ticksFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Tick{}, nil
	}

	ticks := make([]sim.Tick, 0, len(records)-1)
	for i, row := range records[1:] {
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", ticksFile, i+2, err)
		}
		t, err := rec.Tick()
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", ticksFile, i+2, err)
		}
		ticks = append(ticks, t)
	}

	return ticks, nil
}
