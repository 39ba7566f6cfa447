package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
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

type RunMetadata struct {
	ID          string             `json:"id"`
	Source      string             `json:"source"`
	Timestamp   time.Time          `json:"timestamp"`
	IntervalMs  float64            `json:"interval_ms"`
	Duration    float64            `json:"duration"`
	Ticks       int                `json:"ticks"`
	SubSteps    int                `json:"sub_steps"`
	Balls       int                `json:"balls"`
	Trampolines int                `json:"trampolines"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding metadata.json, trace.csv and, when
// world is non-empty, the world file the run started from. meta.ID and
// meta.Timestamp are filled in and the ID is returned.
func (s *Store) Save(meta RunMetadata, trace []TraceRow, world []byte) (string, error) {
	meta.Timestamp = time.Now()
	meta.ID = fmt.Sprintf("%s_%d", runName(meta.Source), meta.Timestamp.UnixMilli())
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "trace.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if len(trace) > 0 {
		if err := gocsv.MarshalFile(&trace, csvFile); err != nil {
			return "", fmt.Errorf("writing trace: %w", err)
		}
	}

	if len(world) > 0 {
		if err := os.WriteFile(filepath.Join(runDir, "world.txt"), world, 0644); err != nil {
			return "", err
		}
	}

	return meta.ID, nil
}

// runName turns a source such as "preset:drop" or "worlds/a b.txt" into a
// directory-safe prefix.
func runName(source string) string {
	name := strings.TrimPrefix(source, "preset:")
	name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if name == "" || name == "." {
		return "run"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}

// List returns every readable run, newest first.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadTrace(runID string) ([]TraceRow, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "trace.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return []TraceRow{}, nil
	}

	var rows []TraceRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}
	return rows, nil
}

// LoadWorld returns the world file saved with a run.
func (s *Store) LoadWorld(runID string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.baseDir, runID, "world.txt"))
}
