package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
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
	ID        string             `json:"id"`
	Scene     string             `json:"scene"`
	Timestamp time.Time          `json:"timestamp"`
	Backend   string             `json:"backend"`
	Mode      string             `json:"mode"`
	Dt        float64            `json:"dt"`
	Steps     int                `json:"steps"`
	Bodies    int                `json:"bodies"`
	Joints    int                `json:"joints"`
	Digest    string             `json:"digest"`
	Metrics   map[string]float64 `json:"metrics"`
}

// FormatDigest renders a world digest the way run metadata stores it.
func FormatDigest(d uint64) string {
	return fmt.Sprintf("%016x", d)
}

// Save writes metadata.json and states.csv into a new run directory and
// returns the run id. ID and Timestamp in meta are filled in.
func (s *Store) Save(meta RunMetadata, traj *Trajectory) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Scene, now.Unix())
	runDir := filepath.Join(s.baseDir, runID)
	for n := 2; ; n++ {
		if _, err := os.Stat(runDir); err != nil {
			break
		}
		runID = fmt.Sprintf("%s_%d_%d", meta.Scene, now.Unix(), n)
		runDir = filepath.Join(s.baseDir, runID)
	}

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now

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

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if traj == nil || len(traj.States) == 0 {
		w.Flush()
		return runID, w.Error()
	}

	if err := w.Write(append([]string{"time"}, traj.Columns...)); err != nil {
		return "", err
	}
	for i, state := range traj.States {
		row := make([]string, 0, len(state)+1)
		row = append(row, strconv.FormatFloat(traj.Times[i], 'f', 6, 64))
		for _, val := range state {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return runID, w.Error()
}

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

// LoadTrajectory reads back the states.csv of a run.
func (s *Store) LoadTrajectory(runID string) (*Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	traj := &Trajectory{}
	if len(records) < 2 {
		return traj, nil
	}
	traj.Columns = records[0][1:]

	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}

		state := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("run %s: time %s: %w", runID, record[0], err)
			}
			state = append(state, val)
		}
		traj.Times = append(traj.Times, t)
		traj.States = append(traj.States, state)
	}
	return traj, nil
}
