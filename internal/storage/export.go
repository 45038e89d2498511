package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Run     RunMetadata `json:"run"`
	Columns []string    `json:"columns"`
	Times   []float64   `json:"times"`
	States  [][]float64 `json:"states"`
}

func newExport(meta RunMetadata, traj *Trajectory) ExportData {
	data := ExportData{Run: meta}
	if traj != nil {
		data.Columns = traj.Columns
		data.Times = traj.Times
		data.States = traj.States
	}
	return data
}

func ExportJSONTo(w io.Writer, meta RunMetadata, traj *Trajectory) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExport(meta, traj))
}

func ExportJSON(path string, meta RunMetadata, traj *Trajectory) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSONTo(file, meta, traj)
}
