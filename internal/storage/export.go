package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Run   RunMetadata `json:"run"`
	Trace []TraceRow  `json:"trace"`
}

// ExportJSON writes the run and its trace as one JSON document to path, or
// to stdout when path is "-".
func ExportJSON(path string, meta RunMetadata, trace []TraceRow) error {
	if path == "-" {
		return writeExport(os.Stdout, meta, trace)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return writeExport(file, meta, trace)
}

func writeExport(w io.Writer, meta RunMetadata, trace []TraceRow) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Run: meta, Trace: trace})
}
