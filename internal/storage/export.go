package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/seaglass/internal/dynamo"
)

// ExportData is a recorded run flattened into one JSON document.
type ExportData struct {
	RunMetadata
	Frames []ExportFrame `json:"frames"`
}

type ExportFrame struct {
	Step   int                `json:"step"`
	Bodies []dynamo.BodyState `json:"bodies"`
}

// ExportJSON writes meta and its trace to w as indented JSON.
func ExportJSON(w io.Writer, meta RunMetadata, trace []Sample) error {
	data := ExportData{
		RunMetadata: meta,
		Frames:      make([]ExportFrame, len(trace)),
	}
	for i, s := range trace {
		data.Frames[i] = ExportFrame{Step: s.Step, Bodies: s.States}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
