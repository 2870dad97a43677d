package storage

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	meta := RunMetadata{ID: "drift_1", Profile: "drift", Steps: 2}
	if err := ExportJSON(&buf, meta, trace()); err != nil {
		t.Fatal(err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not json: %v", err)
	}
	if got.ID != "drift_1" || got.Profile != "drift" {
		t.Errorf("metadata = %+v", got.RunMetadata)
	}
	tr := trace()
	want := []ExportFrame{
		{Step: 1, Bodies: tr[0].States},
		{Step: 2, Bodies: tr[1].States},
	}
	if diff := cmp.Diff(want, got.Frames); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
}
