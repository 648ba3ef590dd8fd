package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fuzzylight/internal/model"
)

func TestDecodeRunFixture(t *testing.T) {
	data, err := os.ReadFile(fixturePath("run_record_v1.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	run, err := DecodeRun(data)
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	if run.ID != "2f0c6a0e-8d2b-4c55-9a43-1d8b6f5e7a10" {
		t.Fatalf("unexpected run id: %s", run.ID)
	}
	if run.Scenario != "busy evening" {
		t.Fatalf("unexpected scenario: %s", run.Scenario)
	}
	if !run.CreatedAtUTC.Equal(time.Date(2026, 3, 14, 20, 5, 0, 0, time.UTC)) {
		t.Fatalf("unexpected created_at: %s", run.CreatedAtUTC)
	}
	if len(run.Inputs) != 6 || run.Inputs["pedestrian_activity"] != 480 {
		t.Fatalf("unexpected inputs: %+v", run.Inputs)
	}
	if len(run.Activations) != 2 || run.Activations[1].RuleID != "R9" {
		t.Fatalf("unexpected activations: %+v", run.Activations)
	}
}

func TestRunRoundTrip(t *testing.T) {
	run := testRun("run-1", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	run.Empty = []string{"color_temperature"}

	data, err := EncodeRun(run)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeRun(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != run.ID || !got.CreatedAtUTC.Equal(run.CreatedAtUTC) {
		t.Fatalf("unexpected run: %+v", got)
	}
	if got.Outputs["brightness"] != run.Outputs["brightness"] {
		t.Fatalf("unexpected outputs: %+v", got.Outputs)
	}
	if len(got.Empty) != 1 || got.Empty[0] != "color_temperature" {
		t.Fatalf("unexpected empty list: %+v", got.Empty)
	}
}

func TestDecodeRunVersionMismatch(t *testing.T) {
	run := testRun("run-1", time.Now().UTC())
	run.SchemaVersion = CurrentSchemaVersion + 1

	data, err := EncodeRun(run)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, err = DecodeRun(data)
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}

func TestEncodeRunRequiresID(t *testing.T) {
	if _, err := EncodeRun(model.RunRecord{}); err == nil {
		t.Fatal("expected missing id error")
	}
}

func TestDecodeRunMalformed(t *testing.T) {
	if _, err := DecodeRun([]byte(`{"id":`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func fixturePath(name string) string {
	return filepath.Join("..", "..", "testdata", "fixtures", name)
}

func testRun(id string, at time.Time) model.RunRecord {
	run := model.RunRecord{
		ID:           id,
		CreatedAtUTC: at,
		Inputs:       map[string]float64{"ambient_light": 170, "distance": 20},
		Outputs:      map[string]float64{"brightness": 16607.63},
		Activations:  []model.RuleActivation{{RuleID: "R9", Strength: 5.0 / 17.0}},
	}
	Stamp(&run)
	return run
}
