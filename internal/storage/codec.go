package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"fuzzylight/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// Stamp sets the current schema and codec versions on a record.
func Stamp(run *model.RunRecord) {
	run.SchemaVersion = CurrentSchemaVersion
	run.CodecVersion = CurrentCodecVersion
}

func EncodeRun(run model.RunRecord) ([]byte, error) {
	if run.ID == "" {
		return nil, errors.New("run id is required")
	}
	return json.Marshal(run)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, fmt.Errorf("run %s: %w", run.ID, err)
	}
	return run, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return fmt.Errorf("%w: schema=%d codec=%d", ErrVersionMismatch, v.SchemaVersion, v.CodecVersion)
	}
	return nil
}

// cloneRun deep-copies the maps and slices of a record so stored runs are
// not aliased by callers.
func cloneRun(run model.RunRecord) model.RunRecord {
	out := run
	out.Inputs = cloneValues(run.Inputs)
	out.Outputs = cloneValues(run.Outputs)
	out.Activations = append([]model.RuleActivation(nil), run.Activations...)
	out.Empty = append([]string(nil), run.Empty...)
	return out
}

func cloneValues(in map[string]float64) map[string]float64 {
	if in == nil {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
