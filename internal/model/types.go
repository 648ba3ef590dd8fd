package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RuleActivation is the firing strength of one rule in a run.
type RuleActivation struct {
	RuleID   string  `json:"rule_id"`
	Label    string  `json:"label,omitempty"`
	Strength float64 `json:"strength"`
}

// RunRecord is one persisted evaluation of the lamp controller.
type RunRecord struct {
	VersionedRecord
	ID           string             `json:"id"`
	CreatedAtUTC time.Time          `json:"created_at_utc"`
	Scenario     string             `json:"scenario,omitempty"`
	Inputs       map[string]float64 `json:"inputs"`
	Outputs      map[string]float64 `json:"outputs"`
	Activations  []RuleActivation   `json:"activations"`
	Empty        []string           `json:"empty,omitempty"`
}
