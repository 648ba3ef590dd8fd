package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Scenario is a named set of crisp sensor readings.
type Scenario struct {
	Name   string             `yaml:"name"`
	Inputs map[string]float64 `yaml:"inputs"`
}

type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

func LoadScenarios(path string) ([]Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenarios: %w", err)
	}
	return ParseScenarios(raw)
}

// ParseScenarios decodes a scenario document. Unnamed scenarios are named
// by position ("scenario-1", ...); names must be unique.
func ParseScenarios(raw []byte) ([]Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var file scenarioFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("scenario file is empty")
		}
		return nil, fmt.Errorf("decode scenarios: %w", err)
	}
	if len(file.Scenarios) == 0 {
		return nil, errors.New("scenario file defines no scenarios")
	}

	seen := make(map[string]struct{}, len(file.Scenarios))
	for i := range file.Scenarios {
		sc := &file.Scenarios[i]
		if sc.Name == "" {
			sc.Name = "scenario-" + strconv.Itoa(i+1)
		}
		if _, dup := seen[sc.Name]; dup {
			return nil, fmt.Errorf("duplicate scenario %q", sc.Name)
		}
		seen[sc.Name] = struct{}{}
		if len(sc.Inputs) == 0 {
			return nil, fmt.Errorf("scenario %q has no inputs", sc.Name)
		}
	}
	return file.Scenarios, nil
}
