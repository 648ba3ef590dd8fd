package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioDoc = `
scenarios:
  - name: busy evening
    inputs:
      ambient_light: 170
      distance: 20
      traffic_activity: 20
      pedestrian_activity: 480
      visibility: 2200
      time_of_day: 20
  - inputs:
      ambient_light: 15
      distance: 12
      traffic_activity: 50
      pedestrian_activity: 10
      visibility: 1800
      time_of_day: 22.5
`

func TestLoadScenarios(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenarioDoc), 0o644))

	got, err := LoadScenarios(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "busy evening", got[0].Name)
	assert.Equal(t, 480.0, got[0].Inputs["pedestrian_activity"])
	assert.Equal(t, "scenario-2", got[1].Name)
	assert.Equal(t, 22.5, got[1].Inputs["time_of_day"])
}

func TestParseScenariosRejects(t *testing.T) {
	cases := map[string]string{
		"empty":     ``,
		"none":      `scenarios: []`,
		"no inputs": "scenarios:\n  - name: a\n",
		"duplicate": "scenarios:\n  - name: a\n    inputs: {distance: 1}\n  - name: a\n    inputs: {distance: 2}\n",
		"unknown":   "scenarios:\n  - name: a\n    weather: fog\n    inputs: {distance: 1}\n",
		"not float": "scenarios:\n  - name: a\n    inputs: {distance: near}\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScenarios([]byte(raw))
			assert.Error(t, err)
		})
	}
}
