// Package lamp defines the street-lamp control rule base: six sensor inputs,
// two lamp outputs and the sixteen-rule bank.
package lamp

import (
	"fmt"

	"fuzzylight/internal/fuzzy"
	"fuzzylight/internal/membership"
)

// Input variables.
const (
	AmbientLight       = "ambient_light"
	Distance           = "distance"
	TrafficActivity    = "traffic_activity"
	PedestrianActivity = "pedestrian_activity"
	Visibility         = "visibility"
	TimeOfDay          = "time_of_day"
)

// Output variables.
const (
	Brightness       = "brightness"
	ColorTemperature = "color_temperature"
)

type termSpec struct {
	name   string
	shape  string
	params []float64
}

type variableSpec struct {
	name     string
	universe fuzzy.Universe
	terms    []termSpec
}

// Ambient light in lux, distance in metres, activity per hour, visibility in
// metres, time of day in hours, brightness in lumens, colour temperature in kelvin.
var inputSpecs = []variableSpec{
	{
		name:     AmbientLight,
		universe: fuzzy.Universe{Min: 0, Max: 200, Step: 0.1},
		terms: []termSpec{
			{"very dark", "trimf", []float64{0, 10, 20}},
			{"dark", "trimf", []float64{10, 20, 30}},
			{"moderate", "trimf", []float64{20, 85, 150}},
			{"bright", "trimf", []float64{100, 150, 200}},
			{"very bright", "trapmf", []float64{150, 175, 200, 200}},
		},
	},
	{
		name:     Distance,
		universe: fuzzy.Universe{Min: 0, Max: 110, Step: 0.1},
		terms: []termSpec{
			{"very close", "trimf", []float64{0, 0, 10}},
			{"close", "trimf", []float64{5, 13, 20}},
			{"moderate", "trimf", []float64{15, 32, 50}},
			{"far", "trimf", []float64{40, 70, 100}},
			{"very far", "trapmf", []float64{80, 100, 110, 110}},
		},
	},
	{
		name:     TrafficActivity,
		universe: fuzzy.Universe{Min: 0, Max: 900, Step: 1},
		terms: []termSpec{
			{"light", "trimf", []float64{0, 200, 400}},
			{"moderate", "trimf", []float64{200, 400, 600}},
			{"heavy", "trapmf", []float64{500, 700, 900, 900}},
		},
	},
	{
		name:     PedestrianActivity,
		universe: fuzzy.Universe{Min: 0, Max: 500, Step: 1},
		terms: []termSpec{
			{"light", "trimf", []float64{0, 0, 100}},
			{"moderate", "trimf", []float64{50, 150, 250}},
			{"heavy", "trimf", []float64{200, 500, 500}},
		},
	},
	{
		name:     Visibility,
		universe: fuzzy.Universe{Min: 0, Max: 2500, Step: 1},
		terms: []termSpec{
			{"very poor", "trimf", []float64{0, 25, 100}},
			{"poor", "trimf", []float64{50, 125, 350}},
			{"moderate", "trimf", []float64{300, 750, 1200}},
			{"clear", "trimf", []float64{1000, 1750, 2300}},
			{"excellent", "trapmf", []float64{2100, 2300, 2500, 2500}},
		},
	},
	{
		name:     TimeOfDay,
		universe: fuzzy.Universe{Min: 0, Max: 24, Step: 0.1},
		terms: []termSpec{
			{"midnight", "trimf", []float64{0, 1, 4}},
			{"dawn", "trimf", []float64{3, 5.5, 7}},
			{"day", "trimf", []float64{6, 13, 18}},
			{"dusk", "trimf", []float64{17, 19, 21}},
			{"night", "trapmf", []float64{20, 21, 24, 24}},
		},
	},
}

var outputSpecs = []variableSpec{
	{
		name:     Brightness,
		universe: fuzzy.Universe{Min: 0, Max: 18000, Step: 1},
		terms: []termSpec{
			{"lower", "trimf", []float64{0, 1000, 3500}},
			{"low", "trimf", []float64{2000, 5000, 8000}},
			{"medium", "trimf", []float64{7000, 9500, 12000}},
			{"high", "trimf", []float64{11000, 13500, 16000}},
			{"higher", "trapmf", []float64{15000, 16500, 18000, 18000}},
		},
	},
	{
		name:     ColorTemperature,
		universe: fuzzy.Universe{Min: 0, Max: 6500, Step: 1},
		terms: []termSpec{
			{"warm glow", "trimf", []float64{0, 1000, 2700}},
			{"warm white", "trimf", []float64{2500, 3000, 4000}},
			{"neutral white", "trimf", []float64{3800, 4000, 5200}},
			{"daylight white", "trapmf", []float64{5000, 5700, 6500, 6500}},
		},
	},
}

func buildVariable(spec variableSpec) (*fuzzy.Variable, error) {
	v, err := fuzzy.NewVariable(spec.name, spec.universe)
	if err != nil {
		return nil, err
	}
	for _, term := range spec.terms {
		fn, err := membership.New(term.shape, term.params...)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", spec.name, term.name, err)
		}
		if err := v.AddTerm(term.name, fn); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// InputNames lists the sensor variables in definition order.
func InputNames() []string {
	return specNames(inputSpecs)
}

// OutputNames lists the lamp variables in definition order.
func OutputNames() []string {
	return specNames(outputSpecs)
}

func specNames(specs []variableSpec) []string {
	out := make([]string, len(specs))
	for i, spec := range specs {
		out[i] = spec.name
	}
	return out
}
