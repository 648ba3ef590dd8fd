package lamp

import (
	"fmt"

	"fuzzylight/internal/fuzzy"
)

// anyOf matches a variable against one or more of its terms.
func anyOf(variable string, terms ...string) fuzzy.Expr {
	switch len(terms) {
	case 0:
		panic("lamp: anyOf needs at least one term")
	case 1:
		return fuzzy.Is(variable, terms[0])
	}
	rest := make([]fuzzy.Expr, 0, len(terms)-2)
	for _, term := range terms[2:] {
		rest = append(rest, fuzzy.Is(variable, term))
	}
	return fuzzy.Or(fuzzy.Is(variable, terms[0]), fuzzy.Is(variable, terms[1]), rest...)
}

func then(brightness, color string) []fuzzy.Consequent {
	return []fuzzy.Consequent{
		{Variable: Brightness, Term: brightness},
		{Variable: ColorTemperature, Term: color},
	}
}

// Rules returns the street-lamp rule bank. Each call returns fresh
// expressions so callers may extend or rebuild them freely.
func Rules() []fuzzy.Rule {
	return []fuzzy.Rule{
		{
			ID:    "R1",
			Label: "daytime arterial, few pedestrians",
			Antecedent: fuzzy.And(
				anyOf(AmbientLight, "dark", "moderate"),
				fuzzy.Is(TrafficActivity, "heavy"),
				fuzzy.Is(PedestrianActivity, "light"),
				anyOf(Visibility, "moderate", "clear"),
				anyOf(TimeOfDay, "dawn", "day"),
			),
			Consequents: then("medium", "neutral white"),
		},
		{
			ID:    "R2",
			Label: "daytime arterial, steady foot traffic",
			Antecedent: fuzzy.And(
				anyOf(AmbientLight, "dark", "moderate"),
				fuzzy.Is(TrafficActivity, "heavy"),
				fuzzy.Is(PedestrianActivity, "moderate"),
				anyOf(Visibility, "moderate", "clear"),
				anyOf(TimeOfDay, "dawn", "day"),
			),
			Consequents: then("high", "neutral white"),
		},
		{
			ID:    "R3",
			Label: "school zone",
			Antecedent: fuzzy.And(
				anyOf(AmbientLight, "dark", "moderate"),
				fuzzy.Is(Distance, "close"),
				fuzzy.Is(TrafficActivity, "moderate"),
				fuzzy.Is(PedestrianActivity, "heavy"),
				fuzzy.Is(Visibility, "clear"),
				anyOf(TimeOfDay, "dawn", "day"),
			),
			Consequents: then("medium", "neutral white"),
		},
		{
			ID:    "R4",
			Label: "park",
			Antecedent: fuzzy.And(
				anyOf(AmbientLight, "dark", "moderate"),
				fuzzy.Is(TrafficActivity, "light"),
				anyOf(PedestrianActivity, "moderate", "heavy"),
				fuzzy.Is(Visibility, "clear"),
				anyOf(TimeOfDay, "dawn", "day"),
			),
			Consequents: then("medium", "neutral white"),
		},
		{
			ID:    "R5",
			Label: "market and delivery street",
			Antecedent: fuzzy.And(
				anyOf(AmbientLight, "dark", "moderate"),
				anyOf(Distance, "very close", "close", "moderate"),
				fuzzy.Is(TrafficActivity, "moderate"),
				anyOf(PedestrianActivity, "moderate", "heavy"),
				fuzzy.Is(Visibility, "clear"),
				fuzzy.Is(TimeOfDay, "day"),
			),
			Consequents: then("medium", "neutral white"),
		},
		{
			ID:    "R6",
			Label: "transit station",
			Antecedent: fuzzy.And(
				anyOf(AmbientLight, "dark", "moderate"),
				fuzzy.Is(Distance, "close"),
				fuzzy.Is(TrafficActivity, "heavy"),
				anyOf(PedestrianActivity, "moderate", "heavy"),
				fuzzy.Is(Visibility, "clear"),
				anyOf(TimeOfDay, "dawn", "day"),
			),
			Consequents: then("high", "neutral white"),
		},
		{
			ID:    "R7",
			Label: "evening rush hour",
			Antecedent: fuzzy.And(
				fuzzy.Is(AmbientLight, "bright"),
				anyOf(Distance, "close", "moderate"),
				fuzzy.Is(TrafficActivity, "heavy"),
				anyOf(PedestrianActivity, "light", "moderate"),
				fuzzy.Is(Visibility, "clear"),
				fuzzy.Is(TimeOfDay, "dusk"),
			),
			Consequents: then("high", "neutral white"),
		},
		{
			ID:    "R8",
			Label: "shopping plaza",
			Antecedent: fuzzy.And(
				anyOf(AmbientLight, "moderate", "bright"),
				fuzzy.Is(Distance, "close"),
				anyOf(TrafficActivity, "light", "moderate"),
				fuzzy.Is(PedestrianActivity, "heavy"),
				fuzzy.Is(Visibility, "clear"),
				fuzzy.Is(TimeOfDay, "dusk"),
			),
			Consequents: then("high", "neutral white"),
		},
		{
			ID:    "R9",
			Label: "busy intersection at night",
			// Traffic and pedestrians are alternatives here, and dusk counts as night.
			Antecedent: fuzzy.And(
				fuzzy.Is(AmbientLight, "very bright"),
				anyOf(Distance, "very close", "close", "moderate"),
				fuzzy.Or(fuzzy.Is(TrafficActivity, "heavy"), fuzzy.Is(PedestrianActivity, "heavy")),
				anyOf(Visibility, "clear", "excellent"),
				anyOf(TimeOfDay, "dusk", "night"),
			),
			Consequents: then("higher", "neutral white"),
		},
		{
			ID:    "R10",
			Label: "park path at night",
			Antecedent: fuzzy.And(
				anyOf(AmbientLight, "very dark", "dark"),
				fuzzy.Is(Distance, "close"),
				fuzzy.Is(TrafficActivity, "light"),
				fuzzy.Is(PedestrianActivity, "light"),
				fuzzy.Is(Visibility, "clear"),
				anyOf(TimeOfDay, "night", "midnight"),
			),
			Consequents: then("high", "warm white"),
		},
		{
			ID:    "R11",
			Label: "suburban street at dusk",
			Antecedent: fuzzy.And(
				fuzzy.Is(AmbientLight, "moderate"),
				fuzzy.Is(Distance, "close"),
				fuzzy.Is(TrafficActivity, "light"),
				fuzzy.Is(PedestrianActivity, "light"),
				fuzzy.Is(Visibility, "moderate"),
				fuzzy.Is(TimeOfDay, "dusk"),
			),
			Consequents: then("medium", "warm white"),
		},
		{
			ID:    "R12",
			Label: "residential street at night",
			Antecedent: fuzzy.And(
				fuzzy.Is(AmbientLight, "moderate"),
				fuzzy.Is(Distance, "close"),
				fuzzy.Is(TrafficActivity, "light"),
				fuzzy.Is(PedestrianActivity, "moderate"),
				fuzzy.Is(Visibility, "clear"),
				fuzzy.Is(TimeOfDay, "night"),
			),
			Consequents: then("medium", "warm white"),
		},
		{
			ID:    "R13",
			Label: "pedestrian bridge",
			Antecedent: fuzzy.And(
				fuzzy.Is(AmbientLight, "moderate"),
				fuzzy.Is(Distance, "close"),
				fuzzy.Is(TrafficActivity, "light"),
				fuzzy.Is(PedestrianActivity, "light"),
				fuzzy.Is(Visibility, "clear"),
				fuzzy.Is(TimeOfDay, "night"),
			),
			Consequents: then("medium", "neutral white"),
		},
		{
			ID:    "R14",
			Label: "highway exit",
			Antecedent: fuzzy.And(
				fuzzy.Is(AmbientLight, "bright"),
				anyOf(Distance, "close", "moderate", "far"),
				fuzzy.Is(TrafficActivity, "moderate"),
				fuzzy.Is(PedestrianActivity, "light"),
				fuzzy.Is(Visibility, "clear"),
				fuzzy.Is(TimeOfDay, "night"),
			),
			Consequents: then("high", "neutral white"),
		},
		{
			ID:    "R15",
			Label: "quiet cul-de-sac",
			Antecedent: fuzzy.And(
				anyOf(AmbientLight, "dark", "moderate"),
				fuzzy.Is(Distance, "close"),
				fuzzy.Is(TrafficActivity, "light"),
				fuzzy.Is(PedestrianActivity, "light"),
				fuzzy.Is(Visibility, "moderate"),
				fuzzy.Is(TimeOfDay, "night"),
			),
			Consequents: then("low", "warm white"),
		},
		{
			ID:    "R16",
			Label: "floodlit sports field",
			Antecedent: fuzzy.And(
				fuzzy.Is(AmbientLight, "very bright"),
				anyOf(Distance, "close", "moderate"),
				fuzzy.Is(TrafficActivity, "light"),
				anyOf(PedestrianActivity, "light", "moderate"),
				fuzzy.Is(Visibility, "excellent"),
				anyOf(TimeOfDay, "dusk", "night"),
			),
			Consequents: then("low", "daylight white"),
		},
	}
}

// NewRuleBase builds the street-lamp rule base with the given extra rules
// appended after the built-in bank.
func NewRuleBase(extra ...fuzzy.Rule) (*fuzzy.RuleBase, error) {
	b := fuzzy.NewBuilder()
	for _, spec := range inputSpecs {
		v, err := buildVariable(spec)
		if err != nil {
			return nil, fmt.Errorf("build input %s: %w", spec.name, err)
		}
		b.Input(v)
	}
	for _, spec := range outputSpecs {
		v, err := buildVariable(spec)
		if err != nil {
			return nil, fmt.Errorf("build output %s: %w", spec.name, err)
		}
		b.Output(v)
	}
	for _, r := range Rules() {
		b.Rule(r)
	}
	for _, r := range extra {
		b.Rule(r)
	}
	return b.Build()
}

// MustRuleBase is NewRuleBase without extra rules; it panics on error.
func MustRuleBase() *fuzzy.RuleBase {
	rb, err := NewRuleBase()
	if err != nil {
		panic(err)
	}
	return rb
}
