package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"fuzzylight/internal/config"
	"fuzzylight/internal/fuzzy"
	"fuzzylight/pkg/fuzzylight"
)

type evalResultJSON struct {
	RunID       string             `json:"run_id"`
	Scenario    string             `json:"scenario,omitempty"`
	Outputs     map[string]float64 `json:"outputs"`
	Activations []activationJSON   `json:"activations"`
	Empty       []string           `json:"empty,omitempty"`
	Error       string             `json:"error,omitempty"`
}

type activationJSON struct {
	RuleID   string  `json:"rule_id"`
	Label    string  `json:"label,omitempty"`
	Strength float64 `json:"strength"`
}

func newEvalCmd(opts *globalOptions) *cobra.Command {
	var (
		inputs   []string
		scenario string
		file     string
		persist  bool
		jsonOut  bool
	)
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate one set of sensor readings",
		Example: `  fuzzylightctl eval --input ambient_light=170 --input distance=20 \
    --input traffic_activity=20 --input pedestrian_activity=480 \
    --input visibility=2200 --input time_of_day=20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values, err := parseInputs(inputs)
			if err != nil {
				return err
			}
			if file != "" {
				sc, err := pickScenario(file, scenario)
				if err != nil {
					return err
				}
				scenario = sc.Name
				for name, v := range sc.Inputs {
					if _, set := values[name]; !set {
						values[name] = v
					}
				}
			}
			if len(values) == 0 {
				return errors.New("eval requires --input or --file")
			}

			a, cleanup, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := a.client.Evaluate(cmd.Context(), fuzzylight.EvaluateRequest{
				Scenario: scenario,
				Inputs:   values,
				Persist:  persist,
			})
			if err != nil && !errors.Is(err, fuzzy.ErrEmptyAggregate) {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				if encErr := writeJSON(out, toEvalJSON(res, err)); encErr != nil {
					return encErr
				}
			} else {
				printResult(out, res)
			}
			return err
		},
	}
	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "input reading as name=value (repeatable)")
	cmd.Flags().StringVar(&scenario, "scenario", "", "scenario name (selects from --file when given)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML scenario file")
	cmd.Flags().BoolVar(&persist, "persist", true, "store the run")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit JSON")
	return cmd
}

func newBatchCmd(opts *globalOptions) *cobra.Command {
	var (
		file    string
		workers int
		persist bool
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Evaluate every scenario of a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				return errors.New("batch requires --file")
			}
			if workers <= 0 {
				return errors.New("workers must be > 0")
			}
			scenarios, err := config.LoadScenarios(file)
			if err != nil {
				return err
			}

			a, cleanup, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			items := make([]fuzzylight.EvaluateRequest, 0, len(scenarios))
			for _, sc := range scenarios {
				items = append(items, fuzzylight.EvaluateRequest{Scenario: sc.Name, Inputs: sc.Inputs, Persist: persist})
			}
			summary, err := a.client.Batch(cmd.Context(), fuzzylight.BatchRequest{Items: items, Workers: workers})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				type batchJSON struct {
					Results   []evalResultJSON `json:"results"`
					Succeeded int              `json:"succeeded"`
					Failed    int              `json:"failed"`
					P50Micros int64            `json:"p50_us"`
					P99Micros int64            `json:"p99_us"`
				}
				body := batchJSON{
					Succeeded: summary.Succeeded,
					Failed:    summary.Failed,
					P50Micros: summary.Latency.P50.Microseconds(),
					P99Micros: summary.Latency.P99.Microseconds(),
				}
				for i, item := range summary.Items {
					r := toEvalJSON(item.Result, item.Err)
					r.Scenario = scenarios[i].Name
					body.Results = append(body.Results, r)
				}
				return writeJSON(out, body)
			}

			for i, item := range summary.Items {
				if item.Err != nil && !errors.Is(item.Err, fuzzy.ErrEmptyAggregate) {
					fmt.Fprintf(out, "%s: error: %v\n", scenarios[i].Name, item.Err)
					continue
				}
				fmt.Fprintf(out, "%s:%s\n", scenarios[i].Name, formatOutputs(item.Result))
			}
			fmt.Fprintf(out, "succeeded=%d failed=%d p50=%s p90=%s p99=%s max=%s\n",
				summary.Succeeded, summary.Failed,
				summary.Latency.P50, summary.Latency.P90, summary.Latency.P99, summary.Latency.Max)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML scenario file")
	cmd.Flags().IntVar(&workers, "workers", 4, "concurrent evaluations")
	cmd.Flags().BoolVar(&persist, "persist", true, "store the runs")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit JSON")
	return cmd
}

func parseInputs(pairs []string) (map[string]float64, error) {
	values := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid input %q: want name=value", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid input %q: %w", pair, err)
		}
		values[name] = v
	}
	return values, nil
}

func pickScenario(file, name string) (config.Scenario, error) {
	scenarios, err := config.LoadScenarios(file)
	if err != nil {
		return config.Scenario{}, err
	}
	if name == "" {
		return scenarios[0], nil
	}
	for _, sc := range scenarios {
		if sc.Name == name {
			return sc, nil
		}
	}
	return config.Scenario{}, fmt.Errorf("scenario %q not found in %s", name, file)
}

func toEvalJSON(res fuzzylight.EvaluateResult, err error) evalResultJSON {
	body := evalResultJSON{
		RunID:    res.RunID,
		Scenario: res.Scenario,
		Outputs:  res.Outputs,
		Empty:    res.Empty,
	}
	for _, a := range res.Activations {
		body.Activations = append(body.Activations, activationJSON{RuleID: a.RuleID, Label: a.Label, Strength: a.Strength})
	}
	if err != nil {
		body.Error = err.Error()
	}
	return body
}

func printResult(out io.Writer, res fuzzylight.EvaluateResult) {
	fmt.Fprintf(out, "run_id=%s", res.RunID)
	if res.Scenario != "" {
		fmt.Fprintf(out, " scenario=%q", res.Scenario)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "outputs:%s\n", formatOutputs(res))
	for _, a := range res.Activations {
		if a.Strength > 0 {
			fmt.Fprintf(out, "rule %s (%s) strength=%.4f\n", a.RuleID, a.Label, a.Strength)
		}
	}
	for _, name := range res.Empty {
		fmt.Fprintf(out, "empty aggregate: %s\n", name)
	}
}

func formatOutputs(res fuzzylight.EvaluateResult) string {
	names := make([]string, 0, len(res.Outputs))
	for name := range res.Outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%.2f", name, res.Outputs[name])
	}
	for _, name := range res.Empty {
		fmt.Fprintf(&b, " %s=empty", name)
	}
	return b.String()
}
