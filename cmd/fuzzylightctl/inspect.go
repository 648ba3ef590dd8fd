package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRulesCmd(opts *globalOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rule base",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			rules := a.client.Rules()
			out := cmd.OutOrStdout()
			if jsonOut {
				type ruleJSON struct {
					ID    string `json:"id"`
					Label string `json:"label,omitempty"`
					Text  string `json:"text"`
				}
				items := make([]ruleJSON, 0, len(rules))
				for _, r := range rules {
					items = append(items, ruleJSON{ID: r.ID, Label: r.Label, Text: r.Text})
				}
				return writeJSON(out, items)
			}
			for _, r := range rules {
				fmt.Fprintf(out, "%s [%s]\n  %s\n", r.ID, r.Label, r.Text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit JSON")
	return cmd
}

func newVariablesCmd(opts *globalOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "variables",
		Short: "List input and output variables with their terms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			vars := a.client.Variables()
			out := cmd.OutOrStdout()
			if jsonOut {
				type termJSON struct {
					Name  string `json:"name"`
					Shape string `json:"shape"`
				}
				type variableJSON struct {
					Name  string     `json:"name"`
					Kind  string     `json:"kind"`
					Min   float64    `json:"min"`
					Max   float64    `json:"max"`
					Step  float64    `json:"step"`
					Terms []termJSON `json:"terms"`
				}
				items := make([]variableJSON, 0, len(vars))
				for _, v := range vars {
					item := variableJSON{Name: v.Name, Kind: v.Kind, Min: v.Universe.Min, Max: v.Universe.Max, Step: v.Universe.Step}
					for _, t := range v.Terms {
						item.Terms = append(item.Terms, termJSON{Name: t.Name, Shape: t.Shape})
					}
					items = append(items, item)
				}
				return writeJSON(out, items)
			}
			for _, v := range vars {
				terms := make([]string, 0, len(v.Terms))
				for _, t := range v.Terms {
					terms = append(terms, fmt.Sprintf("%s=%s", t.Name, t.Shape))
				}
				fmt.Fprintf(out, "%-6s %-20s %s\n  %s\n", v.Kind, v.Name, v.Universe, strings.Join(terms, "\n  "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit JSON")
	return cmd
}
