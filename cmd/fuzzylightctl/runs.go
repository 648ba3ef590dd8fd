package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fuzzylight/pkg/fuzzylight"
)

func newRunsCmd(opts *globalOptions) *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return errors.New("limit must be > 0")
			}
			a, cleanup, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			runs, err := a.client.Runs(cmd.Context(), fuzzylight.RunsRequest{Limit: limit})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				type runJSON struct {
					RunID        string             `json:"run_id"`
					CreatedAtUTC string             `json:"created_at_utc"`
					Scenario     string             `json:"scenario,omitempty"`
					Outputs      map[string]float64 `json:"outputs"`
					Empty        []string           `json:"empty,omitempty"`
				}
				items := make([]runJSON, 0, len(runs))
				for _, r := range runs {
					items = append(items, runJSON{
						RunID:        r.RunID,
						CreatedAtUTC: r.CreatedAtUTC,
						Scenario:     r.Scenario,
						Outputs:      r.Outputs,
						Empty:        r.Empty,
					})
				}
				return writeJSON(out, items)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "no runs found")
				return nil
			}
			for _, r := range runs {
				fmt.Fprintf(out, "%s %s %q%s\n", r.CreatedAtUTC, r.RunID, r.Scenario,
					formatOutputs(fuzzylight.EvaluateResult{Outputs: r.Outputs, Empty: r.Empty}))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "max runs to list")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit JSON")
	return cmd
}

func newExportCmd(opts *globalOptions) *cobra.Command {
	var (
		runID  string
		latest bool
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a stored run as JSON and plot-ready CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := a.client.Export(cmd.Context(), fuzzylight.ExportRequest{
				RunID:  runID,
				Latest: latest,
				OutDir: outDir,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported run_id=%s dir=%s\n", summary.RunID, summary.Directory)
			return nil
		},
	}
	cmd.Flags().StringVar(&runID, "run-id", "", "run to export")
	cmd.Flags().BoolVar(&latest, "latest", false, "export the newest run")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (defaults to the configured exports dir)")
	return cmd
}
