package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	v1 "github.com/vitalink/vitalink-core/internal/api/v1"
	corecfg "github.com/vitalink/vitalink-core/internal/core/config"
)

func recomputeCmd(configPath *string) *cobra.Command {
	var (
		patientID string
		metricArg string
		fromArg   string
		toArg     string
	)

	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Replay hourly and daily summaries for a time range",
		Example: "  vitalink recompute --patient patient-1 --metric steps " +
			"--from 2026-01-01T00:00:00Z --to 2026-01-02T00:00:00Z",
		RunE: func(cmd *cobra.Command, args []string) error {
			metric, err := v1.ParseMetric(metricArg)
			if err != nil {
				return err
			}
			from, err := time.Parse(time.RFC3339, fromArg)
			if err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
			to, err := time.Parse(time.RFC3339, toArg)
			if err != nil {
				return fmt.Errorf("invalid --to: %w", err)
			}

			cfg, err := corecfg.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			hours, days, err := a.aggregator.RecomputeRange(ctx, patientID, metric, from.UTC(), to.UTC())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recomputed %d hourly and %d daily windows for %s/%s\n", hours, days, patientID, metric)
			return nil
		},
	}

	cmd.Flags().StringVar(&patientID, "patient", "", "patient id")
	cmd.Flags().StringVar(&metricArg, "metric", "", "metric (steps, heart_rate, spo2)")
	cmd.Flags().StringVar(&fromArg, "from", "", "range start, RFC3339")
	cmd.Flags().StringVar(&toArg, "to", "", "range end, RFC3339")
	for _, name := range []string{"patient", "metric", "from", "to"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
