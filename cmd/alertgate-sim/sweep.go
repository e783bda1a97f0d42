package main

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"alertgate-sim/internal/gate"
	"alertgate-sim/internal/logging"
	"alertgate-sim/internal/metrics"
)

var (
	sweepTrials        int
	sweepTimeoutMS     float64
	sweepOut           string
	sweepIntensities   []float64
	sweepConcurrencies []int
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the intensity x concurrency SLA sweep",
	Long:  "sweep evaluates every cell of the configured load grid, exports per-cell labeled metrics, and writes the ordered JSON artifact.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.New().With("run_id", uuid.NewString())

		labels, err := parseLabels(flagLabels)
		if err != nil {
			return err
		}

		p, doc := buildProbe(logger)
		trials := trialCount(sweepTrials, doc)
		timeoutMS := timeoutThreshold(sweepTimeoutMS, doc)

		intensities := sweepIntensities
		if len(intensities) == 0 {
			intensities, _ = doc.Floats("sweep.intensities")
		}
		concurrencies := sweepConcurrencies
		if len(concurrencies) == 0 {
			concurrencies, _ = doc.Ints("sweep.concurrencies")
		}
		if len(intensities) == 0 || len(concurrencies) == 0 {
			return fmt.Errorf("sweep axes are empty: intensities=%v concurrencies=%v", intensities, concurrencies)
		}

		logger.Info("sweep start",
			"base_trials", trials, "timeout_ms", timeoutMS, "seed", flagSeed,
			"intensities", intensities, "concurrencies", concurrencies,
			"fingerprint", p.Params().Fingerprint())

		points := gate.RunSweep(p, trials, timeoutMS, intensities, concurrencies, logger)

		exporter := metrics.NewExporter(metricsPath(doc))
		cells := make([]gate.SweepCell, 0, len(points))
		for _, pt := range points {
			cellLabels := make(map[string]string, len(labels)+2)
			for k, v := range labels {
				cellLabels[k] = v
			}
			cellLabels["intensity"] = strconv.FormatFloat(pt.Intensity, 'g', -1, 64)
			cellLabels["concurrency"] = strconv.Itoa(pt.Concurrency)
			err := exporter.EmitMany(map[string]float64{
				"alertgate_p95_latency_ms": pt.P95LatencyMS,
				"alertgate_timeout_rate":   pt.TimeoutRate,
				"alertgate_missing_rate":   pt.MissingRate,
				"alertgate_delivered":      float64(pt.Delivered),
				"alertgate_trials":         float64(pt.Total),
			}, cellLabels)
			if err != nil {
				return fmt.Errorf("metrics export: %w", err)
			}
			cells = append(cells, gate.NewSweepCell(pt))
		}

		data, err := gate.EncodeSweepArtifact(cells)
		if err != nil {
			return err
		}
		if err := gate.WriteArtifact(sweepOut, data); err != nil {
			return err
		}

		fmt.Fprintln(cmd.ErrOrStderr(), renderGrid(points, timeoutMS))
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	sweepCmd.Flags().IntVar(&sweepTrials, "trials", 0, "Base trial count before intensity scaling (default from config)")
	sweepCmd.Flags().Float64Var(&sweepTimeoutMS, "timeout-ms", 0, "Timeout threshold in ms (default from config)")
	sweepCmd.Flags().StringVar(&sweepOut, "out", "alert_sweep.json", "Path for the ordered JSON sweep artifact")
	sweepCmd.Flags().Float64SliceVar(&sweepIntensities, "intensities", nil, "Intensity axis (default from config)")
	sweepCmd.Flags().IntSliceVar(&sweepConcurrencies, "concurrencies", nil, "Concurrency axis (default from config)")
}
