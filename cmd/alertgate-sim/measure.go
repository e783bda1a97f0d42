package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"alertgate-sim/internal/gate"
	"alertgate-sim/internal/logging"
	"alertgate-sim/internal/metrics"
)

var (
	measureTrials     int
	measureTimeoutMS  float64
	measureOut        string
	measureSamplesOut string
)

var measureCmd = &cobra.Command{
	Use:   "measure",
	Short: "Run a single alert-delivery SLA measurement",
	Long:  "measure resolves the simulator configuration, runs one evaluation pass, exports metrics, and writes the JSON gate artifact.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.New().With("run_id", uuid.NewString())

		labels, err := parseLabels(flagLabels)
		if err != nil {
			return err
		}

		p, doc := buildProbe(logger)
		trials := trialCount(measureTrials, doc)
		timeoutMS := timeoutThreshold(measureTimeoutMS, doc)

		logger.Info("measurement start",
			"trials", trials, "timeout_ms", timeoutMS, "seed", flagSeed,
			"fingerprint", p.Params().Fingerprint())

		summary := gate.Evaluate(p, trials, timeoutMS, measureSamplesOut != "", logger)

		exporter := metrics.NewExporter(metricsPath(doc))
		err = exporter.EmitMany(map[string]float64{
			"alertgate_p95_latency_ms": summary.P95LatencyMS,
			"alertgate_timeout_rate":   summary.TimeoutRate,
			"alertgate_missing_rate":   summary.MissingRate,
			"alertgate_delivered":      float64(summary.Delivered),
			"alertgate_trials":         float64(summary.Total),
		}, labels)
		if err != nil {
			return fmt.Errorf("metrics export: %w", err)
		}

		data, err := gate.EncodeRunArtifact(gate.NewRunArtifact(summary))
		if err != nil {
			return err
		}
		if err := gate.WriteArtifact(measureOut, data); err != nil {
			return err
		}
		if measureSamplesOut != "" {
			if err := gate.WriteSamples(measureSamplesOut, summary.RawLatencies); err != nil {
				return err
			}
		}

		fmt.Fprintln(cmd.ErrOrStderr(), renderSummary(summary, timeoutMS))
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	measureCmd.Flags().IntVar(&measureTrials, "trials", 0, "Trial count (default from config)")
	measureCmd.Flags().Float64Var(&measureTimeoutMS, "timeout-ms", 0, "Timeout threshold in ms (default from config)")
	measureCmd.Flags().StringVar(&measureOut, "out", "alert_gate.json", "Path for the JSON gate artifact")
	measureCmd.Flags().StringVar(&measureSamplesOut, "samples-out", "", "Optional path for retained raw latency samples")
}
