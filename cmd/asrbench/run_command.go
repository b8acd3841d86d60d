package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"asr-benchmark-platform/internal/config"
	"asr-benchmark-platform/internal/coreengine/evaluationengine"
	"asr-benchmark-platform/internal/coreengine/modeladapters"
	"asr-benchmark-platform/internal/coreengine/resolver"
	"asr-benchmark-platform/internal/coreengine/runner"
)

func newRunCommand(registryFlag *string) *cobra.Command {
	var (
		modelFlags     []string
		samplesFlag    string
		languageFlag   string
		deviceFlag     string
		beamSizeFlag   int
		timeoutFlag    time.Duration
		abortFlag      bool
		jsonFlag       bool
		transcriptFlag bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate models against a sample manifest and print the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(*registryFlag)
			if err != nil {
				return err
			}
			adapters, err := config.BuildAdapters(reg)
			if err != nil {
				return err
			}
			res, err := resolver.New(adapters)
			if err != nil {
				return err
			}

			samples, err := loadSamples(samplesFlag)
			if err != nil {
				return err
			}

			models := modelFlags
			if len(models) == 0 {
				for _, desc := range res.Descriptors() {
					models = append(models, desc.Name)
				}
			}

			engine := &evaluationengine.Engine{
				Resolver:       res,
				Runner:         &runner.Runner{Timeout: timeoutFlag},
				AbortOnFailure: abortFlag,
			}
			opts := modeladapters.TranscribeOptions{
				BeamSize: beamSizeFlag,
				Language: languageFlag,
				Device:   deviceFlag,
			}

			report, err := engine.Evaluate(cmd.Context(), models, samples, opts)
			if err != nil {
				return err
			}

			if jsonFlag {
				return writeJSON(cmd, report)
			}
			printReport(cmd, report, transcriptFlag)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&modelFlags, "models", "m", nil, "Models to evaluate (default: every registered model)")
	cmd.Flags().StringVarP(&samplesFlag, "samples", "s", "samples.toml", "Sample manifest TOML file")
	cmd.Flags().StringVarP(&languageFlag, "language", "l", "", "Language hint, e.g. en (default: auto-detect)")
	cmd.Flags().StringVar(&deviceFlag, "device", modeladapters.DeviceAuto, "Inference device: cpu, cuda or auto")
	cmd.Flags().IntVar(&beamSizeFlag, "beam-size", modeladapters.DefaultBeamSize, "Decoder beam size")
	cmd.Flags().DurationVar(&timeoutFlag, "timeout", runner.DefaultTimeout, "Per-transcription timeout")
	cmd.Flags().BoolVar(&abortFlag, "abort-on-failure", false, "Stop the run at the first failure instead of continuing")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the full report as JSON")
	cmd.Flags().BoolVar(&transcriptFlag, "transcripts", false, "Print per-sample transcripts")

	return cmd
}

func printReport(cmd *cobra.Command, report *evaluationengine.Report, withTranscripts bool) {
	rows := make([][]string, 0, len(report.Entries))
	for _, entry := range report.Entries {
		rows = append(rows, []string{
			fmt.Sprintf("%d", entry.Rank),
			entry.Model.Name,
			fmt.Sprintf("%.4f", entry.Record.WER),
			fmt.Sprintf("%.4f", entry.Record.CER),
			fmt.Sprintf("%.2f", entry.Record.WordOverlapRatio),
			fmt.Sprintf("%d", entry.Record.KeyTermsFound),
			fmt.Sprintf("%.2fs", entry.Record.ProcessingTimeSeconds),
		})
	}
	cmd.Println(renderTable(
		[]string{"Rank", "Model", "WER", "CER", "Overlap", "Key Terms", "Time"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	))

	if withTranscripts {
		for _, result := range report.Results {
			cmd.Printf("\n%s / %s", result.ModelUsed.Name, result.Sample)
			if result.FellBack {
				cmd.Printf(" (fallback from %s)", result.RequestedModel)
			}
			cmd.Printf(":\n  %s\n", result.Transcript)
		}
	}

	if len(report.Failures) > 0 {
		cmd.Println("\nFailures:")
		for _, failure := range report.Failures {
			if failure.Sample != "" {
				cmd.Printf("  %s / %s: %s\n", failure.Model, failure.Sample, failure.Reason)
			} else {
				cmd.Printf("  %s: %s\n", failure.Model, failure.Reason)
			}
		}
	}
}
