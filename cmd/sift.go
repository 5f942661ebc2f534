package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-sieve/internal/config"
	"github.com/kozaktomas/face-sieve/internal/logging"
	"github.com/kozaktomas/face-sieve/internal/matcher"
)

var siftCmd = &cobra.Command{
	Use:   "sift <reference-image> <dataset-folder> <output-folder>",
	Short: "Copy images containing the reference face",
	Long: `Sift a dataset folder for images containing the face from the reference
image. Matching images are copied into the output folder under their
original filenames; a same-named existing file is overwritten.

Per-file failures (corrupt files, extractor errors) are logged and counted,
they never abort the run. Images without any detectable face are skipped
silently.

Examples:
  # Balanced matching with the remote embedding server
  face-sieve sift person.jpg ./vacation-photos ./sorted

  # Stricter matching, local dlib backend
  face-sieve sift person.jpg ./photos ./out --extractor dlib --tolerance 0.4

  # Copy into a per-person subfolder with 4 workers
  face-sieve sift person.jpg ./photos ./out --person "Jiří Novák" --concurrency 4

  # Preview without writing anything
  face-sieve sift person.jpg ./photos ./out --dry-run`,
	Args: cobra.ExactArgs(3),
	RunE: runSift,
}

func init() {
	rootCmd.AddCommand(siftCmd)

	siftCmd.Flags().Float64("tolerance", 0, "Maximum face distance for a match (0 = model preset default; lower = stricter)")
	siftCmd.Flags().String("extractor", "remote", "Face extractor backend: remote, dlib")
	siftCmd.Flags().String("model", "", "Extractor model preset for the default tolerance")
	siftCmd.Flags().String("device", "", "Device preference for the remote extractor: auto, cpu, cuda")
	siftCmd.Flags().Int("concurrency", 1, "Number of parallel workers")
	siftCmd.Flags().Int("limit", 0, "Limit number of candidates to process (0 = no limit)")
	siftCmd.Flags().String("person", "", "Copy matches into a normalized per-person subfolder")
	siftCmd.Flags().Bool("dedupe", false, "Skip near-duplicate copies within the run")
	siftCmd.Flags().Bool("dry-run", false, "Preview matches without copying files")
	siftCmd.Flags().Bool("json", false, "Output as JSON")
	siftCmd.Flags().Bool("no-progress", false, "Disable the progress bar")
}

// siftOutput is the JSON output structure of a completed run.
type siftOutput struct {
	Stats       matcher.Stats   `json:"stats"`
	SuccessRate float64         `json:"success_rate"`
	Matches     []matcher.Match `json:"matches"`
}

func runSift(cmd *cobra.Command, args []string) error {
	referencePath := args[0]
	datasetDir := args[1]
	outputDir := args[2]

	tolerance := mustGetFloat64(cmd, "tolerance")
	extractorName := mustGetString(cmd, "extractor")
	modelName := mustGetString(cmd, "model")
	device := mustGetString(cmd, "device")
	concurrency := mustGetInt(cmd, "concurrency")
	limit := mustGetInt(cmd, "limit")
	person := mustGetString(cmd, "person")
	dedupe := mustGetBool(cmd, "dedupe")
	dryRun := mustGetBool(cmd, "dry-run")
	jsonOutput := mustGetBool(cmd, "json")
	noProgress := mustGetBool(cmd, "no-progress")

	cfg := config.Load()
	logger := logging.NewLogger(cfg.Logging)
	log := logging.RunEntry(logger)

	ext, cleanup, err := newExtractor(cfg, extractorName, device)
	if err != nil {
		return err
	}
	defer cleanup()

	if modelName == "" {
		modelName = defaultModel(extractorName)
	}
	if tolerance == 0 {
		tolerance = cfg.GetModelPreset(modelName).Tolerance
	}

	if person != "" {
		outputDir = filepath.Join(outputDir, matcher.PersonFolder(person))
	}

	// Set up context with signal handling for graceful cancellation.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal...")
		cancel()
	}()

	if !jsonOutput {
		fmt.Printf("Extractor: %s (model: %s)\n", ext.Name(), modelName)
		fmt.Printf("Tolerance: %.2f\n", tolerance)
		fmt.Printf("Output folder: %s\n", outputDir)
		if dryRun {
			fmt.Println("Mode: DRY RUN (no files will be copied)")
		}
		fmt.Println()
	}

	opts := matcher.Options{
		Tolerance:       tolerance,
		Concurrency:     concurrency,
		DryRun:          dryRun,
		Dedupe:          dedupe,
		DedupeThreshold: cfg.Matcher.DedupeThreshold,
		Limit:           limit,
	}

	// Progress bar; the total is only known once the dataset is listed, so
	// the bar is created on the first callback.
	var bar *progressbar.ProgressBar
	if !jsonOutput && !noProgress {
		opts.OnProgress = func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription("Sifting images"),
					progressbar.OptionShowCount(),
					progressbar.OptionShowIts(),
					progressbar.OptionSetItsString("images"),
					progressbar.OptionShowElapsedTimeOnFinish(),
					progressbar.OptionSetPredictTime(true),
					progressbar.OptionFullWidth(),
				)
			}
			_ = bar.Set(done)
		}
	}

	m := matcher.New(ext, log)
	report, err := m.Run(ctx, referencePath, datasetDir, outputDir, opts)
	if bar != nil {
		fmt.Println()
	}
	if err != nil {
		if report == nil {
			return fmt.Errorf("run failed: %w", err)
		}
		// Interrupted mid-batch: report what was done so far.
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Run interrupted, partial results follow.")
		}
	}

	if jsonOutput {
		return outputJSON(siftOutput{
			Stats:       report.Stats,
			SuccessRate: report.Stats.SuccessRate(),
			Matches:     report.Matches,
		})
	}

	printSiftReport(report)
	return nil
}

func printSiftReport(report *matcher.Report) {
	if len(report.Matches) > 0 {
		fmt.Println("Matched images:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FILE\tDISTANCE\tCOPIED")
		for _, m := range report.Matches {
			copied := "no"
			if m.Copied {
				copied = "yes"
			}
			fmt.Fprintf(w, "%s\t%.4f\t%s\n", m.Name, m.Distance, copied)
		}
		w.Flush()
	}

	fmt.Printf("\nImages processed: %d\n", report.Stats.Processed)
	fmt.Printf("Images copied: %d\n", report.Stats.Copied)
	fmt.Printf("Errors encountered: %d\n", report.Stats.Errors)
	fmt.Printf("Success rate: %.1f%%\n", report.Stats.SuccessRate()*100)
}
