package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/intentbot/internal/corpus"
	"github.com/ppiankov/intentbot/internal/lifecycle"
	"github.com/ppiankov/intentbot/internal/model"
	"github.com/ppiankov/intentbot/internal/score"
	"github.com/ppiankov/intentbot/internal/worker"
)

var (
	evalJSON        string
	evalConcurrency int
	evalTimeout     time.Duration
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate [file]",
	Short: "Measure how well the model recognizes a labeled corpus",
	Long: `Classify every example of a labeled corpus concurrently and report accuracy,
per-intent recall and precision, and the most common confusions.

The file defaults to the primary corpus, which measures how well the model
reproduces its own training data. Pass a held-out file for a real estimate.

Example:
  intentbot evaluate
  intentbot evaluate data/holdout.json --json report.json --concurrency 8`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evalJSON, "json", "", "write the full report as JSON to this path (- for stdout)")
	evaluateCmd.Flags().IntVar(&evalConcurrency, "concurrency", 0, "number of concurrent workers (default evaluate.concurrency)")
	evaluateCmd.Flags().DurationVar(&evalTimeout, "timeout", 5*time.Minute, "total timeout for the evaluation")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := setupLogging(cfg, false); err != nil {
		return err
	}

	file := cfg.Paths.CorpusPath()
	if len(args) == 1 {
		file = args[0]
	}
	workers := cfg.Evaluate.Concurrency
	if evalConcurrency > 0 {
		workers = evalConcurrency
	}

	labeled, err := corpus.CheckFile(file)
	if err != nil {
		return fmt.Errorf("load labeled corpus: %w", err)
	}

	m, err := lifecycle.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), evalTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Evaluating %s against %s with %d workers...\n", m.ModelPath(), file, workers)
	}

	results := worker.NewEvaluator(m, workers).Run(ctx, labeled)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}

	report := score.Calculate(worker.Predictions(results))
	report.Model = m.ModelPath()
	report.Corpus = file
	report.GeneratedAt = time.Now()

	if evalJSON == "-" {
		return writeReportJSON(cmd.OutOrStdout(), report)
	}

	printReport(cmd.OutOrStdout(), report)

	if evalJSON != "" {
		f, err := os.Create(evalJSON)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer func() { _ = f.Close() }()
		if err := writeReportJSON(f, report); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Report written to %s\n", evalJSON)
	}
	return nil
}

func writeReportJSON(w io.Writer, report model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func printReport(w io.Writer, r model.Report) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Evaluation\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Model:       %s\n", r.Model)
	fmt.Fprintf(w, "  Corpus:      %s\n", r.Corpus)
	fmt.Fprintf(w, "  Accuracy:    %d/%d (%.1f%%)\n", r.Correct, r.Total, r.Accuracy*100)
	fmt.Fprintf(w, "  Errors:      %d\n", r.Errors)
	fmt.Fprintf(w, "  Confidence:  %s\n", r.Confidence)
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "  %-24s %8s %8s %8s\n", "INTENT", "SUPPORT", "RECALL", "PRECISION")
	for _, st := range r.PerIntent {
		fmt.Fprintf(w, "  %-24s %8d %7.0f%% %8.0f%%\n", st.Intent, st.Support, st.Recall*100, st.Precision*100)
	}

	if len(r.Confusions) > 0 {
		fmt.Fprintf(w, "\n  Confusions:\n")
		for _, c := range r.Confusions {
			fmt.Fprintf(w, "    %s → %s (%d)\n", c.Expected, c.Predicted, c.Count)
		}
	}

	fmt.Fprintf(w, "\n  Signals:\n")
	for _, s := range r.Signals {
		fmt.Fprintf(w, "    [%s] %s\n", s.Severity, s.Description)
	}
	fmt.Fprintf(w, "\n")
}
