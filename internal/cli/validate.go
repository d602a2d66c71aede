package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/intentbot/internal/corpus"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a corpus or training batch file",
	Long: `Check that a file is a well-formed intent corpus: an "intents" list with
named intents, at least one non-blank example each, and no blank responses.
Exits non-zero when the file is invalid.

Example:
  intentbot validate data/intents_train.json`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	c, err := corpus.CheckFile(args[0])
	if err != nil {
		return err
	}

	withResponse := 0
	for _, in := range c.Intents {
		if in.ResponseText() != "" {
			withResponse++
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d intents, %d examples, %d with responses\n",
		args[0], len(c.Intents), c.ExampleCount(), withResponse)
	return nil
}
