package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/intentbot/internal/lifecycle"
)

// trainCmd represents the train command
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Run the model startup sequence once",
	Long: `Load the newest model or train one from the corpus, then merge a pending
training batch if there is one. Prints the states visited and the model in use.

Nothing else happens on a normal start; this is the same sequence "chat" runs.`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := setupLogging(cfg, false); err != nil {
		return err
	}

	m, err := lifecycle.New(cfg)
	if err != nil {
		return err
	}

	states := make([]string, 0, len(m.Trace()))
	for _, s := range m.Trace() {
		states = append(states, s.String())
	}

	out := cmd.OutOrStdout()
	status, _ := m.Pending()
	fmt.Fprintf(out, "States:   %s\n", strings.Join(states, " → "))
	fmt.Fprintf(out, "Model:    %s\n", m.ModelPath())
	fmt.Fprintf(out, "Intents:  %d\n", len(m.Classifier().Labels()))
	fmt.Fprintf(out, "Batch:    %s\n", status)
	if w := m.PendingWarning(); w != "" {
		fmt.Fprintf(out, "\n⚠ %s\n", w)
	}
	return nil
}
