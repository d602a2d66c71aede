package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/intentbot/internal/lifecycle"
)

var askJSON bool

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <text>",
	Short: "Answer a single message",
	Long: `Classify one message and print the bot's response.

Example:
  intentbot ask hola
  intentbot ask "buenos dias" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().BoolVar(&askJSON, "json", false, "print intent and response as JSON")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := setupLogging(cfg, false); err != nil {
		return err
	}

	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		return errors.New("nothing to ask")
	}

	if !askJSON {
		resp, err := newService(cfg).Handle(text)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp)
		return nil
	}

	m, err := lifecycle.New(cfg)
	if err != nil {
		return err
	}
	reply, err := m.Reply(text)
	if err != nil {
		return fmt.Errorf("answer %q: %w", text, err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(reply)
}
