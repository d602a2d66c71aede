package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ppiankov/intentbot/internal/lifecycle"
)

// modelsCmd represents the models command
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List saved model artifacts",
	Long:  `List model artifacts newest first. The first one is what the next start loads.`,
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	artifacts, err := lifecycle.ListArtifacts(cfg.Paths.ModelsDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(artifacts) == 0 {
		fmt.Fprintf(out, "No models in %s\n", cfg.Paths.ModelsDir)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tNAME\tSIZE\tMODIFIED")
	for i, a := range artifacts {
		marker := ""
		if i == 0 {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", marker, a.Name, humanize.Bytes(uint64(a.Size)), humanize.Time(a.ModTime))
	}
	return tw.Flush()
}
