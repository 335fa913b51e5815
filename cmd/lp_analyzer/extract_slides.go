package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ynumao/ai-creative-director2/internal/slides"
)

var extractSlidesCmd = &cobra.Command{
	Use:   "extract-slides <file.pptx>",
	Short: "Print the text of a PowerPoint deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := slides.ExtractFile(args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	},
}

func init() {
	rootCmd.AddCommand(extractSlidesCmd)
}
