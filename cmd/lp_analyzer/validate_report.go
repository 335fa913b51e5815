package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ynumao/ai-creative-director2/internal/schemas"
)

var validateReportCmd = &cobra.Command{
	Use:   "validate-report <file.json>",
	Short: "Validate a saved report against the report schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidateReport,
}

func init() {
	rootCmd.AddCommand(validateReportCmd)
}

func runValidateReport(cmd *cobra.Command, args []string) error {
	err := schemas.ValidateReportFile(args[0])
	if err == nil {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "Validation passed")
		return err
	}

	var ve *schemas.ValidationError
	if errors.As(err, &ve) {
		for _, field := range ve.Fields() {
			fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", field)
		}
		return fmt.Errorf("validation failed: %d schema violation(s)", len(ve.Errors))
	}
	return err
}
