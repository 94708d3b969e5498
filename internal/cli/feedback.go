package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"supplier-matching/internal/matching"
)

func newValidateFeedbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-feedback <file>",
		Short: "Check a match feedback payload without recording it",
		Long: `Validate a feedback payload against the rules the recorder applies.

Every failing field is listed. The command exits non-zero when the
payload would be rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			record, err := matching.DecodeFeedback(raw)
			if err != nil {
				var verr *matching.FeedbackValidationError
				if errors.As(err, &verr) {
					if outputFmt == "json" {
						_ = writeJSON(out, map[string]interface{}{"valid": false, "errors": verr.Errors})
					} else {
						_ = validationTable(out, verr)
					}
				}
				return err
			}

			if outputFmt == "json" {
				return writeJSON(out, map[string]interface{}{"valid": true, "feedback": record})
			}
			fmt.Fprintf(out, "Feedback for RFQ %d / supplier %d is valid.\n", record.RFQID, record.SupplierID)
			return nil
		},
	}
}
