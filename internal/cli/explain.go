package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"supplier-matching/internal/models"
)

func newExplainCmd() *cobra.Command {
	var (
		rfqPath      string
		supplierPath string
		advanced     bool
	)

	cmd := &cobra.Command{
		Use:     "explain",
		Short:   "Break one supplier's match score into weighted factors",
		Example: `  matchctl explain --rfq rfq.json --supplier supplier.json --advanced`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}

			var rfq models.RFQ
			if err := readJSON(rfqPath, &rfq); err != nil {
				return err
			}
			var supplier models.SupplierProfile
			if err := readJSON(supplierPath, &supplier); err != nil {
				return err
			}

			recs := engine.Match(&rfq, []models.SupplierProfile{supplier}, advanced)
			if len(recs) == 0 {
				return fmt.Errorf("no recommendation produced for supplier %d", supplier.ID)
			}
			view := engine.View(recs[0])

			out := cmd.OutOrStdout()
			if outputFmt == "json" {
				return writeJSON(out, view)
			}
			return explanationDetail(out, view)
		},
	}

	cmd.Flags().StringVar(&rfqPath, "rfq", "", "RFQ JSON file")
	cmd.Flags().StringVar(&supplierPath, "supplier", "", "supplier profile JSON file")
	cmd.Flags().BoolVar(&advanced, "advanced", false, "include the advanced scoring factors")
	_ = cmd.MarkFlagRequired("rfq")
	_ = cmd.MarkFlagRequired("supplier")
	return cmd
}
