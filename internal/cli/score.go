package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"supplier-matching/internal/models"
)

func newScoreCmd() *cobra.Command {
	var (
		rfqPath      string
		supplierPath string
		advanced     bool
		grouped      bool
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Rank a supplier pool for one RFQ",
		Example: `  matchctl score --rfq rfq.json --suppliers suppliers.json
  matchctl score --rfq rfq.json --suppliers suppliers.json --advanced -o json
  matchctl score --rfq rfq.json --suppliers suppliers.json --grouped`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}

			var rfq models.RFQ
			if err := readJSON(rfqPath, &rfq); err != nil {
				return err
			}
			var suppliers []models.SupplierProfile
			if err := readJSON(supplierPath, &suppliers); err != nil {
				return err
			}

			recs := engine.Match(&rfq, suppliers, advanced)
			out := cmd.OutOrStdout()

			if grouped {
				groups := engine.GroupViews(recs)
				if outputFmt == "json" {
					return writeJSON(out, groups)
				}
				return groupsTable(out, groups)
			}

			views := engine.Views(recs)
			switch outputFmt {
			case "json":
				return writeJSON(out, views)
			case "table", "":
				return recommendationsTable(out, views)
			default:
				return fmt.Errorf("unknown output format: %s", outputFmt)
			}
		},
	}

	cmd.Flags().StringVar(&rfqPath, "rfq", "", "RFQ JSON file")
	cmd.Flags().StringVar(&supplierPath, "suppliers", "", "JSON array of supplier profiles")
	cmd.Flags().BoolVar(&advanced, "advanced", false, "include the advanced scoring factors")
	cmd.Flags().BoolVar(&grouped, "grouped", false, "group results by algorithm source")
	_ = cmd.MarkFlagRequired("rfq")
	_ = cmd.MarkFlagRequired("suppliers")
	return cmd
}
