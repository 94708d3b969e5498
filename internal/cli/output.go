package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"supplier-matching/internal/matching"
)

func writeJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func recommendationsTable(w io.Writer, views []matching.RecommendationView) error {
	if len(views) == 0 {
		fmt.Fprintln(w, "No suppliers to rank.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSUPPLIER\tSCORE\tRECOMMENDED\tSOURCE\tREASON")
	fmt.Fprintln(tw, "----\t--------\t-----\t-----------\t------\t------")

	for i, v := range views {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			truncate(supplierLabel(v), 28),
			v.FormattedScore,
			yesNo(v.Recommended),
			v.AlgorithmSource,
			truncate(v.Explanation, 60),
		)
	}

	return tw.Flush()
}

func groupsTable(w io.Writer, groups []matching.GroupView) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tCOUNT\tSUPPLIERS")
	fmt.Fprintln(tw, "------\t-----\t---------")

	for _, g := range groups {
		names := ""
		for i, v := range g.Recommendations {
			if i > 0 {
				names += ", "
			}
			names += supplierLabel(v) + " (" + v.FormattedScore + ")"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", g.Source, len(g.Recommendations), truncate(names, 80))
	}

	return tw.Flush()
}

func explanationDetail(w io.Writer, v matching.RecommendationView) error {
	fmt.Fprintf(w, "Supplier:    %s\n", supplierLabel(v))
	fmt.Fprintf(w, "Score:       %s\n", v.FormattedScore)
	fmt.Fprintf(w, "Recommended: %s\n", yesNo(v.Recommended))
	fmt.Fprintf(w, "Source:      %s\n", v.AlgorithmSource)
	fmt.Fprintf(w, "Reason:      %s\n", v.Explanation)
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FACTOR\tSCORE\tWEIGHT\tCONTRIBUTION\tORIGIN\tDETAIL")
	fmt.Fprintln(tw, "------\t-----\t------\t------------\t------\t------")
	for _, f := range v.TopFactors {
		fmt.Fprintf(tw, "%s\t%.0f\t%.2f\t%.1f\t%s\t%s\n",
			f.Name, f.Score, f.Weight, f.Contribution, f.Origin, truncate(f.Explanation, 60))
	}
	return tw.Flush()
}

func validationTable(w io.Writer, verr *matching.FeedbackValidationError) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tCODE\tMESSAGE")
	fmt.Fprintln(tw, "-----\t----\t-------")
	for _, e := range verr.Errors {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Field, e.Code, e.Message)
	}
	return tw.Flush()
}

func supplierLabel(v matching.RecommendationView) string {
	if v.SupplierName != "" {
		return v.SupplierName
	}
	return fmt.Sprintf("#%d", v.SupplierID)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
