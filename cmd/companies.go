package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/quotescope/quotescope/pkg/insurers/all"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Lists the insurers quotescope can calculate with.",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "COMPANY\tNAME\tCALCULATOR\t")
		for _, p := range all.Profiles() {
			entry := ""
			if len(p.EntryURLs) > 0 {
				entry = p.EntryURLs[0]
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t\n", p.Company, p.DisplayName, entry)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(companiesCmd)
}
