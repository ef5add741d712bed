package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/quotescope/quotescope/internal/utils"
	"github.com/quotescope/quotescope/pkg/quote"
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Calculates a quote with a single insurer.",
	Example: `  quotescope calc --company pzu --brand Toyota --model Corolla --year 2018 --fuel petrol --age 35 --license 2008-05-15
  quotescope calc --request request.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPayload(cmd)
		if err != nil {
			return err
		}
		if company, _ := cmd.Flags().GetString("company"); company != "" {
			p.InsuranceCompany = company
		}
		req, err := quote.NewValidator().Request(p)
		if err != nil {
			return err
		}
		for _, c := range req.Options.Conflicts() {
			utils.Log.Warnf("Conflicting options: %s", c)
		}
		if req.InsuranceCompany == "" {
			return errors.New("--company is required (see 'quotescope companies')")
		}

		rt, err := newRuntime(cmd, 1)
		if err != nil {
			return err
		}
		defer rt.close()

		noCache, _ := cmd.Flags().GetBool("no-cache")
		result := rt.orch.Calculate(cmd.Context(), req, !noCache)

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(result)
		}
		if !result.Success {
			return errors.New(result.Error)
		}
		printQuote(result)
		return nil
	},
}

func printQuote(result quote.ScraperResult) {
	q := result.Quote
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Company:\t%s\n", q.Company)
	fmt.Fprintf(w, "OC:\t%s\n", utils.OptionalPrice(q.OCPrice))
	fmt.Fprintf(w, "AC:\t%s\n", utils.OptionalPrice(q.ACPrice))
	fmt.Fprintf(w, "Total:\t%s\n", utils.FormatPrice(q.TotalPrice))
	if po := q.PaymentOptions; po != nil {
		fmt.Fprintf(w, "Quarterly:\t%s\n", utils.OptionalPrice(po.Quarterly))
		fmt.Fprintf(w, "Monthly:\t%s\n", utils.OptionalPrice(po.Monthly))
	}
	if q.ValidUntil != nil {
		fmt.Fprintf(w, "Valid until:\t%s\n", q.ValidUntil.Format("2006-01-02"))
	}
	for k, v := range q.AdditionalInfo {
		fmt.Fprintf(w, "%s:\t%s\n", k, v)
	}
	if result.Cached {
		fmt.Fprintf(w, "Source:\tcache\n")
	} else {
		fmt.Fprintf(w, "Took:\t%s\n", formatDuration(result.ExecutionTime.Duration()))
	}
	w.Flush()
}

func init() {
	rootCmd.AddCommand(calcCmd)
	addRequestFlags(calcCmd)
	calcCmd.Flags().StringP("company", "c", "", "Insurer to calculate with")
	calcCmd.Flags().Bool("no-cache", false, "Skip the result cache")
	calcCmd.Flags().Bool("history", false, "Record the calculation in the history database")
}
