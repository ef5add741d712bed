package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/quotescope/quotescope/internal/utils"
	"github.com/quotescope/quotescope/pkg/quote"
)

var multiCmd = &cobra.Command{
	Use:   "multi",
	Short: "Calculates quotes with several insurers at once and ranks them.",
	Example: `  quotescope multi --brand Toyota --model Corolla --year 2018 --fuel benzyna --age 35 --license 2008-05-15 --ac --ac-value 45000
  quotescope multi --companies pzu,uniqa --request request.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPayload(cmd)
		if err != nil {
			return err
		}
		if companies, _ := cmd.Flags().GetStringSlice("companies"); len(companies) > 0 {
			p.Companies = companies
		}
		base, err := quote.NewValidator().Request(p)
		if err != nil {
			return err
		}
		for _, c := range base.Options.Conflicts() {
			utils.Log.Warnf("Conflicting options: %s", c)
		}

		concurrency, _ := cmd.Flags().GetInt("concurrency")
		rt, err := newRuntime(cmd, concurrency)
		if err != nil {
			return err
		}
		defer rt.close()

		companies := p.NormalizedCompanies()
		if len(companies) == 0 {
			companies = rt.orch.ListAvailableCompanies()
		}
		results := rt.orch.CalculateMany(cmd.Context(), base, companies)

		ranked := quote.Rank(quote.SuccessfulQuotes(results))
		summary := quote.Summarize(ranked)

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(map[string]interface{}{
				"results": results,
				"quotes":  ranked,
				"summary": summary,
			})
		}

		printRanking(ranked, summary)

		_, failures := quote.Split(results)
		if len(failures) > 0 {
			fmt.Println()
			fmt.Printf("Failed (%d):\n", len(failures))
			for i, r := range results {
				if !r.Success {
					fmt.Printf("  %s: %s\n", companies[i], r.Error)
				}
			}
		}
		return nil
	},
}

func printRanking(ranked []quote.Quote, summary quote.Summary) {
	if len(ranked) == 0 {
		fmt.Println("No insurer returned a quote.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "#\tCOMPANY\tOC\tAC\tTOTAL\tMONTHLY\t")
	for i, q := range ranked {
		var monthly *float64
		if q.PaymentOptions != nil {
			monthly = q.PaymentOptions.Monthly
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t\n", i+1, q.Company,
			utils.OptionalPrice(q.OCPrice), utils.OptionalPrice(q.ACPrice),
			utils.FormatPrice(q.TotalPrice), utils.OptionalPrice(monthly))
	}
	w.Flush()

	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Cheapest:  %s (%s)\n", summary.Cheapest.Company, utils.FormatPrice(summary.Cheapest.TotalPrice))
	if summary.Count >= 2 {
		fmt.Printf("Priciest:  %s (%s)\n", summary.MostExpensive.Company, utils.FormatPrice(summary.MostExpensive.TotalPrice))
		fmt.Printf("Savings:   %s\n", utils.FormatPrice(summary.Savings))
	}
	fmt.Printf("Average:   %s\n", utils.FormatPrice(summary.Average))
}

func init() {
	rootCmd.AddCommand(multiCmd)
	addRequestFlags(multiCmd)
	multiCmd.Flags().StringSlice("companies", nil, "Comma-separated insurers (default: all)")
	multiCmd.Flags().Int("concurrency", 0, "Maximum insurers calculated at once (0 = all)")
	multiCmd.Flags().Bool("history", false, "Record the calculations in the history database")
}
