package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quotescope/quotescope/internal/utils"
	"github.com/quotescope/quotescope/pkg/storage"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Prints recent calculations from the history database.",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, lock, err := openHistory(false)
		if err != nil {
			return err
		}
		defer lock.Unlock()
		defer db.Close()

		company, _ := cmd.Flags().GetString("company")
		limit, _ := cmd.Flags().GetInt("limit")
		successOnly, _ := cmd.Flags().GetBool("success")
		calcs, err := db.ListRecent(context.Background(), storage.ListOptions{
			Company:     company,
			Limit:       limit,
			SuccessOnly: successOnly,
		})
		if err != nil {
			return err
		}
		if len(calcs) == 0 {
			fmt.Println("No calculations recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "WHEN\tCOMPANY\tVEHICLE\tTOTAL\tTOOK\tSTATUS\t")
		for _, c := range calcs {
			status := "ok"
			switch {
			case c.Cached:
				status = "cached"
			case !c.Success:
				status = c.Error
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n", c.OccurredAt.Local().Format("2006-01-02 15:04"), c.Company, c.Vehicle,
				utils.OptionalPrice(c.TotalPrice), formatDuration(c.Duration), status)
		}
		return w.Flush()
	},
}

// historyStatsCmd represents the history stats command
var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints per-insurer statistics from the history database.",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, lock, err := openHistory(false)
		if err != nil {
			return err
		}
		defer lock.Unlock()
		defer db.Close()

		stats, err := db.GetStats(context.Background())
		if err != nil {
			return err
		}

		if len(stats) == 0 {
			fmt.Println("No data in the database to generate stats.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "COMPANY\tRUNS\tSUCCESS\tCACHED\tMIN\tAVG\tAVG TIME\t")

		var totalRuns, totalSuccess int
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\t%s\t\n", s.Company, s.Calculations, s.Successes, s.Cached,
				utils.OptionalPrice(s.MinPrice), utils.OptionalPrice(s.AvgPrice), formatDuration(s.AvgDuration))
			totalRuns += s.Calculations
			totalSuccess += s.Successes
		}

		fmt.Fprintln(w, " \t \t \t \t \t \t \t")
		fmt.Fprintf(w, "TOTAL\t%d\t%d\t\t\t\t\t\n", totalRuns, totalSuccess)

		return w.Flush()
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Deletes calculations older than the given age.",
	RunE: func(cmd *cobra.Command, args []string) error {
		olderThan, _ := cmd.Flags().GetDuration("older-than")
		if olderThan <= 0 {
			return fmt.Errorf("--older-than must be positive")
		}

		db, lock, err := openHistory(true)
		if err != nil {
			return err
		}
		defer lock.Unlock()
		defer db.Close()

		n, err := db.Prune(context.Background(), time.Now().Add(-olderThan))
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d calculations.\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyPruneCmd)
	historyCmd.PersistentFlags().String("dbpath", "", "History database path (default from history.dbpath, ~/.config/quotescope/history.sqlite)")
	viper.BindPFlag("history.dbpath", historyCmd.PersistentFlags().Lookup("dbpath"))
	historyCmd.Flags().String("company", "", "Only show this insurer")
	historyCmd.Flags().Int("limit", 20, "Number of calculations to show")
	historyCmd.Flags().Bool("success", false, "Only show successful calculations")
	historyPruneCmd.Flags().Duration("older-than", 30*24*time.Hour, "Delete calculations older than this")
}
