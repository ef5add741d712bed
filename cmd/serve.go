package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quotescope/quotescope/internal/server"
	"github.com/quotescope/quotescope/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the quote API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr, _ := cmd.Flags().GetString("listen")
		if listenAddr == "" {
			listenAddr = viper.GetString("server.listen")
		}
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		origins, _ := cmd.Flags().GetStringSlice("cors-origin")

		rt, err := newRuntime(cmd, concurrency)
		if err != nil {
			return err
		}
		defer rt.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(rt.orch, rt.history, utils.Log)
		srv.AllowedOrigins = origins
		return srv.Run(ctx, listenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "HTTP listen address (default from server.listen, :8080)")
	serveCmd.Flags().Int("concurrency", 0, "Maximum insurers calculated at once per multi request (0 = all)")
	serveCmd.Flags().StringSlice("cors-origin", nil, "Allowed CORS origins (default: any)")
	serveCmd.Flags().Bool("history", false, "Record calculations in the history database")
}
