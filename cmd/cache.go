package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quotescope/quotescope/pkg/cache"
)

// The result cache lives in the serving process, so these commands talk to
// a running `quotescope serve`.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the result cache of a running server",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints the result cache statistics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Success bool        `json:"success"`
			Data    cache.Stats `json:"data"`
			Error   string      `json:"error"`
		}
		if err := callServer(cmd.Context(), http.MethodGet, "/api/insurance/stats", &resp); err != nil {
			return err
		}
		if !resp.Success {
			return fmt.Errorf("server error: %s", resp.Error)
		}
		fmt.Printf("Entries: %d\nHits:    %d\nMisses:  %d\n", resp.Data.Entries, resp.Data.Hits, resp.Data.Misses)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drops every cached result.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := callServer(cmd.Context(), http.MethodPost, "/api/insurance/cache/clear", &resp); err != nil {
			return err
		}
		if !resp.Success {
			return fmt.Errorf("server error: %s", resp.Error)
		}
		fmt.Println(resp.Message)
		return nil
	},
}

func callServer(ctx context.Context, method, path string, out interface{}) error {
	base := strings.TrimRight(viper.GetString("server.url"), "/")

	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 2
	client.HTTPClient.Timeout = 10 * time.Second

	req, err := retryablehttp.NewRequestWithContext(ctx, method, base+path, nil)
	if err != nil {
		return err
	}
	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("could not reach server at %s: %w", base, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unexpected response (status %d): %w", res.StatusCode, err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.PersistentFlags().String("server", "", "Server base URL (default from server.url)")
	viper.BindPFlag("server.url", cacheCmd.PersistentFlags().Lookup("server"))
}
