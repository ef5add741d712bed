package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quotescope/quotescope/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `                  _                             
  __ _ _   _  ___ | |_ ___  ___  ___ ___  _ __   ___ 
 / _' | | | |/ _ \| __/ _ \/ __|/ __/ _ \| '_ \ / _ \
| (_| | |_| | (_) | ||  __/\__ \ (_| (_) | |_) |  __/
 \__, |\__,_|\___/ \__\___||___/\___\___/| .__/ \___|
    |_|                                  |_|         

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quotescope",
	Short: "Compare motor insurance quotes from Polish insurers.",
	Long: LOGO + `quotescope fills in the online OC/AC calculators of PZU, Generali, Uniqa, Link4 and TUZ
with your vehicle and driver data, then ranks the premiums they return.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.quotescope.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy for calculator sessions (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	viper.BindPFlag("browser.proxy", rootCmd.PersistentFlags().Lookup("proxy"))
}

func setDefaults() {
	viper.SetDefault("cache.ttl", "1h")
	viper.SetDefault("cache.sweep", "10m")
	viper.SetDefault("artifacts.dir", "./logs")
	viper.SetDefault("browser.proxy", "")
	viper.SetDefault("browser.steptimeout", "10s")
	viper.SetDefault("browser.resulttimeout", "15s")
	viper.SetDefault("browser.restrictdomains", true)
	viper.SetDefault("server.listen", ":8080")
	viper.SetDefault("server.url", "http://127.0.0.1:8080")
	viper.SetDefault("history.enabled", false)
	viper.SetDefault("history.dbpath", "")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".quotescope")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.quotescope.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}
