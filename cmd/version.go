package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"urlembed/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the User-Agent sent upstream",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("urlembed %s\n", Version)
		fmt.Printf("user agent: %s\n", cfg.ProviderOptions(Version).UserAgent)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the config file location and the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		fmt.Printf("# %s\n", path)
		fmt.Print(cfg.String())
		return nil
	},
}
