package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the replay CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("replay version %s\n", version)
		fmt.Println("A bar-replay backtesting engine for trading strategies")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
