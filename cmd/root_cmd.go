package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "hyconf",
	Short: "Hyconf reads configuration files that mix TOML, YAML and properties.",
	Long: "Hyconf reads configuration files that mix TOML, YAML and properties blocks. " +
		"It splits a document into single-format blocks, merges them into one tree, " +
		"resolves variable references and infers the type of every value.",
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of Hyconf",
	Long:  `All software has versions. This is Hyconf's`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "Hyconf v0.1 -- HEAD")
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log segmentation decisions")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(detectCmd)
}
