package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Print the tailor version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Printf("tailor %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCommand)
}
