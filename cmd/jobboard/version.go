package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/jobboard"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of jobboard",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("jobboard version %s\n", strings.TrimSpace(jobboard.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
