package main

import (
	"fmt"

	"github.com/sandevgo/carebot/internal/core"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CareBot version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", core.CareBotName, core.CareBotVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
