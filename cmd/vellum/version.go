package main

import (
	"fmt"

	"github.com/spf13/cobra"

	vellum "github.com/vellum-docs/vellum"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of vellum",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vellum version %s\n", vellum.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
