package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "coachctl",
	Short: "Match-history coaching tool",
	Long:  "Query the coaching API for summoner reports and export composition training data.",
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "base URL of the coaching API")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
}
