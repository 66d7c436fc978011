package main

import (
	"log"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "teachhub",
	Short: "Course marketplace: catalog, enrollments and reviews",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory holding app.env")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
