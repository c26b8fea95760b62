package cmd

import (
	"github.com/spf13/cobra"
)

var (
	configFile string
	addr       string
)

var rootCmd = &cobra.Command{
	Use:   "filterdeck",
	Short: "Boolean filter composition for OpenSearch",
	Long:  `Filterdeck turns user-composed boolean filters into OpenSearch query documents with matching previews.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to YAML config file")
}

func Execute() error {
	return rootCmd.Execute()
}
