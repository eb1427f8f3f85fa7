package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// global flags
	jsonOutput bool
	noCache    bool
)

var rootCmd = &cobra.Command{
	Use:     "planctl",
	Version: "dev",
	Short:   "Operator tool for the weekly shift planner",
	Long: `planctl runs the weekly auto-planner and loads employee rosters without going
through the HTTP API. It reads the same environment (.env) as the API server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "Compute holidays without the redis cache")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "planning",
		Title: "Planning:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "data",
		Title: "Data:",
	})

	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newHolidaysCmd())
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newUserCmd())

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the planctl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), rootCmd.Version)
		},
	})
}

func Execute() error {
	return rootCmd.Execute()
}
