package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ifprop",
	Short: "Declarative IP interface property management",
	Long: `ifprop keeps the protocol properties of IP interfaces (mtu, forwarding,
hostmodel, ...) at the values declared in a YAML config, locally or over SSH.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		slog.SetDefault(slog.New(handler))
	},
}

// Execute runs the root command; ctx cancels in-flight remote commands.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "ifprop.yaml", "config file path")
	rootCmd.PersistentFlags().StringP("host", "H", "localhost", "target host (a name from the config hosts list)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging")
}
