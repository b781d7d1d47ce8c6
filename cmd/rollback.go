package cmd

import (
	"os"

	"github.com/melih-ucgun/ifprop/internal/config"
	"github.com/melih-ucgun/ifprop/internal/core"
	"github.com/melih-ucgun/ifprop/internal/resource"
	"github.com/melih-ucgun/ifprop/internal/state"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback [transactionID|last]",
	Short: "Rollback a specific transaction",
	Long: `Re-applies the values recorded before the transaction. Properties that
had no value before cannot be restored and are left as they are.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		hm := state.NewHistoryManager("")

		tx, err := hm.GetTransaction(args[0])
		if err != nil {
			pterm.Error.Println(err)
			os.Exit(1)
		}

		layers := state.RollbackItems(tx)
		if len(layers) == 0 {
			pterm.Info.Println("Nothing to roll back in", tx.ID)
			return
		}

		pterm.DefaultHeader.Printf("Rolling Back: %s", tx.ID)
		pterm.Warning.Println("This operation attempts to undo changes made in this transaction.")
		for _, layer := range layers {
			for _, item := range layer {
				pterm.Printf("  %s %s\n", pterm.FgYellow.Sprint("~"), item.ID)
			}
		}

		// Confirm
		confirmed, _ := cmd.Flags().GetBool("yes")
		if !confirmed {
			result, _ := pterm.DefaultInteractiveConfirm.Show("Are you sure?")
			if !result {
				pterm.Info.Println("Rollback cancelled.")
				return
			}
		}

		hostName := tx.Host
		if cmd.Flags().Changed("host") || hostName == "" {
			hostName, _ = cmd.Flags().GetString("host")
		}

		var cfg *config.Config
		if hostName != "localhost" {
			configPath, _ := cmd.Flags().GetString("config")
			if cfg, err = config.LoadConfig(configPath); err != nil {
				pterm.Error.Println(err)
				os.Exit(1)
			}
		}

		ctx, err := connect(cmd, cfg, hostName, false)
		if err != nil {
			pterm.Error.Println(err)
			os.Exit(1)
		}
		defer ctx.Transport.Close()

		eng := core.NewEngine(ctx, nil)
		runErr := eng.RunLayers(layers, resource.CreateResourceWithParams)
		renderOutcomes(eng.Outcomes)
		if runErr != nil {
			pterm.Error.Println(runErr)
			os.Exit(1)
		}

		if err := hm.SetStatus(tx.ID, "reverted"); err != nil {
			pterm.Warning.Println("Failed to update history:", err)
		}
		pterm.Success.Println("Rolled back", tx.ID)
	},
}

func init() {
	rootCmd.AddCommand(rollbackCmd)
	rollbackCmd.Flags().BoolP("yes", "y", false, "Confirm rollback automatically")
}
