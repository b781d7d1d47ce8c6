package cmd

import (
	"os"

	"github.com/melih-ucgun/ifprop/internal/core"
	"github.com/melih-ucgun/ifprop/internal/resource"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Preview changes without applying them",
	Long:  `Calculates the difference between the desired state (config) and the current system state.`,
	Run: func(cmd *cobra.Command, args []string) {
		hostName, _ := cmd.Flags().GetString("host")

		pterm.DefaultHeader.Println("ifprop plan")
		spinner, _ := pterm.DefaultSpinner.Start("Loading configuration & context...")

		cfg, layers, err := loadCatalog(cmd)
		if err != nil {
			spinner.Fail("Failed to load config: " + err.Error())
			os.Exit(1)
		}

		ctx, err := connect(cmd, cfg, hostName, true)
		if err != nil {
			spinner.Fail("Connection failed: " + err.Error())
			os.Exit(1)
		}
		defer ctx.Transport.Close()

		// Plan is read-only, layer order only keeps the output readable.
		var items []core.ConfigItem
		for _, layer := range layers {
			for _, res := range layer {
				items = append(items, res.Item())
			}
		}

		spinner.UpdateText("Calculating plan...")
		eng := core.NewEngine(ctx, nil)
		planResult, err := eng.Plan(items, resource.CreateResourceWithParams)
		if err != nil {
			spinner.Fail("Planning failed: " + err.Error())
			os.Exit(1)
		}
		spinner.Success("Plan calculated")
		pterm.Println()

		if len(planResult.Changes) == 0 {
			pterm.Info.Println("No changes detected. System is in sync.")
			return
		}

		pterm.Println(pterm.FgCyan.Sprint("The following changes will be made:"))
		pterm.Println()

		for _, change := range planResult.Changes {
			pterm.Printf("  %s %s %q\n",
				pterm.FgYellow.Sprint("~"),
				pterm.Bold.Sprint(change.Type),
				change.Name)
			for _, detail := range change.Details {
				pterm.Printf("      %s\n", detail)
			}
		}

		pterm.Println()
		pterm.DefaultSection.Printf("Plan: %d to change, %d in sync, %d skipped.\n",
			len(planResult.Changes), len(planResult.InSync), len(planResult.Skipped))
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}
