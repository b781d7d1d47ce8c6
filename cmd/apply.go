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

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Sistemi arzu edilen duruma getirir",
	Run: func(cmd *cobra.Command, args []string) {
		hostName, _ := cmd.Flags().GetString("host")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		pterm.DefaultHeader.Println("ifprop apply")
		spinner, _ := pterm.DefaultSpinner.Start("Loading configuration...")

		cfg, layers, err := loadCatalog(cmd)
		if err != nil {
			spinner.Fail("Konfigürasyon yüklenemedi: " + err.Error())
			os.Exit(1)
		}

		spinner.UpdateText("Connecting to " + hostName + "...")
		ctx, err := connect(cmd, cfg, hostName, dryRun)
		if err != nil {
			spinner.Fail("Connection failed: " + err.Error())
			os.Exit(1)
		}
		defer ctx.Transport.Close()
		spinner.Success("Target: ", ctx.Hostname, " (", ctx.OS, ")")

		if dryRun {
			pterm.Info.Println("[DRY-RUN] Sisteme gerçek bir değişiklik uygulanmayacak.")
		}

		tx := state.NewTransaction(hostName)
		eng := core.NewEngine(ctx, state.NewRecorder(tx))
		eng.Concurrency = concurrency

		runErr := eng.RunLayers(config.Items(layers), resource.CreateResourceWithParams)
		renderOutcomes(eng.Outcomes)

		if !dryRun {
			if runErr == nil {
				for _, o := range eng.Outcomes {
					if o.Err == nil && o.Result.Changed {
						tx.AddChanges(o.Item.Type, o.Item.Name, o.Result.Changes)
					}
				}
			} else {
				tx.Status = "failed"
			}

			if len(tx.Changes) > 0 || runErr != nil {
				if err := state.NewHistoryManager("").AddTransaction(*tx); err != nil {
					pterm.Warning.Println("Failed to save history:", err)
				} else {
					pterm.Info.Println("Transaction:", tx.ID)
				}
			}
		}

		if runErr != nil {
			pterm.Error.Println(runErr)
			os.Exit(1)
		}
		pterm.Success.Println("Done.")
	},
}

func renderOutcomes(outcomes []core.Outcome) {
	if len(outcomes) == 0 {
		pterm.Info.Println("No resources.")
		return
	}

	tableData := [][]string{{"Resource", "Status", "Message"}}
	for _, o := range outcomes {
		status := outcomeStatus(o)
		style := pterm.NewStyle(pterm.FgGreen)
		switch status {
		case "failed":
			style = pterm.NewStyle(pterm.FgRed)
		case "changed":
			style = pterm.NewStyle(pterm.FgYellow)
		case "skipped":
			style = pterm.NewStyle(pterm.FgGray)
		}

		msg := o.Result.Message
		if o.Err != nil {
			msg = o.Err.Error()
		}
		tableData = append(tableData, []string{o.Item.ID, style.Sprint(status), msg})
	}
	pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().BoolP("dry-run", "d", false, "Değişiklikleri uygulama, sadece ne yapılacağını göster")
	applyCmd.Flags().Int("concurrency", 0, "max resources applied at once per layer (0: unlimited)")
}
