package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/melih-ucgun/ifprop/internal/state"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [transactionID]",
	Short: "View application history",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		hm := state.NewHistoryManager("")

		if len(args) == 1 {
			tx, err := hm.GetTransaction(args[0])
			if err != nil {
				pterm.Error.Println(err)
				os.Exit(1)
			}
			renderTransaction(tx)
			return
		}

		history, err := hm.LoadHistory()
		if err != nil {
			pterm.Error.Println("Failed to load history:", err)
			os.Exit(1)
		}

		if len(history) == 0 {
			pterm.Info.Println("No history found.")
			return
		}

		pterm.DefaultHeader.Println("Transaction History")

		tableData := [][]string{{"ID", "Date", "Host", "Status", "Changes"}}

		// Show latest first (reverse iteration)
		for i := len(history) - 1; i >= 0; i-- {
			tx := history[i]
			tableData = append(tableData, []string{
				tx.ID,
				formatTimestamp(tx.Timestamp),
				tx.Host,
				statusStyle(tx.Status).Sprint(tx.Status),
				fmt.Sprintf("%d", len(tx.Changes)),
			})
		}

		pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
	},
}

func renderTransaction(tx *state.Transaction) {
	pterm.DefaultHeader.Printf("Transaction %s", tx.ID)
	pterm.Printf("Date: %s  Host: %s  Status: %s\n\n",
		formatTimestamp(tx.Timestamp), tx.Host, statusStyle(tx.Status).Sprint(tx.Status))

	if len(tx.Changes) == 0 {
		pterm.Info.Println("No changes recorded.")
		return
	}

	tableData := [][]string{{"Target", "Field", "From", "To", "Temporary"}}
	for _, ch := range tx.Changes {
		from := ch.From
		if ch.Absent {
			from = "(absent)"
		}
		tableData = append(tableData, []string{ch.Target, ch.Field, from, ch.To, fmt.Sprint(ch.Temporary)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

func statusStyle(status string) *pterm.Style {
	switch status {
	case "failed":
		return pterm.NewStyle(pterm.FgRed)
	case "reverted":
		return pterm.NewStyle(pterm.FgYellow)
	default:
		return pterm.NewStyle(pterm.FgGreen)
	}
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
