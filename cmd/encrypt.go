package cmd

import (
	"fmt"
	"os"

	"github.com/melih-ucgun/ifprop/internal/config"
	"github.com/melih-ucgun/ifprop/internal/crypto"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var encryptCmd = &cobra.Command{
	Use:   "encrypt [value]",
	Short: "Encrypt a secret for use in the config",
	Long: `Encrypts a value (for example a become_password) with the master key.
Paste the printed "age:..." string into the config.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		key := config.MasterKey()
		if key == "" {
			pterm.Error.Println("No master key: set IFPROP_MASTER_KEY or create ~/.ifprop/master.key")
			os.Exit(1)
		}

		out, err := crypto.Encrypt(args[0], key)
		if err != nil {
			pterm.Error.Println(err)
			os.Exit(1)
		}
		fmt.Println(out)
	},
}

func init() {
	rootCmd.AddCommand(encryptCmd)
}
