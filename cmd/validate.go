package cmd

import (
	"os"

	"github.com/melih-ucgun/ifprop/internal/config"
	"github.com/melih-ucgun/ifprop/internal/core"
	"github.com/melih-ucgun/ifprop/internal/resource"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config without touching any system",
	Run: func(cmd *cobra.Command, args []string) {
		_, layers, err := loadCatalog(cmd)
		if err != nil {
			pterm.Error.Println(err)
			os.Exit(1)
		}

		var items []core.ConfigItem
		for _, layer := range config.Items(layers) {
			items = append(items, layer...)
		}

		eng := core.NewEngine(core.NewSystemContext(true, nil), nil)
		if err := eng.Validate(items, resource.CreateResourceWithParams); err != nil {
			pterm.Error.Println(err)
			os.Exit(1)
		}
		pterm.Success.Printf("%d resources in %d layers are valid\n", len(items), len(layers))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
