package cmd

import (
	"fmt"
	"os"

	"github.com/melih-ucgun/ifprop/internal/adapters/network"
	"github.com/melih-ucgun/ifprop/internal/config"
	"github.com/melih-ucgun/ifprop/internal/core"
	"github.com/melih-ucgun/ifprop/internal/ipprop"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var discoverCmd = &cobra.Command{
	Use:   "discover [interface...]",
	Short: "Print the current interface properties as config",
	Long: `Reads the properties of the given interfaces (all of them by default)
from the target and prints ip_interface and ip_interface_properties resources
that describe the current state.`,
	Run: func(cmd *cobra.Command, args []string) {
		hostName, _ := cmd.Flags().GetString("host")
		protos, _ := cmd.Flags().GetStringSlice("proto")

		var cfg *config.Config
		if hostName != "localhost" {
			configPath, _ := cmd.Flags().GetString("config")
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				pterm.Error.Println(err)
				os.Exit(1)
			}
			cfg = loaded
		}

		ctx, err := connect(cmd, cfg, hostName, true)
		if err != nil {
			pterm.Error.Println(err)
			os.Exit(1)
		}
		defer ctx.Transport.Close()

		out, err := discover(ctx, args, protos)
		if err != nil {
			pterm.Error.Println(err)
			os.Exit(1)
		}
		fmt.Fprint(ctx.Stdout, out)
	},
}

// discover renders the observed state of the interfaces as a config
// document. Without names every interface the provider lists is read.
func discover(ctx *core.SystemContext, names []string, protos []string) (string, error) {
	provider, err := network.GetPropertyProvider(ctx)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		if names, err = provider.ListInterfaces(ctx); err != nil {
			return "", err
		}
	}

	for _, p := range protos {
		if !ipprop.IsProtocol(p) {
			return "", fmt.Errorf("%w: %q", ipprop.ErrUnknownProtocol, p)
		}
	}

	var doc config.Config
	for _, name := range names {
		observed, err := provider.Fetch(ctx, name)
		if err != nil {
			return "", err
		}
		if len(protos) > 0 {
			filtered := make(ipprop.PropertyMap)
			for _, p := range protos {
				if props, ok := observed[ipprop.Protocol(p)]; ok {
					filtered[ipprop.Protocol(p)] = props
				}
			}
			observed = filtered
		}

		doc.Resources = append(doc.Resources,
			config.ResourceConfig{Type: ipprop.InterfaceType, Name: name},
			config.ResourceConfig{
				Type:   ipprop.ResourceType,
				Name:   name,
				Params: map[string]interface{}{"properties": observed.Params()},
			},
		)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().StringSlice("proto", nil, "only these protocols (ip, ipv4, ipv6)")
}
