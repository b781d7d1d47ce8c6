package cmd

import (
	"fmt"

	"github.com/melih-ucgun/ifprop/internal/config"
	"github.com/melih-ucgun/ifprop/internal/core"
	"github.com/melih-ucgun/ifprop/internal/system"
	"github.com/melih-ucgun/ifprop/internal/transport"
	"github.com/spf13/cobra"
)

// loadCatalog loads, normalizes and sorts the config.
func loadCatalog(cmd *cobra.Command) (*config.Config, [][]config.ResourceConfig, error) {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := config.Prepare(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid resources: %w", err)
	}
	layers, err := config.SortResources(cfg.Resources)
	if err != nil {
		return nil, nil, fmt.Errorf("dependency error: %w", err)
	}
	return cfg, layers, nil
}

// connect opens the transport for hostName and detects the target system.
// The caller closes ctx.Transport.
func connect(cmd *cobra.Command, cfg *config.Config, hostName string, dryRun bool) (*core.SystemContext, error) {
	var tr core.Transport
	if hostName == "" || hostName == "localhost" {
		tr = transport.NewLocalTransport()
	} else {
		if cfg == nil {
			return nil, fmt.Errorf("host %q needs a config with a hosts list", hostName)
		}
		host, err := cfg.FindHost(hostName)
		if err != nil {
			return nil, err
		}
		sshTr, err := transport.NewSSHTransport(cmd.Context(), *host)
		if err != nil {
			return nil, err
		}
		tr = sshTr
	}

	ctx := core.NewSystemContext(dryRun, tr)
	ctx.Context = cmd.Context()
	if err := system.Detect(ctx); err != nil {
		tr.Close()
		return nil, err
	}
	return ctx, nil
}

func outcomeStatus(o core.Outcome) string {
	switch {
	case o.Skipped:
		return "skipped"
	case o.Err != nil:
		return "failed"
	case o.Result.Changed:
		return "changed"
	default:
		return "ok"
	}
}
