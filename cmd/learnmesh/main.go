// learnmesh is the CLI for the learning assistant tool surface.
//
// Usage:
//
//	learnmesh serve [--config=<path>]
//	learnmesh score --session=<id> [--out-of=<n>] <score>...
//	learnmesh illustrate --session=<id> [--name=<artifact>] <prompt>
//	learnmesh artifacts list --session=<id>
//	learnmesh artifacts versions --session=<id> <name>
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hupe1980/learnmesh"
	"github.com/hupe1980/learnmesh/config"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	ro := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "learnmesh",
		Short: "Quiz performance tracking and lesson illustration tools",
		Long: "learnmesh serves the learning assistant tools over MCP and offers\n" +
			"one-shot commands for recording scores and generating illustrations.",
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version: version,
	}
	cmd.PersistentFlags().StringVarP(&ro.configPath, "config", "c", "", "path to a TOML or YAML config file")

	cmd.AddCommand(newServeCmd(ro))
	cmd.AddCommand(newScoreCmd(ro))
	cmd.AddCommand(newIllustrateCmd(ro))
	cmd.AddCommand(newArtifactsCmd(ro))
	return cmd
}

// openMesh loads configuration and builds a Mesh. Tests replace it.
var openMesh = func(ctx context.Context, ro *rootOptions) (*learnmesh.Mesh, *config.Config, error) {
	cfg, err := config.Load(ro.configPath)
	if err != nil {
		return nil, nil, err
	}
	m, err := learnmesh.NewFromConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return m, cfg, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
