package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/dockflow/builtin"
	"github.com/agentstation/dockflow/builtin/script"
	"github.com/agentstation/dockflow/yaml"
)

var validateScriptsDir string

var validateCmd = &cobra.Command{
	Use:   "validate <file.yaml>...",
	Short: "Check graph definitions without running their events",
	Long: `Parse each file, check it against the definition schema and the node
config schemas, then build the graph to catch bad connections and cycles.`,
	Example: `  dockflow validate calculator.yaml counter.yaml`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateFiles(cmd.Context(), args, validateScriptsDir, cmd.OutOrStdout())
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateScriptsDir, "scripts-dir", "", "Directory of Lua scripts for script nodes")
	rootCmd.AddCommand(validateCmd)
}

// validateFiles builds every graph and reports the ones that are valid.
func validateFiles(ctx context.Context, files []string, scriptsDir string, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	dir, err := expandPath(scriptsDir)
	if err != nil {
		return fmt.Errorf("expand path: %w", err)
	}
	scripts := script.NewManager(dir, verbose)
	if err := scripts.Discover(); err != nil {
		return fmt.Errorf("discover scripts: %w", err)
	}

	names := make([]string, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, file := range files {
		g.Go(func() error {
			path, err := expandPath(file)
			if err != nil {
				return err
			}
			def, err := yaml.NewParser().ParseFile(path)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}

			loader := yaml.NewLoader()
			builtin.RegisterAll(loader, false, builtin.WithScripts(scripts))
			graph, err := loader.LoadDefinition(ctx, def)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			if err := graph.Validate(); err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			names[i] = def.Name
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, file := range files {
		fmt.Fprintf(w, "%s: graph %q is valid\n", file, names[i])
	}
	return nil
}
