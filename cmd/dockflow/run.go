package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/dockflow"
	"github.com/agentstation/dockflow/builtin"
	"github.com/agentstation/dockflow/builtin/script"
	"github.com/agentstation/dockflow/middleware"
	"github.com/agentstation/dockflow/yaml"
)

// RunConfig holds configuration for the run command.
type RunConfig struct {
	Files      []string
	Verbose    bool
	DryRun     bool
	Sets       []string
	ScriptsDir string
	Output     string
}

// runResult is what one graph file produced.
type runResult struct {
	File   string            `json:"file" yaml:"file"`
	Graph  string            `json:"graph" yaml:"graph"`
	Prints map[string]string `json:"prints,omitempty" yaml:"prints,omitempty"`
	Values map[string]any    `json:"values,omitempty" yaml:"values,omitempty"`
}

var runConfig RunConfig

var runCmd = &cobra.Command{
	Use:   "run <file.yaml>...",
	Short: "Build graphs, replay their events and show the results",
	Long: `Build each graph, replay its events, apply --set values and print
what every print node shows together with all source values.

Files are processed concurrently; results are printed in argument order.`,
	Example: `  # Run a graph
  dockflow run calculator.yaml

  # Override a value after the events
  dockflow run calculator.yaml --set a.output=7

  # Only check the files
  dockflow run *.yaml --dry-run`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := runConfig
		cfg.Files = args
		cfg.Verbose = verbose
		cfg.Output = output
		return runGraphs(cmd.Context(), &cfg, cmd.OutOrStdout())
	},
}

func init() {
	runCmd.Flags().BoolVar(&runConfig.DryRun, "dry-run", false, "Validate graphs without building them")
	runCmd.Flags().StringArrayVar(&runConfig.Sets, "set", nil, "Set a source after the events (node.dock=value, repeatable)")
	runCmd.Flags().StringVar(&runConfig.ScriptsDir, "scripts-dir", "", "Directory of Lua scripts for script nodes (default ~/.dockflow/scripts)")
	rootCmd.AddCommand(runCmd)
}

// runGraphs runs every file of cfg and writes the results to w.
func runGraphs(ctx context.Context, cfg *RunConfig, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	dir, err := expandPath(cfg.ScriptsDir)
	if err != nil {
		return fmt.Errorf("expand path: %w", err)
	}
	scripts := script.NewManager(dir, cfg.Verbose)
	if err := scripts.Discover(); err != nil {
		return fmt.Errorf("discover scripts: %w", err)
	}

	results := make([]*runResult, len(cfg.Files))
	g, ctx := errgroup.WithContext(ctx)
	for i, file := range cfg.Files {
		g.Go(func() error {
			res, err := runFile(ctx, cfg, scripts, file)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if cfg.DryRun {
		for _, res := range results {
			fmt.Fprintf(w, "%s: graph %q is valid (dry run)\n", res.File, res.Graph)
		}
		return nil
	}
	if cfg.Output != "" && cfg.Output != textFormat {
		return writeStructured(w, cfg.Output, results)
	}
	for _, res := range results {
		writeResult(w, res)
	}
	return nil
}

// runFile builds the graph of one file and replays it.
func runFile(ctx context.Context, cfg *RunConfig, scripts *script.Manager, file string) (*runResult, error) {
	path, err := expandPath(file)
	if err != nil {
		return nil, fmt.Errorf("expand path: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("get absolute path: %w", err)
	}

	def, err := yaml.NewParser().ParseFile(absPath)
	if err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	res := &runResult{File: file, Graph: def.Name}

	if cfg.Verbose {
		log.Printf("Loaded graph %s from %s: %d nodes, %d connections, %d events",
			def.Name, absPath, len(def.Nodes), len(def.Connections), len(def.Events))
	}
	if cfg.DryRun {
		return res, nil
	}

	loader := yaml.NewLoader()
	builtin.RegisterAll(loader, cfg.Verbose, builtin.WithScripts(scripts))

	var opts []dockflow.GraphOption
	var timing *middleware.Timing
	if cfg.Verbose {
		timing = middleware.NewTiming()
		opts = append(opts,
			dockflow.WithLogger(middleware.NewSlogLogger(slog.New(
				slog.NewTextHandler(log.Writer(), &slog.HandlerOptions{Level: slog.LevelDebug})))),
			dockflow.WithTracer(timing))
	}
	g, err := loader.LoadDefinition(ctx, def, opts...)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	if err := yaml.Play(ctx, g, def.Events); err != nil {
		return nil, err
	}
	if err := applySets(ctx, g, cfg.Sets); err != nil {
		return nil, err
	}
	if timing != nil {
		for _, s := range timing.Snapshot() {
			log.Printf("[%s] %s: %d spans, avg %v, max %v", def.Name, s.Name, s.Count, s.Avg(), s.Max)
		}
	}

	res.Prints = make(map[string]string)
	for _, n := range g.Nodes() {
		if p, ok := n.Logic().(*builtin.Print); ok {
			res.Prints[n.Name()] = p.Text()
		}
	}
	res.Values = g.Values()
	return res, nil
}

// applySets sets sources from node.dock=value flags.
func applySets(ctx context.Context, g *dockflow.Graph, sets []string) error {
	for _, s := range sets {
		path, value, err := parseSet(s)
		if err != nil {
			return err
		}
		src, err := g.Source(path)
		if err != nil {
			return fmt.Errorf("--set %s: %w", path, err)
		}
		value, err = yaml.Coerce(src.Type(), value)
		if err != nil {
			return fmt.Errorf("--set %s: %w", path, err)
		}
		if err := src.Set(ctx, value); err != nil {
			return fmt.Errorf("--set %s: %w", path, err)
		}
	}
	return nil
}

// writeResult writes one result as text.
func writeResult(w io.Writer, res *runResult) {
	fmt.Fprintf(w, "== %s (%s)\n", res.Graph, res.File)

	names := make([]string, 0, len(res.Prints))
	for name := range res.Prints {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s: %s\n", name, res.Prints[name])
	}

	paths := make([]string, 0, len(res.Values))
	for path := range res.Values {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	if len(paths) > 0 {
		fmt.Fprintln(w, "values:")
	}
	for _, path := range paths {
		v := res.Values[path]
		if v == nil {
			fmt.Fprintf(w, "  %s = <invalid>\n", path)
			continue
		}
		fmt.Fprintf(w, "  %s = %s\n", path, builtin.FormatValue(v))
	}
}
