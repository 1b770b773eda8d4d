package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	goyaml "github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/agentstation/dockflow/builtin"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List the built-in node types",
	Example: `  dockflow nodes
  dockflow nodes --output yaml
  dockflow nodes info operation`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNodesList(cmd.OutOrStdout(), output)
	},
}

var nodesInfoCmd = &cobra.Command{
	Use:   "info <type>",
	Short: "Show docks, actions and configuration of a node type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNodesInfo(cmd.OutOrStdout(), args[0], output)
	},
}

func init() {
	nodesCmd.AddCommand(nodesInfoCmd)
	rootCmd.AddCommand(nodesCmd)
}

// getBuiltinNodes returns metadata for all builtin nodes, sorted by
// category then type.
func getBuiltinNodes() []builtin.NodeMetadata {
	registry := builtin.RegisterAll(nil, false)
	nodes := make([]builtin.NodeMetadata, 0, len(registry.All()))
	for _, nodeType := range registry.Types() {
		b, _ := registry.Get(nodeType)
		nodes = append(nodes, b.Metadata())
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Category < nodes[j].Category
	})
	return nodes
}

// runNodesList lists all available node types.
func runNodesList(w io.Writer, format string) error {
	nodes := getBuiltinNodes()
	if format == jsonFormat || format == yamlFormat {
		return writeStructured(w, format, nodes)
	}
	return outputTable(w, nodes)
}

// runNodesInfo shows detailed information about a specific node type.
func runNodesInfo(w io.Writer, nodeType, format string) error {
	for _, node := range getBuiltinNodes() {
		if node.Type != nodeType {
			continue
		}
		if format == jsonFormat || format == yamlFormat {
			return writeStructured(w, format, node)
		}

		fmt.Fprintf(w, "Node Type: %s\n", node.Type)
		fmt.Fprintf(w, "Category: %s\n", node.Category)
		fmt.Fprintf(w, "Description: %s\n", node.Description)
		if node.Since != "" {
			fmt.Fprintf(w, "Since: %s\n", node.Since)
		}

		writeDocks(w, "Sinks", node.Sinks)
		writeDocks(w, "Sources", node.Sources)
		if len(node.Actions) > 0 {
			fmt.Fprintln(w, "\nActions:")
			for _, a := range node.Actions {
				fmt.Fprintf(w, "  %-12s %s\n", a.Name, a.Description)
			}
		}

		if len(node.ConfigSchema) > 0 {
			fmt.Fprintln(w, "\nConfiguration:")
			schemaJSON, _ := json.MarshalIndent(node.ConfigSchema, "  ", "  ")
			fmt.Fprintf(w, "  %s\n", schemaJSON)
		}

		if len(node.Examples) > 0 {
			fmt.Fprintln(w, "\nExamples:")
			for i, example := range node.Examples {
				fmt.Fprintf(w, "  %d. %s\n", i+1, example.Name)
				if example.Description != "" {
					fmt.Fprintf(w, "     %s\n", example.Description)
				}
				if len(example.Config) > 0 {
					configYAML, _ := goyaml.Marshal(example.Config)
					fmt.Fprintf(w, "     Config:\n")
					for _, line := range strings.Split(string(configYAML), "\n") {
						if line != "" {
							fmt.Fprintf(w, "       %s\n", line)
						}
					}
				}
			}
		}
		return nil
	}

	return fmt.Errorf("node type '%s' not found", nodeType)
}

func writeDocks(w io.Writer, title string, docks []builtin.DockInfo) {
	if len(docks) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, d := range docks {
		fmt.Fprintf(w, "  %-12s %-8s %s\n", d.Name, d.Type, d.Description)
	}
}

// outputTable outputs nodes grouped by category.
func outputTable(w io.Writer, nodes []builtin.NodeMetadata) error {
	categories := make(map[string][]builtin.NodeMetadata)
	for _, node := range nodes {
		categories[node.Category] = append(categories[node.Category], node)
	}

	categoryNames := make([]string, 0, len(categories))
	for cat := range categories {
		categoryNames = append(categoryNames, cat)
	}
	sort.Strings(categoryNames)

	for _, cat := range categoryNames {
		fmt.Fprintf(w, "\n%s:\n", strings.ToUpper(cat[:1])+cat[1:])
		fmt.Fprintln(w, strings.Repeat("-", len(cat)+1))
		for _, node := range categories[cat] {
			fmt.Fprintf(w, "  %-20s %s\n", node.Type, node.Description)
		}
	}

	fmt.Fprintf(w, "\nTotal: %d node types\n", len(nodes))
	fmt.Fprintln(w, "\nUse 'dockflow nodes info <type>' for detailed information about a specific node.")
	return nil
}
