package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/ma595/ffcx/internal/analysis"
	"github.com/ma595/ffcx/internal/cli"
	"github.com/ma595/ffcx/internal/expr"
)

var (
	analyzeTargets       []string
	analyzeSources       []string
	analyzeKeepModifiers bool
	analyzeYAML          bool
)

var (
	liveStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	deadStyle   = lipgloss.NewStyle().Faint(true)
	headerStyle = lipgloss.NewStyle().Underline(true)
)

// nodeReport is one row of the analyze output.
type nodeReport struct {
	Index   int      `json:"index"`
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Depends []string `json:"depends,omitempty"`
	Active  bool     `json:"active"`
	Image   bool     `json:"image"`
	Live    bool     `json:"live"`
}

type graphReport struct {
	Targets []string     `json:"targets"`
	Sources []string     `json:"sources,omitempty"`
	Live    int          `json:"live"`
	Nodes   []nodeReport `json:"nodes"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Report the nodes needed to compute targets",
	Long: `Load an expression graph and mark the nodes the targets depend on.

With --source, nodes are live only if they also depend on one of the
sources. Terminal modifiers count as terminals unless --keep-modifiers is
set or ignore_terminal_modifiers is false in the config.`,
	Example: `  # Nodes needed by the last node in the file
  ffcx analyze graph.yaml

  # Nodes between a coefficient and the integrand
  ffcx analyze graph.yaml --target integrand --source w`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := cli.LoggerFromContext(cmd.Context())

		f, err := os.Open(args[0])
		if err != nil {
			return cli.InputError("opening graph", err)
		}
		defer func() { _ = f.Close() }()

		g, err := expr.Load(f)
		if err != nil {
			return cli.InputError("loading graph", err)
		}
		if len(g.Nodes) == 0 {
			return cli.InputError("graph has no nodes", nil)
		}

		ignore := cfg.IgnoreTerminalModifiers
		if cmd.Flags().Changed("keep-modifiers") {
			ignore = !analyzeKeepModifiers
		}
		report, err := analyzeGraph(g, analyzeTargets, analyzeSources, ignore)
		if err != nil {
			return cli.InputError("analyzing graph", err)
		}
		logger.Debug("analyzed graph", "nodes", len(g.Nodes), "live", report.Live)

		if analyzeYAML {
			data, err := yaml.Marshal(report)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		}
		printReport(cmd.OutOrStdout(), report)
		return nil
	},
}

func analyzeGraph(g *expr.Graph, targets, sources []string, ignoreModifiers bool) (*graphReport, error) {
	if len(targets) == 0 {
		targets = []string{g.Nodes[len(g.Nodes)-1].Name}
	}
	targetIdx, err := g.Resolve(targets)
	if err != nil {
		return nil, err
	}

	deps, err := analysis.BuildDependencies(g.Nodes, g.Index, analysis.IgnoreTerminalModifiers(ignoreModifiers))
	if err != nil {
		return nil, err
	}
	active, _, err := analysis.MarkActive(deps, targetIdx)
	if err != nil {
		return nil, err
	}

	image := make([]bool, len(g.Nodes))
	if len(sources) > 0 {
		sourceIdx, err := g.Resolve(sources)
		if err != nil {
			return nil, err
		}
		if image, _, err = analysis.MarkImage(deps.Invert(), sourceIdx); err != nil {
			return nil, err
		}
	}

	report := &graphReport{Targets: targets, Sources: sources}
	for i, n := range g.Nodes {
		row := nodeReport{
			Index:  i,
			Name:   n.Name,
			Kind:   n.Kind.String(),
			Active: active[i],
			Image:  image[i],
			Live:   active[i] && (len(sources) == 0 || image[i]),
		}
		for _, d := range deps.Row(i) {
			row.Depends = append(row.Depends, g.Nodes[d].Name)
		}
		if row.Live {
			report.Live++
		}
		report.Nodes = append(report.Nodes, row)
	}
	return report, nil
}

func printReport(w io.Writer, r *graphReport) {
	nameWidth := len("name")
	for _, n := range r.Nodes {
		nameWidth = max(nameWidth, len(n.Name))
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%4s  %-*s  %-8s  %-4s  %s", "#", nameWidth, "name", "kind", "live", "depends on")))
	for _, n := range r.Nodes {
		mark, style := "-", deadStyle
		if n.Live {
			mark, style = "yes", liveStyle
		}
		line := fmt.Sprintf("%4d  %-*s  %-8s  %-4s  %s", n.Index, nameWidth, n.Name, n.Kind, mark, strings.Join(n.Depends, ", "))
		fmt.Fprintln(w, style.Render(line))
	}
	fmt.Fprintf(w, "\n%d of %d nodes live for %s\n", r.Live, len(r.Nodes), strings.Join(r.Targets, ", "))
}

func init() {
	analyzeCmd.Flags().StringSliceVar(&analyzeTargets, "target", nil, "target node names (default: last node)")
	analyzeCmd.Flags().StringSliceVar(&analyzeSources, "source", nil, "restrict to nodes depending on these nodes")
	analyzeCmd.Flags().BoolVar(&analyzeKeepModifiers, "keep-modifiers", false, "treat modifiers of terminals as dependencies")
	analyzeCmd.Flags().BoolVar(&analyzeYAML, "yaml", false, "print the report as YAML")
}
