package expr

import (
	"fmt"
	"io"

	"sigs.k8s.io/yaml"

	"github.com/ma595/ffcx"
)

// NodeSpec is the serialized form of a node in a graph file.
type NodeSpec struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Operands []string `json:"operands,omitempty"`
}

// GraphSpec is the serialized form of a graph file. YAML and JSON are both
// accepted.
//
//	nodes:
//	  - {name: u, kind: terminal}
//	  - {name: du, kind: modifier, operands: [u]}
//	  - {name: f, kind: terminal}
//	  - {name: prod, kind: operator, operands: [du, f]}
type GraphSpec struct {
	Nodes []NodeSpec `json:"nodes"`
}

// Graph is a loaded, topologically ordered node sequence.
type Graph struct {
	Nodes []*Node
	Index map[*Node]int
	names map[string]int
}

// Lookup returns the index of the node with the given name.
func (g *Graph) Lookup(name string) (int, bool) {
	i, ok := g.names[name]
	return i, ok
}

// Resolve maps node names to indices, failing on the first unknown name.
func (g *Graph) Resolve(names []string) ([]int, error) {
	out := make([]int, 0, len(names))
	for _, name := range names {
		i, ok := g.names[name]
		if !ok {
			return nil, fmt.Errorf("unknown node %q: %w", name, ffcx.ErrInvalidInput)
		}
		out = append(out, i)
	}
	return out, nil
}

// Load reads a graph file from r.
func Load(r io.Reader) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading graph: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML or JSON graph file.
//
// Operands must name nodes listed earlier in the file, which makes the file
// order a valid topological order.
func Parse(data []byte) (*Graph, error) {
	var spec GraphSpec
	if err := yaml.UnmarshalStrict(data, &spec); err != nil {
		return nil, fmt.Errorf("decoding graph: %v: %w", err, ffcx.ErrInvalidInput)
	}
	return FromSpec(spec)
}

// FromSpec builds a Graph from its serialized form.
func FromSpec(spec GraphSpec) (*Graph, error) {
	g := &Graph{
		Nodes: make([]*Node, 0, len(spec.Nodes)),
		Index: make(map[*Node]int, len(spec.Nodes)),
		names: make(map[string]int, len(spec.Nodes)),
	}

	for i, ns := range spec.Nodes {
		if ns.Name == "" {
			return nil, fmt.Errorf("node %d has no name: %w", i, ffcx.ErrInvalidInput)
		}
		if _, dup := g.names[ns.Name]; dup {
			return nil, fmt.Errorf("duplicate node %q: %w", ns.Name, ffcx.ErrInvalidInput)
		}
		kind, err := ParseKind(ns.Kind)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", ns.Name, err)
		}

		switch kind {
		case Terminal:
			if len(ns.Operands) != 0 {
				return nil, fmt.Errorf("terminal %q has operands: %w", ns.Name, ffcx.ErrInvalidInput)
			}
		case Modifier:
			if len(ns.Operands) != 1 {
				return nil, fmt.Errorf("modifier %q needs exactly one operand, got %d: %w",
					ns.Name, len(ns.Operands), ffcx.ErrInvalidInput)
			}
		}

		node := &Node{Kind: kind, Name: ns.Name}
		if len(ns.Operands) > 0 {
			node.Operands = make([]*Node, len(ns.Operands))
		}
		for j, on := range ns.Operands {
			oi, ok := g.names[on]
			if !ok {
				return nil, fmt.Errorf("node %q: operand %q is not defined before use: %w",
					ns.Name, on, ffcx.ErrInvalidInput)
			}
			node.Operands[j] = g.Nodes[oi]
		}

		g.names[ns.Name] = i
		g.Index[node] = i
		g.Nodes = append(g.Nodes, node)
	}

	return g, nil
}
