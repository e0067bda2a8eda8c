package graph

import (
	"fmt"
	"strings"
)

// Exporter renders a graph as Mermaid, DOT or ASCII text.
type Exporter[S any] struct {
	graph *StateGraph[S]
}

// NewExporter creates a new graph exporter for the given graph
func NewExporter[S any](graph *StateGraph[S]) *Exporter[S] {
	return &Exporter[S]{graph: graph}
}

// Exporter returns an exporter for the compiled graph.
func (r *Runnable[S]) Exporter() *Exporter[S] {
	return NewExporter(r.graph)
}

// MermaidOptions defines configuration for Mermaid diagram generation
type MermaidOptions struct {
	// Direction of the flowchart (e.g., "TD", "LR")
	Direction string
}

type labeledEdge struct {
	from, to, label string
	conditional     bool
}

// allEdges lists static edges in insertion order followed by the expanded
// path maps of conditional edges, sorted by source and key.
func (ge *Exporter[S]) allEdges() []labeledEdge {
	var out []labeledEdge
	for _, e := range ge.graph.edges {
		out = append(out, labeledEdge{from: e.From, to: e.To})
	}
	for _, from := range sortedKeys(ge.graph.conditionalEdges) {
		ce := ge.graph.conditionalEdges[from]
		if ce.pathMap == nil {
			out = append(out, labeledEdge{from: from, conditional: true})
			continue
		}
		for _, key := range sortedKeys(ce.pathMap) {
			out = append(out, labeledEdge{from: from, to: ce.pathMap[key], label: key, conditional: true})
		}
	}
	return out
}

func (ge *Exporter[S]) referencesEnd(edges []labeledEdge) bool {
	for _, e := range edges {
		if e.to == END {
			return true
		}
	}
	return false
}

// DrawMermaid generates a Mermaid diagram representation of the graph
func (ge *Exporter[S]) DrawMermaid() string {
	return ge.DrawMermaidWithOptions(MermaidOptions{Direction: "TD"})
}

// DrawMermaidWithOptions generates a Mermaid diagram with custom options
func (ge *Exporter[S]) DrawMermaidWithOptions(opts MermaidOptions) string {
	var sb strings.Builder
	edges := ge.allEdges()

	direction := opts.Direction
	if direction == "" {
		direction = "TD"
	}
	fmt.Fprintf(&sb, "flowchart %s\n", direction)

	entry := ge.graph.entryPoint
	if entry != "" {
		sb.WriteString("    START([\"START\"])\n")
		sb.WriteString("    style START fill:#90EE90\n")
	}
	for _, name := range ge.graph.order {
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", name, name)
	}
	if ge.referencesEnd(edges) {
		sb.WriteString("    END([\"END\"])\n")
		sb.WriteString("    style END fill:#FFB6C1\n")
	}

	if entry != "" {
		fmt.Fprintf(&sb, "    START --> %s\n", entry)
	}
	for _, e := range edges {
		switch {
		case !e.conditional:
			fmt.Fprintf(&sb, "    %s --> %s\n", e.from, e.to)
		case e.label != "":
			fmt.Fprintf(&sb, "    %s -.->|%s| %s\n", e.from, e.label, e.to)
		default:
			fmt.Fprintf(&sb, "    %s -.-> %s_condition((?))\n", e.from, e.from)
			fmt.Fprintf(&sb, "    style %s_condition fill:#FFFFE0,stroke:#333,stroke-dasharray: 5 5\n", e.from)
		}
	}

	if entry != "" {
		fmt.Fprintf(&sb, "    style %s fill:#87CEEB\n", entry)
	}
	return sb.String()
}

// DrawDOT generates a DOT (Graphviz) representation of the graph
func (ge *Exporter[S]) DrawDOT() string {
	var sb strings.Builder
	edges := ge.allEdges()

	sb.WriteString("digraph G {\n")
	sb.WriteString("    rankdir=TD;\n")
	sb.WriteString("    node [shape=box];\n")

	if entry := ge.graph.entryPoint; entry != "" {
		sb.WriteString("    START [label=\"START\", shape=ellipse, style=filled, fillcolor=lightgreen];\n")
		fmt.Fprintf(&sb, "    START -> %s;\n", entry)
		fmt.Fprintf(&sb, "    %s [style=filled, fillcolor=lightblue];\n", entry)
	}
	if ge.referencesEnd(edges) {
		sb.WriteString("    END [label=\"END\", shape=ellipse, style=filled, fillcolor=lightpink];\n")
	}

	for _, e := range edges {
		switch {
		case !e.conditional:
			fmt.Fprintf(&sb, "    %s -> %s;\n", e.from, e.to)
		case e.label != "":
			fmt.Fprintf(&sb, "    %s -> %s [style=dashed, label=\"%s\"];\n", e.from, e.to, e.label)
		default:
			fmt.Fprintf(&sb, "    %s -> %s_condition [style=dashed, label=\"?\"];\n", e.from, e.from)
			fmt.Fprintf(&sb, "    %s_condition [label=\"?\", shape=diamond, style=filled, fillcolor=lightyellow];\n", e.from)
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

// DrawASCII generates an ASCII tree representation of the graph
func (ge *Exporter[S]) DrawASCII() string {
	if ge.graph.entryPoint == "" {
		return "No entry point set\n"
	}

	var sb strings.Builder
	sb.WriteString("Graph Execution Flow:\n")
	sb.WriteString("├── START\n")

	children := make(map[string][]labeledEdge)
	for _, e := range ge.allEdges() {
		children[e.from] = append(children[e.from], e)
	}
	ge.drawASCIINode(labeledEdge{to: ge.graph.entryPoint}, "│   ", true, make(map[string]bool), children, &sb)
	return sb.String()
}

func (ge *Exporter[S]) drawASCIINode(e labeledEdge, prefix string, isLast bool, visited map[string]bool, children map[string][]labeledEdge, sb *strings.Builder) {
	connector, nextPrefix := "├──", prefix+"│   "
	if isLast {
		connector, nextPrefix = "└──", prefix+"    "
	}

	name := e.to
	if e.conditional && e.to == "" {
		fmt.Fprintf(sb, "%s%s (?)\n", prefix, connector)
		return
	}
	label := name
	if e.label != "" {
		label = fmt.Sprintf("[%s] %s", e.label, name)
	}
	if visited[name] {
		fmt.Fprintf(sb, "%s%s %s (cycle)\n", prefix, connector, label)
		return
	}
	fmt.Fprintf(sb, "%s%s %s\n", prefix, connector, label)
	if name == END {
		return
	}

	visited[name] = true
	next := children[name]
	for i, child := range next {
		ge.drawASCIINode(child, nextPrefix, i == len(next)-1, visited, children, sb)
	}
}
