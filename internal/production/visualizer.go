package production

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/comalice/superloop"
)

// TaskGraph is a task's state table plus the transitions seen at run time.
// State functions pick their successor in code, so edges can only be observed.
type TaskGraph struct {
	Name   string   `json:"name"`
	States []string `json:"states"`
	Active string   `json:"active,omitempty"`
	Edges  []Edge   `json:"edges,omitempty"`
}

// Edge represents an observed transition.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Count int    `json:"count"`
}

// GraphOf builds the graph of t using edges recorded by rec, which may be nil.
func GraphOf(t *superloop.Task, rec *EdgeRecorder) TaskGraph {
	g := TaskGraph{Name: t.Name()}
	for _, s := range t.States() {
		g.States = append(g.States, t.StateName(s.ID))
	}
	if t.Initialized() {
		g.Active = t.StateName(t.Current())
	}
	if rec != nil {
		for _, e := range rec.edges(t.Name()) {
			g.Edges = append(g.Edges, Edge{
				From:  t.StateName(e.from),
				To:    t.StateName(e.to),
				Count: e.count,
			})
		}
	}
	return g
}

// DefaultVisualizer renders task graphs.
type DefaultVisualizer struct{}

// ExportDOT generates Graphviz DOT source with one cluster per task.
func (v *DefaultVisualizer) ExportDOT(graphs ...TaskGraph) string {
	var buf bytes.Buffer
	buf.WriteString(`digraph Superloop {
  rankdir=LR;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9];
`)

	for _, g := range graphs {
		renderTask(&buf, g)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ExportJSON serializes the graphs to JSON.
func (v *DefaultVisualizer) ExportJSON(graphs ...TaskGraph) ([]byte, error) {
	return json.MarshalIndent(graphs, "", "  ")
}

// renderTask renders one task as a cluster.
func renderTask(buf *bytes.Buffer, g TaskGraph) {
	fmt.Fprintf(buf, "  subgraph \"cluster_%s\" {\n", g.Name)
	fmt.Fprintf(buf, "    label=\"%s\";\n", g.Name)

	for _, s := range g.States {
		style := ""
		if s == g.Active {
			style = ` style=filled fillcolor=lightgreen`
		}
		fmt.Fprintf(buf, "    %q [label=%q%s];\n", node(g.Name, s), s, style)
	}

	for _, e := range g.Edges {
		from := node(g.Name, e.From)
		if e.From == "none" {
			from = node(g.Name, "init")
			fmt.Fprintf(buf, "    %q [label=\"\" shape=point];\n", from)
		}
		fmt.Fprintf(buf, "    %q -> %q [label=\"%d\"];\n", from, node(g.Name, e.To), e.Count)
	}

	buf.WriteString("  }\n")
}

func node(task, state string) string {
	return task + "." + state
}

// EdgeRecorder is an observer counting transitions per task.
type EdgeRecorder struct {
	mu     sync.Mutex
	counts map[string]map[[2]superloop.StateID]int
}

type recordedEdge struct {
	from, to superloop.StateID
	count    int
}

func NewEdgeRecorder() *EdgeRecorder {
	return &EdgeRecorder{counts: make(map[string]map[[2]superloop.StateID]int)}
}

// TaskTransition implements superloop.Observer.
func (r *EdgeRecorder) TaskTransition(task string, from, to superloop.StateID, tick uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.counts[task]
	if m == nil {
		m = make(map[[2]superloop.StateID]int)
		r.counts[task] = m
	}
	m[[2]superloop.StateID{from, to}]++
}

// edges returns the task's edges sorted by source then target.
func (r *EdgeRecorder) edges(task string) []recordedEdge {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedEdge
	for k, n := range r.counts[task] {
		out = append(out, recordedEdge{from: k[0], to: k[1], count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].from != out[j].from {
			return out[i].from < out[j].from
		}
		return out[i].to < out[j].to
	})
	return out
}
