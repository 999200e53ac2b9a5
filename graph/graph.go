// Package graph implements the cyclic-graph execution engine at the heart of
// Localmind. A graph is a set of named nodes, each a function from Run State
// to updated Run State plus a next-node selection; the Runner executes nodes
// sequentially until a node selects the terminal marker or the step ceiling
// is reached. Cycles are legal; the step ceiling is what makes them safe.
package graph

import (
	"context"
	"fmt"

	"github.com/localmind-ai/localmind/core"
)

// End is the terminal next-node selection. A node returning End completes the
// run.
const End = "__end__"

// NodeFunc is a unit of work in the graph. It receives the state produced by
// the previous node and returns the updated state together with the name of
// the node to execute next (or End). Returning an error aborts the run.
//
// Nodes may block only while awaiting a tool adapter or inference client
// response; they must honor ctx cancellation on those calls.
type NodeFunc func(ctx context.Context, state core.RunState) (core.RunState, string, error)

// Graph is an immutable-after-build set of named nodes with a single
// designated entry node.
type Graph struct {
	name  string
	entry string
	nodes map[string]NodeFunc
}

// New creates an empty graph. The name appears in logs and error messages.
func New(name string) *Graph {
	return &Graph{name: name, nodes: make(map[string]NodeFunc)}
}

// Name returns the graph's name.
func (g *Graph) Name() string { return g.name }

// AddNode registers a node under the given name, replacing any previous
// registration. It returns the graph for chaining.
func (g *Graph) AddNode(name string, fn NodeFunc) *Graph {
	g.nodes[name] = fn
	return g
}

// SetEntry designates the entry node. It returns the graph for chaining.
func (g *Graph) SetEntry(name string) *Graph {
	g.entry = name
	return g
}

// Validate checks the structural input constraints: a designated entry node
// that exists, and no nil node functions. Route targets are checked at
// execution time because selections are dynamic.
func (g *Graph) Validate() error {
	if g.entry == "" {
		return fmt.Errorf("graph %q: no entry node designated", g.name)
	}
	if _, ok := g.nodes[g.entry]; !ok {
		return fmt.Errorf("graph %q: entry node %q not registered", g.name, g.entry)
	}
	for name, fn := range g.nodes {
		if fn == nil {
			return fmt.Errorf("graph %q: node %q is nil", g.name, name)
		}
	}
	return nil
}
