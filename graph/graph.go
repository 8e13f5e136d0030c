// Package graph holds the MLCanvas pipeline graph model: typed stage
// nodes, directed dependency edges, and the editor-facing mutation
// operations. It is pure data; validation and code generation live in
// the compiler package.
package graph

import (
	"fmt"

	"github.com/google/uuid"
)

// NodeType identifies the pipeline stage a node represents.
type NodeType string

// The closed set of stage types. A node whose type is outside this set is
// inert: it participates in ordering but no code is generated for it.
const (
	NodeTypeData      NodeType = "data"
	NodeTypeTransform NodeType = "transform"
	NodeTypeSplit     NodeType = "split"
	NodeTypeModel     NodeType = "model"
	NodeTypeLoss      NodeType = "loss"
	NodeTypeOptimizer NodeType = "optimizer"
	NodeTypeMetric    NodeType = "metric"
	NodeTypeTrainer   NodeType = "trainer"
	NodeTypeComposite NodeType = "composite"
)

// KnownType reports whether t is a member of the closed stage type set.
func KnownType(t NodeType) bool {
	switch t {
	case NodeTypeData, NodeTypeTransform, NodeTypeSplit, NodeTypeModel,
		NodeTypeLoss, NodeTypeOptimizer, NodeTypeMetric, NodeTypeTrainer,
		NodeTypeComposite:
		return true
	}
	return false
}

// Params holds a node's configuration as JSON-decoded values: string,
// float64, bool, []any, or map[string]any. No shape is enforced here;
// per-type defaulting happens only in the code emitter.
type Params map[string]any

// Position is the node's coordinate on the canvas. It is owned entirely
// by the editor and irrelevant to compilation.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a single stage in the pipeline.
type Node struct {
	// ID is the unique node identifier, immutable once created.
	ID string `json:"id"`

	// Type is the stage type (one of the NodeType constants).
	Type NodeType `json:"type"`

	// Label is the user-facing display name. May be empty.
	Label string `json:"label,omitempty"`

	// Params contains stage-specific configuration.
	Params Params `json:"params,omitempty"`

	// Summary is a free-text annotation, not used by code generation.
	Summary string `json:"summary,omitempty"`

	// Position is the canvas coordinate.
	Position Position `json:"position"`
}

// Edge is a directed dependency from a source node to a target node.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the set of nodes and edges plus the project name. Node and
// edge slices keep insertion order; the compiler relies on that order to
// break ties deterministically.
type Graph struct {
	Nodes       []Node `json:"nodes"`
	Edges       []Edge `json:"edges"`
	ProjectName string `json:"projectName"`
}

// New creates an empty graph with the given project name.
func New(projectName string) *Graph {
	return &Graph{ProjectName: projectName}
}

// NodeByID returns the node with the given id.
func (g *Graph) NodeByID(id string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// HasNode reports whether a node with the given id exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.NodeByID(id)
	return ok
}

// CountByType returns the number of nodes of the given type.
func (g *Graph) CountByType(t NodeType) int {
	n := 0
	for i := range g.Nodes {
		if g.Nodes[i].Type == t {
			n++
		}
	}
	return n
}

// AddNode appends a node to the graph. An empty id is replaced with a
// generated uuid. Duplicate ids are rejected.
func (g *Graph) AddNode(node Node) (string, error) {
	if node.ID == "" {
		node.ID = uuid.NewString()
	}
	if g.HasNode(node.ID) {
		return "", fmt.Errorf("node with ID %s already exists", node.ID)
	}
	g.Nodes = append(g.Nodes, node)
	return node.ID, nil
}

// RemoveNode deletes the node with the given id together with every edge
// that references it. Removing an unknown id is an error.
func (g *Graph) RemoveNode(id string) error {
	idx := -1
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("node %s does not exist", id)
	}
	g.Nodes = append(g.Nodes[:idx], g.Nodes[idx+1:]...)

	kept := g.Edges[:0]
	for _, e := range g.Edges {
		if e.Source == id || e.Target == id {
			continue
		}
		kept = append(kept, e)
	}
	g.Edges = kept
	return nil
}

// UpdateNode replaces the label, params, and summary of an existing node.
// The id and type are immutable.
func (g *Graph) UpdateNode(id string, label string, params Params, summary string) error {
	node, ok := g.NodeByID(id)
	if !ok {
		return fmt.Errorf("node %s does not exist", id)
	}
	node.Label = label
	node.Params = params
	node.Summary = summary
	return nil
}

// SetPosition moves a node on the canvas.
func (g *Graph) SetPosition(id string, pos Position) error {
	node, ok := g.NodeByID(id)
	if !ok {
		return fmt.Errorf("node %s does not exist", id)
	}
	node.Position = pos
	return nil
}

// AddEdge appends a directed edge. Both endpoints must exist.
func (g *Graph) AddEdge(source, target string) error {
	if !g.HasNode(source) {
		return fmt.Errorf("source node %s does not exist", source)
	}
	if !g.HasNode(target) {
		return fmt.Errorf("target node %s does not exist", target)
	}
	g.Edges = append(g.Edges, Edge{Source: source, Target: target})
	return nil
}

// RemoveEdge deletes every edge from source to target.
func (g *Graph) RemoveEdge(source, target string) {
	kept := g.Edges[:0]
	for _, e := range g.Edges {
		if e.Source == source && e.Target == target {
			continue
		}
		kept = append(kept, e)
	}
	g.Edges = kept
}
