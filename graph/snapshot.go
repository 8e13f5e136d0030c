package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/multierr"
)

// Document is the persisted snapshot produced and consumed by the canvas
// editor: the node list, the edge list, and the project name. The
// compiler accepts this shape directly.
type Document struct {
	Nodes       []Node         `json:"nodes"`
	Edges       []DocumentEdge `json:"edges"`
	ProjectName string         `json:"projectName"`
}

// DocumentEdge is the canvas edge shape. Besides the source and target
// node ids it may carry arrow/marker metadata from the canvas; that
// metadata is irrelevant to compilation and dropped on conversion.
type DocumentEdge struct {
	ID        string         `json:"id,omitempty"`
	Source    string         `json:"source"`
	Target    string         `json:"target"`
	MarkerEnd map[string]any `json:"markerEnd,omitempty"`
}

// Graph converts the document into a Graph, preserving node and edge
// order and stripping canvas-only edge metadata.
func (d *Document) Graph() *Graph {
	g := New(d.ProjectName)
	g.Nodes = append(g.Nodes, d.Nodes...)
	for _, e := range d.Edges {
		g.Edges = append(g.Edges, Edge{Source: e.Source, Target: e.Target})
	}
	return g
}

// Parser decodes snapshot documents.
type Parser struct {
	// Strict enables strict decoding (disallow unknown fields) and
	// rejects nodes whose type is outside the closed stage type set.
	Strict bool
}

// NewParser creates a parser that tolerates unknown fields and
// unrecognized node types (such nodes stay inert).
func NewParser() *Parser {
	return &Parser{Strict: false}
}

// NewStrictParser creates a parser with strict mode enabled.
func NewStrictParser() *Parser {
	return &Parser{Strict: true}
}

// Parse decodes a JSON snapshot and validates its shape. Snapshots come
// from an untrusted editor surface, so every load re-checks the model
// invariants instead of trusting the previous in-memory graph.
func (p *Parser) Parse(data []byte) (*Document, error) {
	var doc Document
	decoder := json.NewDecoder(bytes.NewReader(data))
	if p.Strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if err := p.validateShape(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ParseFile decodes a snapshot file.
func (p *Parser) ParseFile(filename string) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return p.Parse(data)
}

// validateShape checks the model invariants over a freshly decoded
// document. All violations are reported together, not one at a time.
func (p *Parser) validateShape(doc *Document) error {
	var errs error
	seen := make(map[string]bool, len(doc.Nodes))
	for i, node := range doc.Nodes {
		if node.ID == "" {
			errs = multierr.Append(errs, fmt.Errorf("node at index %d has an empty id", i))
			continue
		}
		if seen[node.ID] {
			errs = multierr.Append(errs, fmt.Errorf("duplicate node ID: %s", node.ID))
		}
		seen[node.ID] = true
		if p.Strict && !KnownType(node.Type) {
			errs = multierr.Append(errs, fmt.Errorf("node %s has unrecognized type %q", node.ID, node.Type))
		}
	}
	return errs
}

// ToJSON serializes a document to indented JSON.
func ToJSON(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// WriteToFile writes a document to a JSON snapshot file.
func WriteToFile(doc *Document, filename string) error {
	data, err := ToJSON(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}
	return nil
}
