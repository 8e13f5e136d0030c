package compiler

import "github.com/Mi-Lis/MLCanvas/graph"

// ValidationResult reports whether a graph is compilable. OK is true iff
// Errors is empty.
type ValidationResult struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors,omitempty"`
}

// Validation error messages, one per failure kind.
const (
	errMissingModel     = "missing required stage: model"
	errMissingLoss      = "missing required stage: loss"
	errMissingOptimizer = "missing required stage: optimizer"
	errCycle            = "graph contains a cycle"
)

// Validate decides whether a graph can be compiled. Every check runs and
// every failure is collected; nothing short-circuits, so the editor can
// surface the full list at once. Validate never mutates the graph.
func Validate(g *graph.Graph) ValidationResult {
	var errs []string
	if g.CountByType(graph.NodeTypeModel) == 0 {
		errs = append(errs, errMissingModel)
	}
	if g.CountByType(graph.NodeTypeLoss) == 0 {
		errs = append(errs, errMissingLoss)
	}
	if g.CountByType(graph.NodeTypeOptimizer) == 0 {
		errs = append(errs, errMissingOptimizer)
	}
	if len(Order(g.Nodes, g.Edges)) != len(g.Nodes) {
		errs = append(errs, errCycle)
	}
	return ValidationResult{OK: len(errs) == 0, Errors: errs}
}
