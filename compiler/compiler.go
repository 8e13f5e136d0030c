// Package compiler turns an MLCanvas pipeline graph into a runnable
// PyTorch training script. It validates the graph (required stages, no
// cycles), computes a dependency order, and emits deterministic program
// text. Failure is reported as data: a build either yields a complete
// script or the full list of validation errors, never partial code.
package compiler

import (
	"strings"

	"github.com/Mi-Lis/MLCanvas/graph"
	"github.com/Mi-Lis/MLCanvas/log"
)

// BuildResult is the outcome of a build request. On success Source holds
// the complete script; on failure Errors holds every validation error in
// report order.
type BuildResult struct {
	OK     bool     `json:"ok"`
	Source string   `json:"source,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// Build compiles a snapshot document as produced by the canvas editor.
func Build(doc *graph.Document) BuildResult {
	return BuildGraph(doc.Graph())
}

// BuildGraph compiles an in-memory graph. The graph must not be mutated
// while the build is in flight.
func BuildGraph(g *graph.Graph) BuildResult {
	log.Debugf("build requested: project=%q nodes=%d edges=%d", g.ProjectName, len(g.Nodes), len(g.Edges))
	if res := Validate(g); !res.OK {
		log.Debugf("build rejected: %d validation errors", len(res.Errors))
		return BuildResult{OK: false, Errors: res.Errors}
	}
	order := Order(g.Nodes, g.Edges)
	return BuildResult{OK: true, Source: emit(g, order)}
}

// ErrorScript renders the comment-only block produced in place of
// program text when validation fails, one error per line.
func ErrorScript(errs []string) string {
	var b strings.Builder
	b.WriteString("# build failed: graph did not pass validation\n")
	for _, e := range errs {
		b.WriteString("# " + e + "\n")
	}
	return b.String()
}

// ScriptFilename returns the download filename for a project's script.
func ScriptFilename(projectName string) string {
	if projectName == "" {
		projectName = "pipeline"
	}
	return projectName + ".py"
}
