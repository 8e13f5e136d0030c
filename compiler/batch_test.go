package compiler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mi-Lis/MLCanvas/graph"
)

func TestBuildAll(t *testing.T) {
	var docs []*graph.Document
	for i := 0; i < 8; i++ {
		docs = append(docs, &graph.Document{
			ProjectName: fmt.Sprintf("proj-%d", i),
			Nodes: []graph.Node{
				{ID: "m", Type: graph.NodeTypeModel},
				{ID: "l", Type: graph.NodeTypeLoss},
				{ID: "o", Type: graph.NodeTypeOptimizer},
			},
		})
	}
	// One invalid document in the middle.
	docs[3] = &graph.Document{ProjectName: "broken"}

	results, err := BuildAll(docs, 4)
	require.NoError(t, err, "Expected the batch to run")
	require.Len(t, results, len(docs), "Expected one result per document")

	for i, res := range results {
		if i == 3 {
			assert.False(t, res.OK, "Expected the broken document to fail")
			assert.Len(t, res.Errors, 3, "Expected the full error list")
			continue
		}
		assert.True(t, res.OK, "Expected document %d to build", i)
		assert.Contains(t, res.Source, fmt.Sprintf("%q", fmt.Sprintf("proj-%d.pt", i)),
			"Expected results to keep input order")
	}
}

func TestBuildAllDefaultPoolSize(t *testing.T) {
	docs := []*graph.Document{{ProjectName: "only", Nodes: []graph.Node{
		{ID: "m", Type: graph.NodeTypeModel},
		{ID: "l", Type: graph.NodeTypeLoss},
		{ID: "o", Type: graph.NodeTypeOptimizer},
	}}}

	results, err := BuildAll(docs, 0)
	require.NoError(t, err, "Expected a zero pool size to fall back to NumCPU")
	require.Len(t, results, 1)
	assert.True(t, results[0].OK, "Expected the build to succeed")
}
