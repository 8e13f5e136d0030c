package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNodeGeneratesID(t *testing.T) {
	g := New("demo")

	id1, err := g.AddNode(Node{Type: NodeTypeData, Label: "Train"})
	require.NoError(t, err, "Expected no error")
	assert.NotEmpty(t, id1, "Expected a generated id")

	id2, err := g.AddNode(Node{Type: NodeTypeData})
	require.NoError(t, err, "Expected no error")
	assert.NotEqual(t, id1, id2, "Expected generated ids to be unique")
}

func TestAddNodeRejectsDuplicateID(t *testing.T) {
	g := New("demo")

	_, err := g.AddNode(Node{ID: "n1", Type: NodeTypeData})
	require.NoError(t, err, "Expected no error")

	_, err = g.AddNode(Node{ID: "n1", Type: NodeTypeModel})
	assert.Error(t, err, "Expected duplicate id to be rejected")
	assert.Len(t, g.Nodes, 1, "Expected the graph to be unchanged")
}

func TestRemoveNodeCleansEdges(t *testing.T) {
	g := New("demo")
	for _, id := range []string{"a", "b", "c"} {
		_, err := g.AddNode(Node{ID: id, Type: NodeTypeData})
		require.NoError(t, err, "Expected no error")
	}
	require.NoError(t, g.AddEdge("a", "b"), "Expected no error")
	require.NoError(t, g.AddEdge("b", "c"), "Expected no error")
	require.NoError(t, g.AddEdge("a", "c"), "Expected no error")

	require.NoError(t, g.RemoveNode("b"), "Expected no error")

	assert.False(t, g.HasNode("b"), "Expected node b to be gone")
	assert.Equal(t, []Edge{{Source: "a", Target: "c"}}, g.Edges,
		"Expected every edge touching b to be removed")
}

func TestRemoveNodeUnknown(t *testing.T) {
	g := New("demo")
	assert.Error(t, g.RemoveNode("missing"), "Expected an error for an unknown id")
}

func TestAddEdgeRequiresEndpoints(t *testing.T) {
	g := New("demo")
	_, err := g.AddNode(Node{ID: "a", Type: NodeTypeData})
	require.NoError(t, err, "Expected no error")

	assert.Error(t, g.AddEdge("a", "missing"), "Expected unknown target to be rejected")
	assert.Error(t, g.AddEdge("missing", "a"), "Expected unknown source to be rejected")
	assert.Empty(t, g.Edges, "Expected no edges to be added")
}

func TestRemoveEdge(t *testing.T) {
	g := New("demo")
	for _, id := range []string{"a", "b"} {
		_, err := g.AddNode(Node{ID: id, Type: NodeTypeData})
		require.NoError(t, err, "Expected no error")
	}
	require.NoError(t, g.AddEdge("a", "b"), "Expected no error")
	require.NoError(t, g.AddEdge("a", "b"), "Expected parallel edges to be permitted")

	g.RemoveEdge("a", "b")
	assert.Empty(t, g.Edges, "Expected every parallel edge to be removed")
}

func TestUpdateNode(t *testing.T) {
	g := New("demo")
	_, err := g.AddNode(Node{ID: "a", Type: NodeTypeOptimizer})
	require.NoError(t, err, "Expected no error")

	err = g.UpdateNode("a", "Adam", Params{"lr": 0.01}, "tuned")
	require.NoError(t, err, "Expected no error")

	node, ok := g.NodeByID("a")
	require.True(t, ok, "Expected the node to exist")
	assert.Equal(t, "Adam", node.Label, "Expected the label to be replaced")
	assert.Equal(t, Params{"lr": 0.01}, node.Params, "Expected the params to be replaced")
	assert.Equal(t, "tuned", node.Summary, "Expected the summary to be replaced")
	assert.Equal(t, NodeTypeOptimizer, node.Type, "Expected the type to be immutable")
}

func TestCountByType(t *testing.T) {
	g := New("demo")
	for i, typ := range []NodeType{NodeTypeData, NodeTypeData, NodeTypeModel} {
		_, err := g.AddNode(Node{ID: string(rune('a' + i)), Type: typ})
		require.NoError(t, err, "Expected no error")
	}
	assert.Equal(t, 2, g.CountByType(NodeTypeData), "Expected two data nodes")
	assert.Equal(t, 1, g.CountByType(NodeTypeModel), "Expected one model node")
	assert.Equal(t, 0, g.CountByType(NodeTypeLoss), "Expected no loss nodes")
}

func TestKnownType(t *testing.T) {
	assert.True(t, KnownType(NodeTypeComposite), "Expected composite to be known")
	assert.False(t, KnownType(NodeType("annotation")), "Expected an unknown type to be reported")
}
