package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mi-Lis/MLCanvas/graph"
)

func testNode(id string, t graph.NodeType) graph.Node {
	return graph.Node{ID: id, Type: t}
}

func indexOf(order []string, id string) int {
	for i, v := range order {
		if v == id {
			return i
		}
	}
	return -1
}

func TestOrderRespectsEdges(t *testing.T) {
	nodes := []graph.Node{
		testNode("c", graph.NodeTypeModel),
		testNode("a", graph.NodeTypeData),
		testNode("b", graph.NodeTypeTransform),
	}
	edges := []graph.Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "c"},
	}

	order := Order(nodes, edges)
	require.Len(t, order, 3, "Expected a total order over an acyclic graph")
	for _, e := range edges {
		assert.Less(t, indexOf(order, e.Source), indexOf(order, e.Target),
			"Expected %s to precede %s", e.Source, e.Target)
	}
}

func TestOrderTotalityAcyclic(t *testing.T) {
	nodes := []graph.Node{
		testNode("a", graph.NodeTypeData),
		testNode("b", graph.NodeTypeData),
		testNode("c", graph.NodeTypeModel),
		testNode("d", graph.NodeTypeLoss),
	}
	edges := []graph.Edge{
		{Source: "a", Target: "c"},
		{Source: "b", Target: "c"},
		{Source: "c", Target: "d"},
	}

	assert.Len(t, Order(nodes, edges), len(nodes),
		"Expected the order to cover every node when no cycle exists")
}

func TestOrderCycle(t *testing.T) {
	nodes := []graph.Node{
		testNode("A", graph.NodeTypeData),
		testNode("B", graph.NodeTypeTransform),
		testNode("C", graph.NodeTypeModel),
	}
	edges := []graph.Edge{
		{Source: "A", Target: "B"},
		{Source: "B", Target: "C"},
		{Source: "C", Target: "A"},
	}

	assert.Empty(t, Order(nodes, edges),
		"Expected a fully cyclic graph to produce an empty order")
}

func TestOrderPartialCycle(t *testing.T) {
	nodes := []graph.Node{
		testNode("free", graph.NodeTypeData),
		testNode("x", graph.NodeTypeModel),
		testNode("y", graph.NodeTypeLoss),
	}
	edges := []graph.Edge{
		{Source: "x", Target: "y"},
		{Source: "y", Target: "x"},
	}

	order := Order(nodes, edges)
	assert.Equal(t, []string{"free"}, order,
		"Expected only the node outside the cycle to be ordered")
}

func TestOrderInsertionOrderTieBreak(t *testing.T) {
	nodes := []graph.Node{
		testNode("z", graph.NodeTypeData),
		testNode("m", graph.NodeTypeModel),
		testNode("a", graph.NodeTypeLoss),
	}

	assert.Equal(t, []string{"z", "m", "a"}, Order(nodes, nil),
		"Expected unconnected nodes to keep insertion order")
}

func TestOrderTieBreakWhenFreedTogether(t *testing.T) {
	nodes := []graph.Node{
		testNode("x", graph.NodeTypeData),
		testNode("b", graph.NodeTypeTransform),
		testNode("c", graph.NodeTypeModel),
	}
	// Edge order inverts the insertion order of the two successors that
	// become ready at the same time.
	edges := []graph.Edge{
		{Source: "x", Target: "c"},
		{Source: "x", Target: "b"},
	}

	assert.Equal(t, []string{"x", "b", "c"}, Order(nodes, edges),
		"Expected simultaneously freed nodes to be ordered by insertion, not by edge listing")
}

func TestOrderDanglingEdges(t *testing.T) {
	nodes := []graph.Node{
		testNode("a", graph.NodeTypeData),
		testNode("b", graph.NodeTypeModel),
	}

	// Unknown target: ignored entirely.
	order := Order(nodes, []graph.Edge{{Source: "a", Target: "ghost"}})
	assert.Len(t, order, 2, "Expected an edge to an unknown target to be ignored")

	// Unknown source: the target's in-degree is still counted, so the
	// target can never be dequeued.
	order = Order(nodes, []graph.Edge{{Source: "ghost", Target: "b"}})
	assert.Equal(t, []string{"a"}, order,
		"Expected a node blocked behind an unknown source to be dropped")
}

func TestOrderParallelEdges(t *testing.T) {
	nodes := []graph.Node{
		testNode("a", graph.NodeTypeData),
		testNode("b", graph.NodeTypeModel),
	}
	edges := []graph.Edge{
		{Source: "a", Target: "b"},
		{Source: "a", Target: "b"},
	}

	assert.Equal(t, []string{"a", "b"}, Order(nodes, edges),
		"Expected parallel edges not to change the result")
}
