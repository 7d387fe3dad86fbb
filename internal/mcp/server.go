package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sferro/grafite/pkg/graph"
)

func NewMCPServer(eng *graph.Engine[string]) *mcp.Server {
	service := NewService(eng)

	// Create Server instance
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "Grafite Graph",
		Version: "0.1.0",
	}, nil) // Options can be nil for default

	// Register Tools using the Generic AddTool which inspects structs!

	mcp.AddTool(s, &mcp.Tool{
		Name:        "add_node",
		Description: "Register a node key in the graph. Idempotent: re-adding returns the same internal id.",
	}, service.AddNode)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "add_edge",
		Description: "Create or overwrite a weighted directed edge between two node keys. Unknown endpoints are registered automatically.",
	}, service.AddEdge)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_neighbors",
		Description: "List the outgoing edges of a node with their weights.",
	}, service.GetNeighbors)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "reachability",
		Description: "Breadth-first traversal from a start node, returning every reachable node with its hop distance.",
	}, service.Reachability)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "rank_nodes",
		Description: "Rank all nodes by PageRank importance and return the top results.",
	}, service.RankNodes)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "graph_stats",
		Description: "Report graph size, partition count and engine counters.",
	}, service.GraphStats)

	return s
}
