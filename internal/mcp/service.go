package mcp

import (
	"context"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sferro/grafite/pkg/graph"
)

type Service struct {
	engine *graph.Engine[string]
}

func NewService(eng *graph.Engine[string]) *Service {
	return &Service{engine: eng}
}

// --- Tool Handlers ---

func (s *Service) AddNode(ctx context.Context, req *mcp.CallToolRequest, args AddNodeArgs) (*mcp.CallToolResult, AddNodeResult, error) {
	id, err := s.engine.AddNode(args.Key)
	if err != nil {
		return nil, AddNodeResult{}, err
	}
	return nil, AddNodeResult{Key: args.Key, NodeID: uint32(id)}, nil
}

func (s *Service) AddEdge(ctx context.Context, req *mcp.CallToolRequest, args AddEdgeArgs) (*mcp.CallToolResult, AddEdgeResult, error) {
	weight := args.Weight
	if weight == 0 {
		weight = 1.0
	}
	if err := s.engine.AddEdge(args.Source, args.Target, weight); err != nil {
		return nil, AddEdgeResult{}, err
	}
	return nil, AddEdgeResult{Status: "ok"}, nil
}

func (s *Service) GetNeighbors(ctx context.Context, req *mcp.CallToolRequest, args GetNeighborsArgs) (*mcp.CallToolResult, GetNeighborsResult, error) {
	out := s.engine.OutEdges(args.Key)
	res := GetNeighborsResult{Neighbors: make([]NeighborEntry, len(out))}
	for i, n := range out {
		res.Neighbors[i] = NeighborEntry{Key: n.Key, Weight: n.Weight}
	}
	return nil, res, nil
}

func (s *Service) Reachability(ctx context.Context, req *mcp.CallToolRequest, args ReachabilityArgs) (*mcp.CallToolResult, ReachabilityResult, error) {
	depth := args.MaxDepth
	if depth <= 0 {
		depth = 3
	}

	depths, err := s.engine.BFS(ctx, args.Start, depth)
	if err != nil {
		return nil, ReachabilityResult{}, err
	}
	return nil, ReachabilityResult{Depths: depths}, nil
}

func (s *Service) RankNodes(ctx context.Context, req *mcp.CallToolRequest, args RankNodesArgs) (*mcp.CallToolResult, RankNodesResult, error) {
	opts := graph.DefaultPageRankOptions()
	if args.Damping > 0 && args.Damping < 1 {
		opts.Damping = args.Damping
	}
	if args.MaxIterations > 0 {
		opts.MaxIterations = args.MaxIterations
	}

	ranks, err := s.engine.PageRank(ctx, opts)
	if err != nil {
		return nil, RankNodesResult{}, err
	}

	limit := args.Limit
	if limit <= 0 {
		limit = 10
	}

	nodes := make([]RankedNode, 0, len(ranks))
	for key, rank := range ranks {
		nodes = append(nodes, RankedNode{Key: key, Rank: rank})
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Rank != nodes[j].Rank {
			return nodes[i].Rank > nodes[j].Rank
		}
		return nodes[i].Key < nodes[j].Key // stable order for equal ranks
	})
	if len(nodes) > limit {
		nodes = nodes[:limit]
	}

	return nil, RankNodesResult{Nodes: nodes}, nil
}

func (s *Service) GraphStats(ctx context.Context, req *mcp.CallToolRequest, args GraphStatsArgs) (*mcp.CallToolResult, GraphStatsResult, error) {
	m := s.engine.Metrics()
	return nil, GraphStatsResult{
		NodeCount:       m.NodeCount,
		EdgeCount:       m.EdgeCount,
		PartitionCount:  m.PartitionCount,
		TotalOperations: m.TotalOperations,
		SnapshotVersion: m.SnapshotVersion,
	}, nil
}
