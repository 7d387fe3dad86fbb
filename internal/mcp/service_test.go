package mcp

import (
	"context"
	"testing"

	"github.com/sferro/grafite/pkg/graph"
)

func newTestService() *Service {
	return NewService(graph.New[string](graph.DefaultOptions()))
}

func TestAddNodeAndEdgeTools(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	_, res, err := s.AddNode(ctx, nil, AddNodeArgs{Key: "alice"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Key != "alice" {
		t.Errorf("key = %q, want alice", res.Key)
	}

	// Zero weight on the wire defaults to 1.0
	if _, _, err := s.AddEdge(ctx, nil, AddEdgeArgs{Source: "alice", Target: "bob"}); err != nil {
		t.Fatal(err)
	}

	_, nb, err := s.GetNeighbors(ctx, nil, GetNeighborsArgs{Key: "alice"})
	if err != nil {
		t.Fatal(err)
	}
	if len(nb.Neighbors) != 1 || nb.Neighbors[0].Key != "bob" || nb.Neighbors[0].Weight != 1.0 {
		t.Errorf("unexpected neighbors: %+v", nb.Neighbors)
	}
}

func TestAddNodeToolRejectsEmptyKey(t *testing.T) {
	s := newTestService()

	if _, _, err := s.AddNode(context.Background(), nil, AddNodeArgs{}); err == nil {
		t.Error("expected an error for an empty key")
	}
}

func TestReachabilityTool(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	for _, e := range [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}} {
		if _, _, err := s.AddEdge(ctx, nil, AddEdgeArgs{Source: e[0], Target: e[1], Weight: 1}); err != nil {
			t.Fatal(err)
		}
	}

	// Default max_depth is 3
	_, res, err := s.Reachability(ctx, nil, ReachabilityArgs{Start: "a"})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"a": 0, "b": 1, "c": 2, "d": 3}
	if len(res.Depths) != len(want) {
		t.Fatalf("depths = %v, want %v", res.Depths, want)
	}
	for k, d := range want {
		if res.Depths[k] != d {
			t.Errorf("depth[%s] = %d, want %d", k, res.Depths[k], d)
		}
	}
}

func TestRankNodesToolOrdersAndLimits(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	// a and b point at c, making it the highest ranked node.
	for _, e := range [][2]string{{"a", "c"}, {"b", "c"}, {"c", "a"}} {
		if _, _, err := s.AddEdge(ctx, nil, AddEdgeArgs{Source: e[0], Target: e[1], Weight: 1}); err != nil {
			t.Fatal(err)
		}
	}

	_, res, err := s.RankNodes(ctx, nil, RankNodesArgs{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Nodes) != 2 {
		t.Fatalf("expected 2 ranked nodes, got %d", len(res.Nodes))
	}
	if res.Nodes[0].Key != "c" {
		t.Errorf("top node = %s, want c", res.Nodes[0].Key)
	}
	if res.Nodes[0].Rank < res.Nodes[1].Rank {
		t.Error("ranks not sorted descending")
	}
}

func TestGraphStatsTool(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	if _, _, err := s.AddEdge(ctx, nil, AddEdgeArgs{Source: "a", Target: "b", Weight: 1}); err != nil {
		t.Fatal(err)
	}

	_, stats, err := s.GraphStats(ctx, nil, GraphStatsArgs{})
	if err != nil {
		t.Fatal(err)
	}
	if stats.NodeCount != 2 || stats.EdgeCount != 1 {
		t.Errorf("stats = %+v, want 2 nodes and 1 edge", stats)
	}
}
