package graph

import (
	"fmt"
	"sort"
	"sync"
	"testing"
)

func TestSnapshotCSRInvariants(t *testing.T) {
	eng := New[string](DefaultOptions())
	eng.AddEdgesBatch([]Edge[string]{
		{Source: "a", Target: "c", Weight: 1},
		{Source: "a", Target: "b", Weight: 2},
		{Source: "b", Target: "c", Weight: 3},
		{Source: "c", Target: "a", Weight: 4},
	})

	s := eng.loadSnapshot()
	if s.nodeCount() != 3 {
		t.Fatalf("snapshot node count = %d, want 3", s.nodeCount())
	}
	if s.edgeCount() != 4 {
		t.Fatalf("snapshot edge count = %d, want 4", s.edgeCount())
	}

	// Offsets are non-decreasing and bounded by the edge array.
	for i := 1; i < len(s.rowOffsets); i++ {
		if s.rowOffsets[i] < s.rowOffsets[i-1] {
			t.Fatalf("rowOffsets not monotone at %d: %v", i, s.rowOffsets)
		}
	}
	if int(s.rowOffsets[len(s.rowOffsets)-1]) != len(s.neighbors) {
		t.Fatalf("final offset %d != neighbor count %d", s.rowOffsets[len(s.rowOffsets)-1], len(s.neighbors))
	}

	// Rows are sorted by target id, an artifact of the ordered shard scan.
	for id := 0; id < s.nodeCount(); id++ {
		row := s.row(uint32(id))
		if !sort.SliceIsSorted(row, func(i, j int) bool { return row[i] < row[j] }) {
			t.Errorf("row %d not sorted: %v", id, row)
		}
	}
}

func TestSnapshotReverseAdjacency(t *testing.T) {
	eng := New[string](DefaultOptions())
	eng.AddEdgesBatch([]Edge[string]{
		{Source: "a", Target: "c", Weight: 1},
		{Source: "b", Target: "c", Weight: 1},
		{Source: "c", Target: "a", Weight: 1},
	})

	s := eng.loadSnapshot()
	offsets, sources := s.reverse()

	inNeighbors := func(id uint32) []uint32 {
		return sources[offsets[id]:offsets[id+1]]
	}

	idOf := func(key string) uint32 {
		id, ok := eng.ids.lookup(key)
		if !ok {
			t.Fatalf("key %q not registered", key)
		}
		return uint32(id)
	}

	c := idOf("c")
	got := inNeighbors(c)
	if len(got) != 2 {
		t.Fatalf("in-neighbors of c = %v, want 2 sources", got)
	}
	a := idOf("a")
	if in := inNeighbors(a); len(in) != 1 || in[0] != c {
		t.Errorf("in-neighbors of a = %v, want [c]", in)
	}
}

func TestFloat16WeightPrecision(t *testing.T) {
	opts := DefaultOptions()
	opts.WeightPrecision = Float16
	eng := New[string](opts)

	// 1.5 and 0.25 are exactly representable in half precision.
	eng.AddEdge("a", "b", 1.5)
	eng.AddEdge("a", "c", 0.25)

	weights := map[string]float32{}
	for _, n := range eng.OutEdges("a") {
		weights[n.Key] = n.Weight
	}
	if weights["b"] != 1.5 || weights["c"] != 0.25 {
		t.Errorf("half-precision weights = %v, want b:1.5 c:0.25", weights)
	}
}

func TestNodeAddedAfterRebuildHasEmptyRow(t *testing.T) {
	eng := New[string](DefaultOptions())
	eng.AddEdge("a", "b", 1.0)

	// Registered but never part of a rebuild.
	eng.AddNode("late")
	if got := eng.Neighbors("late"); len(got) != 0 {
		t.Errorf("Neighbors(late) = %v, want empty", got)
	}
}

// TestConcurrentReadersDuringRebuilds hammers the optimistic read path
// while rebuilds are in flight. Every successful read must reflect a
// single self-consistent snapshot: rows sorted, no duplicate targets, all
// keys resolvable. Run with -race.
func TestConcurrentReadersDuringRebuilds(t *testing.T) {
	eng := New[string](DefaultOptions())
	eng.AddEdge("hub", "n0", 1.0)

	const writes = 200
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i < writes; i++ {
			eng.AddEdge("hub", fmt.Sprintf("n%d", i), float32(i))
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < writes; i++ {
				got := eng.Neighbors("hub")
				seen := make(map[string]struct{}, len(got))
				for _, k := range got {
					if _, dup := seen[k]; dup {
						t.Errorf("duplicate neighbor %q in one read", k)
					}
					seen[k] = struct{}{}
				}
			}
		}()
	}
	wg.Wait()

	// After the writer finishes, the final snapshot holds everything.
	if got := len(eng.Neighbors("hub")); got != writes {
		t.Errorf("final neighbor count = %d, want %d", got, writes)
	}
}

func TestSnapshotVersionAdvancesPerRebuild(t *testing.T) {
	eng := New[string](DefaultOptions())

	v0 := eng.Metrics().SnapshotVersion
	eng.AddEdge("a", "b", 1.0)
	v1 := eng.Metrics().SnapshotVersion
	if v1 != v0+1 {
		t.Errorf("snapshot version after one edge = %d, want %d", v1, v0+1)
	}

	eng.AddEdgesBatch([]Edge[string]{
		{Source: "a", Target: "c", Weight: 1},
		{Source: "a", Target: "d", Weight: 1},
	})
	if v2 := eng.Metrics().SnapshotVersion; v2 != v1+1 {
		t.Errorf("batch triggered %d rebuilds, want exactly 1", v2-v1)
	}
}
