package graph

import (
	"errors"
	"sync"
	"testing"
)

func TestAddNodeIdempotent(t *testing.T) {
	eng := New[string](DefaultOptions())

	id1, err := eng.AddNode("alpha")
	if err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
	id2, err := eng.AddNode("alpha")
	if err != nil {
		t.Fatalf("AddNode (repeat) failed: %v", err)
	}
	if id1 != id2 {
		t.Errorf("same key got two ids: %d vs %d", id1, id2)
	}
	if got := eng.Metrics().NodeCount; got != 1 {
		t.Errorf("node count = %d, want 1", got)
	}
}

func TestAddNodeRejectsZeroKey(t *testing.T) {
	eng := New[string](DefaultOptions())

	if _, err := eng.AddNode(""); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("AddNode(\"\") err = %v, want ErrInvalidKey", err)
	}
	if err := eng.AddEdge("", "b", 1.0); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("AddEdge with empty source err = %v, want ErrInvalidKey", err)
	}
	if err := eng.AddEdge("a", "", 1.0); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("AddEdge with empty target err = %v, want ErrInvalidKey", err)
	}
	// Fail-fast: nothing may have been created along the way.
	if got := eng.Metrics().NodeCount; got != 0 {
		t.Errorf("node count after rejected ops = %d, want 0", got)
	}
}

func TestConcurrentAddNodeSameKey(t *testing.T) {
	eng := New[string](DefaultOptions())

	const workers = 32
	ids := make([]NodeID, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			id, err := eng.AddNode("contested")
			if err != nil {
				t.Errorf("AddNode failed: %v", err)
			}
			ids[slot] = id
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("concurrent first-insertions allocated two ids: %d and %d", ids[0], ids[i])
		}
	}
	if got := eng.Metrics().NodeCount; got != 1 {
		t.Errorf("node count = %d, want 1", got)
	}
}

func TestAddEdgeOverwrite(t *testing.T) {
	eng := New[string](DefaultOptions())

	if err := eng.AddEdge("a", "b", 1.0); err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}
	if err := eng.AddEdge("a", "b", 2.0); err != nil {
		t.Fatalf("AddEdge (overwrite) failed: %v", err)
	}

	if got := eng.Metrics().EdgeCount; got != 1 {
		t.Errorf("edge count = %d, want 1 (last-write-wins)", got)
	}
	edges := eng.OutEdges("a")
	if len(edges) != 1 {
		t.Fatalf("OutEdges = %v, want exactly one edge", edges)
	}
	if edges[0].Key != "b" || edges[0].Weight != 2.0 {
		t.Errorf("edge = %+v, want (b, 2.0)", edges[0])
	}
}

func TestNeighborsUnknownKey(t *testing.T) {
	eng := New[string](DefaultOptions())
	eng.AddEdge("a", "b", 1.0)

	if got := eng.Neighbors("ghost"); len(got) != 0 {
		t.Errorf("Neighbors(unknown) = %v, want empty", got)
	}
}

func TestBatchEquivalence(t *testing.T) {
	batch := New[string](DefaultOptions())
	seq := New[string](DefaultOptions())

	edges := []Edge[string]{
		{Source: "a", Target: "b", Weight: 1.0},
		{Source: "c", Target: "d", Weight: 2.0},
		{Source: "a", Target: "d", Weight: 3.0},
	}
	if err := batch.AddEdgesBatch(edges); err != nil {
		t.Fatalf("AddEdgesBatch failed: %v", err)
	}
	for _, ed := range edges {
		if err := seq.AddEdge(ed.Source, ed.Target, ed.Weight); err != nil {
			t.Fatalf("AddEdge failed: %v", err)
		}
	}

	for _, src := range []string{"a", "b", "c", "d"} {
		got := batch.OutEdges(src)
		want := seq.OutEdges(src)
		if len(got) != len(want) {
			t.Fatalf("OutEdges(%q): batch %v vs sequential %v", src, got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Errorf("OutEdges(%q)[%d]: batch %+v vs sequential %+v", src, i, got[i], want[i])
			}
		}
	}
	if b, s := batch.Metrics().EdgeCount, seq.Metrics().EdgeCount; b != s {
		t.Errorf("edge counts diverge: batch %d vs sequential %d", b, s)
	}
}

func TestBatchRejectsZeroKeyWithoutPartialMutation(t *testing.T) {
	eng := New[string](DefaultOptions())

	err := eng.AddEdgesBatch([]Edge[string]{
		{Source: "a", Target: "b", Weight: 1.0},
		{Source: "", Target: "c", Weight: 1.0},
	})
	if !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("err = %v, want ErrInvalidKey", err)
	}
	if got := eng.Metrics().NodeCount; got != 0 {
		t.Errorf("node count = %d, want 0 after rejected batch", got)
	}
	if got := eng.Metrics().EdgeCount; got != 0 {
		t.Errorf("edge count = %d, want 0 after rejected batch", got)
	}
}

func TestPartitionAssignmentIsStable(t *testing.T) {
	opts := DefaultOptions()
	opts.PartitionThreshold = 2
	eng := New[string](opts)

	id, _ := eng.AddNode("first")
	before := eng.parts.of(id)

	// Pile on nodes; the original assignment must not move.
	for _, k := range []string{"n1", "n2", "n3", "n4", "n5", "n6", "n7"} {
		eng.AddNode(k)
	}
	if after := eng.parts.of(id); after != before {
		t.Errorf("partition of node %d changed: %d -> %d", id, before, after)
	}

	// ids 0..7 with threshold 2 span partitions 0..3.
	if got := eng.Metrics().PartitionCount; got != 4 {
		t.Errorf("partition count = %d, want 4", got)
	}
}

func TestTotalOperationsCounter(t *testing.T) {
	eng := New[string](DefaultOptions())

	eng.AddNode("a")
	eng.AddEdge("a", "b", 1.0)
	eng.Neighbors("a")
	eng.AddEdgesBatch([]Edge[string]{{Source: "b", Target: "c", Weight: 1.0}})

	if got := eng.Metrics().TotalOperations; got != 4 {
		t.Errorf("total operations = %d, want 4", got)
	}
}
