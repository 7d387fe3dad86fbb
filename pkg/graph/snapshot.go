package graph

import (
	"sync"

	"github.com/x448/float16"
)

// snapshot is an immutable, offset-indexed adjacency view of the graph at
// one point in time. The out-neighbors of node i are
// neighbors[rowOffsets[i]:rowOffsets[i+1]], with the weight column
// parallel to neighbors in one of two precisions. Once published a
// snapshot is never mutated; a rebuild replaces it wholesale.
type snapshot struct {
	rowOffsets []uint32 // len = nodeCount+1, non-decreasing
	neighbors  []uint32
	weightsF32 []float32 // exactly one of weightsF32/weightsF16 is set
	weightsF16 []uint16

	// Reverse adjacency (in-neighbors), derived at most once per
	// snapshot and shared by every PageRank iteration against it.
	revOnce      sync.Once
	revOffsets   []uint32
	revNeighbors []uint32
}

func emptySnapshot() *snapshot {
	return &snapshot{rowOffsets: []uint32{0}}
}

func (s *snapshot) nodeCount() int { return len(s.rowOffsets) - 1 }

func (s *snapshot) edgeCount() int { return len(s.neighbors) }

// rowBounds returns the [lo, hi) index range of node id's out-edges.
// Ids allocated after the snapshot was built have an empty range.
func (s *snapshot) rowBounds(id uint32) (int, int) {
	if int(id)+1 >= len(s.rowOffsets) {
		return 0, 0
	}
	return int(s.rowOffsets[id]), int(s.rowOffsets[id+1])
}

// row returns node id's out-neighbor ids. The returned slice aliases the
// immutable snapshot arrays and must not be modified.
func (s *snapshot) row(id uint32) []uint32 {
	lo, hi := s.rowBounds(id)
	return s.neighbors[lo:hi]
}

// weightAt decodes the weight column at flat index i.
func (s *snapshot) weightAt(i int) float32 {
	if s.weightsF16 != nil {
		return float16.Frombits(s.weightsF16[i]).Float32()
	}
	return s.weightsF32[i]
}

// outDegree of node id at snapshot time.
func (s *snapshot) outDegree(id uint32) int {
	lo, hi := s.rowBounds(id)
	return hi - lo
}

// reverse returns the in-neighbor CSR (offsets, sources), building it on
// first use. Cost is one O(V+E) pass, amortized over all iterations that
// read this snapshot.
func (s *snapshot) reverse() ([]uint32, []uint32) {
	s.revOnce.Do(func() {
		n := s.nodeCount()
		offsets := make([]uint32, n+1)
		for _, dst := range s.neighbors {
			offsets[dst+1]++
		}
		for i := 1; i <= n; i++ {
			offsets[i] += offsets[i-1]
		}
		sources := make([]uint32, len(s.neighbors))
		cursor := make([]uint32, n)
		copy(cursor, offsets[:n])
		for src := 0; src < n; src++ {
			lo, hi := s.rowBounds(uint32(src))
			for i := lo; i < hi; i++ {
				dst := s.neighbors[i]
				sources[cursor[dst]] = uint32(src)
				cursor[dst]++
			}
		}
		s.revOffsets = offsets
		s.revNeighbors = sources
	})
	return s.revOffsets, s.revNeighbors
}

// loadSnapshot is the reader side of the synchronization protocol: capture
// the version stamp, load the published snapshot, re-validate the stamp.
// On mismatch a rebuild raced us, so retry under the shared lock, which
// waits out the rebuilder and guarantees a consistent view.
func (e *Engine[K]) loadSnapshot() *snapshot {
	stamp := e.snapStamp.Load()
	s := e.snap.Load()
	if e.snapStamp.Load() == stamp {
		return s
	}

	e.rebuildMu.RLock()
	s = e.snap.Load()
	e.rebuildMu.RUnlock()
	return s
}

// Rebuild re-derives the adjacency snapshot from the full mutation store
// and publishes it atomically. Rebuilds are exclusive with each other and
// with locked-path readers, never incremental: every call pays one O(V+E)
// pass regardless of how little changed. AddEdge and AddEdgesBatch call
// this automatically; callers that need a concurrent insert reflected
// before reading can serialize by calling Rebuild themselves.
func (e *Engine[K]) Rebuild() {
	e.rebuildMu.Lock()
	defer e.rebuildMu.Unlock()

	n := e.ids.count()
	recs := e.store.collect(NodeID(n))

	offsets := make([]uint32, n+1)
	for _, rec := range recs {
		offsets[rec.src+1]++
	}
	for i := 1; i <= n; i++ {
		offsets[i] += offsets[i-1]
	}

	next := &snapshot{
		rowOffsets: offsets,
		neighbors:  make([]uint32, len(recs)),
	}
	if e.opts.WeightPrecision == Float16 {
		next.weightsF16 = make([]uint16, len(recs))
	} else {
		next.weightsF32 = make([]float32, len(recs))
	}

	cursor := make([]uint32, n)
	copy(cursor, offsets[:n])
	for _, rec := range recs {
		p := cursor[rec.src]
		cursor[rec.src]++
		next.neighbors[p] = uint32(rec.dst)
		if next.weightsF16 != nil {
			next.weightsF16[p] = float16.Fromfloat32(rec.weight).Bits()
		} else {
			next.weightsF32[p] = rec.weight
		}
	}

	// Single atomic publication: readers observe either the old arrays
	// or the new ones, never a mix.
	e.snap.Store(next)
	e.snapStamp.Add(1)
}
