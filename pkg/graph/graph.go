// Package graph provides the embedded, concurrent directed-graph engine of
// Grafite.
//
// The engine keeps its system of record in a sharded mutation store (latest
// weight per ordered node pair) and serves reads from a compact, immutable
// CSR adjacency snapshot that is re-derived in full after every mutation.
// Readers use a versioned optimistic protocol against the published snapshot
// and only fall back to a shared lock when a rebuild races them.
//
// Basic usage:
//
//	eng := graph.New[string](graph.DefaultOptions())
//	eng.AddEdge("a", "b", 1.0)
//	for _, n := range eng.Neighbors("a") {
//	    fmt.Println(n)
//	}
package graph

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// NodeID is the dense internal identifier assigned to a key on first
// insertion. Ids increase monotonically and are never reused for the
// lifetime of an Engine.
type NodeID uint32

// Edge is a single directed edge submitted to AddEdgesBatch.
type Edge[K comparable] struct {
	Source K
	Target K
	Weight float32
}

// Neighbor pairs a resolved neighbor key with the edge weight recorded at
// snapshot time.
type Neighbor[K comparable] struct {
	Key    K
	Weight float32
}

// ErrInvalidKey is returned when a zero-valued key is passed to a mutating
// operation. No partial mutation occurs.
var ErrInvalidKey = errors.New("graph: invalid zero-valued key")

// Precision selects the storage format of the snapshot weight column.
type Precision string

const (
	// Float32 stores edge weights verbatim.
	Float32 Precision = "float32"
	// Float16 stores edge weights half-precision, halving the weight
	// column at the cost of ~3 decimal digits.
	Float16 Precision = "float16"
)

// Options configures an Engine instance.
type Options struct {
	// PartitionThreshold is the number of consecutive node ids per
	// partition. Partitions are the unit of parallel work for batch
	// application and analytics. Default 64.
	PartitionThreshold int

	// MutationShards is the number of mutation-store shards; rounded up
	// to a power of two. Default 16.
	MutationShards int

	// WeightPrecision selects the snapshot weight storage format.
	// Default Float32.
	WeightPrecision Precision

	// CacheTTL is the lifetime of memoized analytics results. Expired
	// entries are evicted lazily on probe. 0 disables expiration
	// entirely (entries live until the engine is discarded).
	CacheTTL time.Duration

	// Workers bounds the parallelism of batch application and analytics.
	// 0 means GOMAXPROCS.
	Workers int
}

// DefaultOptions returns a configuration suitable for most workloads.
func DefaultOptions() Options {
	return Options{
		PartitionThreshold: 64,
		MutationShards:     16,
		WeightPrecision:    Float32,
		CacheTTL:           5 * time.Minute,
		Workers:            0,
	}
}

// Engine is a process-scoped graph store. All state, including the
// operation counters and the analytics result cache, is owned by the
// instance; there is no ambient global state.
//
// All methods are safe for concurrent use.
type Engine[K comparable] struct {
	opts Options

	ids   *registry[K]
	parts *partitionIndex
	store *mutationStore

	// Published adjacency snapshot plus its version stamp. Readers
	// validate the stamp around the pointer load; rebuilders hold
	// rebuildMu exclusively, readers that lost the optimistic race
	// hold it shared.
	snap      atomic.Pointer[snapshot]
	snapStamp atomic.Uint64
	rebuildMu sync.RWMutex

	cache *resultCache
	sf    singleflight.Group

	totalOps atomic.Int64
}

// New creates an empty Engine with the given options. Zero or negative
// option fields fall back to their defaults.
func New[K comparable](opts Options) *Engine[K] {
	if opts.PartitionThreshold <= 0 {
		opts.PartitionThreshold = 64
	}
	if opts.MutationShards <= 0 {
		opts.MutationShards = 16
	}
	if opts.WeightPrecision == "" {
		opts.WeightPrecision = Float32
	}

	e := &Engine[K]{
		opts:  opts,
		ids:   newRegistry[K](),
		parts: newPartitionIndex(uint32(opts.PartitionThreshold)),
		store: newMutationStore(opts.MutationShards),
		cache: newResultCache(opts.CacheTTL),
	}
	e.snap.Store(emptySnapshot())
	return e
}

// AddNode registers key and returns its id. The call is idempotent: a key
// that is already registered keeps its original id. Safe under concurrent
// first-insertions of the same key (insert-if-absent, never two ids).
func (e *Engine[K]) AddNode(key K) (NodeID, error) {
	var zero K
	if key == zero {
		return 0, ErrInvalidKey
	}
	e.totalOps.Add(1)
	return e.ensureNode(key), nil
}

// ensureNode resolves or allocates the id for key and records the
// partition assignment exactly once, at allocation time.
func (e *Engine[K]) ensureNode(key K) NodeID {
	id, created := e.ids.ensure(key)
	if created {
		e.parts.assign(id)
	}
	return id
}

// AddEdge inserts or overwrites the directed edge (source, target) with
// the given weight, creating both endpoints as needed, then rebuilds the
// adjacency snapshot.
func (e *Engine[K]) AddEdge(source, target K, weight float32) error {
	var zero K
	if source == zero || target == zero {
		return ErrInvalidKey
	}
	e.totalOps.Add(1)

	src := e.ensureNode(source)
	dst := e.ensureNode(target)
	e.store.set(src, dst, weight)

	e.Rebuild()
	return nil
}

// AddEdgesBatch applies a bulk edge load. The input is grouped by the
// source node's partition and the groups are written in parallel, which is
// safe because every edge key is disjoint and the store never takes a
// cross-key lock. Exactly one snapshot rebuild happens at the end, so the
// rebuild cost of a bulk load is a single O(V+E) pass.
func (e *Engine[K]) AddEdgesBatch(edges []Edge[K]) error {
	e.totalOps.Add(1)

	// Validate before any mutation so a bad key cannot leave the batch
	// half applied.
	var zero K
	for _, ed := range edges {
		if ed.Source == zero || ed.Target == zero {
			return ErrInvalidKey
		}
	}
	if len(edges) == 0 {
		return nil
	}

	type resolved struct {
		src, dst NodeID
		weight   float32
	}
	groups := make(map[uint32][]resolved)
	for _, ed := range edges {
		src := e.ensureNode(ed.Source)
		dst := e.ensureNode(ed.Target)
		pid := e.parts.of(src)
		groups[pid] = append(groups[pid], resolved{src: src, dst: dst, weight: ed.Weight})
	}

	var g errgroup.Group
	g.SetLimit(e.workers())
	for _, batch := range groups {
		g.Go(func() error {
			for _, r := range batch {
				e.store.set(r.src, r.dst, r.weight)
			}
			return nil
		})
	}
	g.Wait() // workers cannot fail

	e.Rebuild()
	return nil
}

// Neighbors returns the out-neighbor keys of key as recorded by the
// current snapshot. An unknown key yields an empty result, not an error.
func (e *Engine[K]) Neighbors(key K) []K {
	e.totalOps.Add(1)

	id, ok := e.ids.lookup(key)
	if !ok {
		return nil
	}
	s := e.loadSnapshot()
	row := s.row(uint32(id))
	out := make([]K, 0, len(row))
	for _, nid := range row {
		if k, ok := e.ids.keyOf(NodeID(nid)); ok {
			out = append(out, k)
		}
	}
	return out
}

// OutEdges is Neighbors with the snapshot-time edge weights attached.
func (e *Engine[K]) OutEdges(key K) []Neighbor[K] {
	e.totalOps.Add(1)

	id, ok := e.ids.lookup(key)
	if !ok {
		return nil
	}
	s := e.loadSnapshot()
	lo, hi := s.rowBounds(uint32(id))
	out := make([]Neighbor[K], 0, hi-lo)
	for i := lo; i < hi; i++ {
		k, ok := e.ids.keyOf(NodeID(s.neighbors[i]))
		if !ok {
			continue
		}
		out = append(out, Neighbor[K]{Key: k, Weight: s.weightAt(i)})
	}
	return out
}

// Metrics is a point-in-time view of the engine counters. Monotonic
// counters reset only when a new Engine is constructed.
type Metrics struct {
	NodeCount       int    `json:"node_count"`
	EdgeCount       int64  `json:"edge_count"`
	PartitionCount  int    `json:"partition_count"`
	TotalOperations int64  `json:"total_operations"`
	CacheHits       int64  `json:"cache_hits"`
	CacheMisses     int64  `json:"cache_misses"`
	CacheSize       int    `json:"cache_size"`
	SnapshotVersion uint64 `json:"snapshot_version"`
}

// Metrics returns a snapshot of the engine counters. It never blocks and
// never fails.
func (e *Engine[K]) Metrics() Metrics {
	return Metrics{
		NodeCount:       e.ids.count(),
		EdgeCount:       e.store.len(),
		PartitionCount:  e.parts.count(),
		TotalOperations: e.totalOps.Load(),
		CacheHits:       e.cache.hits.Load(),
		CacheMisses:     e.cache.misses.Load(),
		CacheSize:       e.cache.size(),
		SnapshotVersion: e.snapStamp.Load(),
	}
}

func (e *Engine[K]) workers() int {
	if e.opts.Workers > 0 {
		return e.opts.Workers
	}
	return runtime.GOMAXPROCS(0)
}
