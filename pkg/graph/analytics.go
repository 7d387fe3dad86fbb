package graph

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// Future is the handle returned by the asynchronous analytics entry
// points. The computation runs to completion even if the caller discards
// the handle; cancel the context passed to the Async call to stop it
// early.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) complete(val T, err error) {
	f.val = val
	f.err = err
	close(f.done)
}

// Wait blocks until the computation finishes or ctx is done. Abandoning
// Wait does not stop the underlying computation.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// BFS runs a layered breadth-first traversal from start over a single
// snapshot captured at invocation time, returning the depth of every node
// reachable within maxDepth hops (start itself at depth 0). Each level's
// frontier is expanded in parallel, partitioned by node id; a node's depth
// is fixed by whichever worker discovers it first, which is correct
// because BFS visits in non-decreasing depth order. An unknown start key
// yields an empty result.
//
// ctx is checked between levels; cancellation returns ctx.Err().
func (e *Engine[K]) BFS(ctx context.Context, start K, maxDepth int) (map[K]int, error) {
	e.totalOps.Add(1)

	startID, ok := e.ids.lookup(start)
	if !ok {
		return map[K]int{}, nil
	}
	s := e.loadSnapshot()
	n := s.nodeCount()
	if int(startID) >= n {
		// Registered after the last rebuild: reachable set is just
		// the start node.
		return map[K]int{start: 0}, nil
	}

	dist := make([]int32, n)
	for i := range dist {
		dist[i] = -1
	}
	dist[startID] = 0

	frontier := []NodeID{startID}
	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var (
			mu   sync.Mutex
			next []NodeID
		)
		g := new(errgroup.Group)
		g.SetLimit(e.workers())
		d := int32(depth + 1)
		for _, chunk := range e.parts.group(frontier) {
			g.Go(func() error {
				local := make([]NodeID, 0, len(chunk))
				for _, u := range chunk {
					for _, v := range s.row(uint32(u)) {
						if atomic.CompareAndSwapInt32(&dist[v], -1, d) {
							local = append(local, NodeID(v))
						}
					}
				}
				mu.Lock()
				next = append(next, local...)
				mu.Unlock()
				return nil
			})
		}
		g.Wait() // workers cannot fail
		frontier = next
	}

	out := make(map[K]int)
	for id, d := range dist {
		if d < 0 {
			continue
		}
		if k, ok := e.ids.keyOf(NodeID(id)); ok {
			out[k] = int(d)
		}
	}
	return out, nil
}

// BFSAsync runs BFS in a goroutine and returns a Future for the result.
func (e *Engine[K]) BFSAsync(ctx context.Context, start K, maxDepth int) *Future[map[K]int] {
	f := newFuture[map[K]int]()
	go func() {
		f.complete(e.BFS(ctx, start, maxDepth))
	}()
	return f
}

// PageRankOptions parameterizes PageRank and, together, form its
// memoization key.
type PageRankOptions struct {
	// Damping is the probability of following a link rather than
	// jumping to a random node. Default 0.85.
	Damping float64
	// MaxIterations bounds the power iteration. Default 100.
	MaxIterations int
	// Tolerance stops the iteration early once the L1 distance between
	// successive rank vectors drops below it. Default 1e-6.
	Tolerance float64
}

// DefaultPageRankOptions returns the standard parameters.
func DefaultPageRankOptions() PageRankOptions {
	return PageRankOptions{Damping: 0.85, MaxIterations: 100, Tolerance: 1e-6}
}

func (o *PageRankOptions) normalize() {
	if o.Damping <= 0 || o.Damping >= 1 {
		o.Damping = 0.85
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = 100
	}
	if o.Tolerance <= 0 {
		o.Tolerance = 1e-6
	}
}

// PageRank computes power-iteration centrality scores over a single
// snapshot captured at invocation time. Every node starts at rank 1/N;
// each iteration recomputes
//
//	rank'(v) = (1-d)/N + d * Σ rank(u)/outDegree(u)
//
// over v's in-neighbors u, read from the snapshot's reverse adjacency
// index (built once and reused across iterations). The per-node update
// step is fanned out across partitions.
//
// Results are memoized under (damping, maxIterations, tolerance); a cached
// result is returned verbatim even if the graph has mutated since, and
// concurrent identical calls share one computation. ctx is checked between
// iterations.
func (e *Engine[K]) PageRank(ctx context.Context, opts PageRankOptions) (map[K]float64, error) {
	e.totalOps.Add(1)
	opts.normalize()

	key := fmt.Sprintf("pagerank:%g:%d:%g", opts.Damping, opts.MaxIterations, opts.Tolerance)
	if v, ok := e.cache.get(key); ok {
		return v.(map[K]float64), nil
	}

	v, err, _ := e.sf.Do(key, func() (any, error) {
		ranks, err := e.pageRank(ctx, opts)
		if err != nil {
			return nil, err
		}
		e.cache.put(key, ranks)
		return ranks, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[K]float64), nil
}

// PageRankAsync runs PageRank in a goroutine and returns a Future.
func (e *Engine[K]) PageRankAsync(ctx context.Context, opts PageRankOptions) *Future[map[K]float64] {
	f := newFuture[map[K]float64]()
	go func() {
		f.complete(e.PageRank(ctx, opts))
	}()
	return f
}

func (e *Engine[K]) pageRank(ctx context.Context, opts PageRankOptions) (map[K]float64, error) {
	s := e.loadSnapshot()
	n := s.nodeCount()
	if n == 0 {
		return map[K]float64{}, nil
	}

	revOffsets, revSources := s.reverse()
	groups := e.parts.groups(NodeID(n))

	ranks := make([]float64, n)
	next := make([]float64, n)
	for i := range ranks {
		ranks[i] = 1.0 / float64(n)
	}
	base := (1 - opts.Damping) / float64(n)

	for iter := 0; iter < opts.MaxIterations; iter++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		g := new(errgroup.Group)
		g.SetLimit(e.workers())
		for _, chunk := range groups {
			g.Go(func() error {
				for _, id := range chunk {
					var sum float64
					lo, hi := revOffsets[id], revOffsets[id+1]
					for i := lo; i < hi; i++ {
						src := revSources[i]
						sum += ranks[src] / float64(s.outDegree(src))
					}
					next[id] = base + opts.Damping*sum
				}
				return nil
			})
		}
		g.Wait() // workers write disjoint partitions and cannot fail

		diff := floats.Distance(next, ranks, 1)
		ranks, next = next, ranks
		if diff < opts.Tolerance {
			break
		}
	}

	out := make(map[K]float64, n)
	for id := 0; id < n; id++ {
		if k, ok := e.ids.keyOf(NodeID(id)); ok {
			out[k] = ranks[id]
		}
	}
	return out, nil
}
