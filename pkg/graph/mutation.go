package graph

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/tidwall/btree"
)

// edgeRecord is the latest state of one directed edge. The (src, dst) pair
// is the key; re-inserting the pair overwrites weight and timestamp
// (last-write-wins), so the graph stays simple-directed.
type edgeRecord struct {
	src, dst  NodeID
	weight    float32
	updatedAt int64
}

// edgeRecordLess orders records by (src, dst) so a shard scan emits each
// source's out-edges contiguously and sorted by target id.
func edgeRecordLess(a, b edgeRecord) bool {
	if a.src != b.src {
		return a.src < b.src
	}
	return a.dst < b.dst
}

// mutationShard holds the edge records of a fixed subset of source nodes.
type mutationShard struct {
	mu    sync.Mutex
	edges *btree.BTreeG[edgeRecord]
}

// mutationStore is the concurrent system of record for graph content.
// It is sharded by source id, so all out-edges of one source live in a
// single shard and independent edge keys contend only on the short shard
// mutex, never on a global lock.
type mutationStore struct {
	shards []*mutationShard
	mask   uint32
	n      atomic.Int64
}

func newMutationStore(shards int) *mutationStore {
	size := 1
	for size < shards {
		size <<= 1
	}
	m := &mutationStore{
		shards: make([]*mutationShard, size),
		mask:   uint32(size - 1),
	}
	for i := range m.shards {
		m.shards[i] = &mutationShard{edges: btree.NewBTreeG(edgeRecordLess)}
	}
	return m
}

func (m *mutationStore) shardFor(src NodeID) *mutationShard {
	return m.shards[uint32(src)&m.mask]
}

// set inserts or overwrites the record for (src, dst).
func (m *mutationStore) set(src, dst NodeID, weight float32) {
	rec := edgeRecord{src: src, dst: dst, weight: weight, updatedAt: time.Now().UnixNano()}
	sh := m.shardFor(src)
	sh.mu.Lock()
	_, replaced := sh.edges.Set(rec)
	sh.mu.Unlock()
	if !replaced {
		m.n.Add(1)
	}
}

// get returns the current record for (src, dst).
func (m *mutationStore) get(src, dst NodeID) (edgeRecord, bool) {
	sh := m.shardFor(src)
	sh.mu.Lock()
	rec, ok := sh.edges.Get(edgeRecord{src: src, dst: dst})
	sh.mu.Unlock()
	return rec, ok
}

// len is the number of distinct edge keys currently stored.
func (m *mutationStore) len() int64 {
	return m.n.Load()
}

// collect copies every record whose endpoints are both below limit out of
// the store, one shard at a time. Each shard is captured atomically under
// its mutex; records written to an already-scanned shard during the scan
// are legitimately missed (concurrent writes during a rebuild carry no
// inclusion guarantee).
func (m *mutationStore) collect(limit NodeID) []edgeRecord {
	recs := make([]edgeRecord, 0, m.n.Load())
	for _, sh := range m.shards {
		sh.mu.Lock()
		sh.edges.Scan(func(rec edgeRecord) bool {
			if rec.src < limit && rec.dst < limit {
				recs = append(recs, rec)
			}
			return true
		})
		sh.mu.Unlock()
	}
	return recs
}
