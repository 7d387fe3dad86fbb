package graph

import "sync"

// partitionIndex records the deterministic node-id -> partition assignment:
// partition = id / threshold, computed once at node creation and immutable
// afterwards even as later ids skew partition sizes. Its only consumer is
// the parallel fan-out of batch application and analytics; it has no role
// in edge storage or traversal correctness.
type partitionIndex struct {
	threshold uint32

	mu      sync.RWMutex
	members [][]NodeID
}

func newPartitionIndex(threshold uint32) *partitionIndex {
	if threshold == 0 {
		threshold = 1
	}
	return &partitionIndex{threshold: threshold}
}

// of computes the partition id of a node. Pure and stable for the lifetime
// of the node.
func (p *partitionIndex) of(id NodeID) uint32 {
	return uint32(id) / p.threshold
}

// assign records id in its partition's member list. Called exactly once
// per node, at id allocation.
func (p *partitionIndex) assign(id NodeID) {
	pid := p.of(id)
	p.mu.Lock()
	for uint32(len(p.members)) <= pid {
		p.members = append(p.members, nil)
	}
	p.members[pid] = append(p.members[pid], id)
	p.mu.Unlock()
}

func (p *partitionIndex) count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.members)
}

// group splits an arbitrary id set into per-partition slices, the disjoint
// units handed to parallel workers.
func (p *partitionIndex) group(ids []NodeID) [][]NodeID {
	byPID := make(map[uint32][]NodeID)
	for _, id := range ids {
		pid := p.of(id)
		byPID[pid] = append(byPID[pid], id)
	}
	out := make([][]NodeID, 0, len(byPID))
	for _, g := range byPID {
		out = append(out, g)
	}
	return out
}

// groups returns a copy of every partition's member list restricted to ids
// below limit, so analytics can fan out over exactly the nodes a snapshot
// covers.
func (p *partitionIndex) groups(limit NodeID) [][]NodeID {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([][]NodeID, 0, len(p.members))
	for _, m := range p.members {
		g := make([]NodeID, 0, len(m))
		for _, id := range m {
			if id < limit {
				g = append(g, id)
			}
		}
		if len(g) > 0 {
			out = append(out, g)
		}
	}
	return out
}
