package server

// NodeAddRequest defines the body for node registration.
type NodeAddRequest struct {
	Key string `json:"key"`
}

// EdgeAddRequest defines the body for adding or overwriting a single edge.
type EdgeAddRequest struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float32 `json:"weight"`
}

// EdgeBatchRequest defines the body for batch edge ingestion. The whole
// batch is applied under a single snapshot rebuild.
type EdgeBatchRequest struct {
	Edges []EdgeAddRequest `json:"edges"`
}

// NeighborDTO is one outgoing edge in a neighbors response.
type NeighborDTO struct {
	Key    string  `json:"key"`
	Weight float32 `json:"weight"`
}

// NeighborsResponse lists the outgoing edges of a node in ascending
// internal-id order.
type NeighborsResponse struct {
	Key       string        `json:"key"`
	Neighbors []NeighborDTO `json:"neighbors"`
}

// BFSRequest defines the body for a breadth-first traversal task.
type BFSRequest struct {
	Start    string `json:"start"`
	MaxDepth int    `json:"max_depth"`
}

// PageRankRequest defines the body for a PageRank task. Zero values fall
// back to the engine defaults (0.85 damping, 100 iterations, 1e-6 tolerance).
type PageRankRequest struct {
	Damping       float64 `json:"damping,omitempty"`
	MaxIterations int     `json:"max_iterations,omitempty"`
	Tolerance     float64 `json:"tolerance,omitempty"`
}

// TaskAcceptedResponse is returned with 202 Accepted when an analytics task
// has been queued.
type TaskAcceptedResponse struct {
	TaskID string `json:"task_id"`
}

// StatsResponse mirrors the engine metrics snapshot.
type StatsResponse struct {
	NodeCount       int    `json:"node_count"`
	EdgeCount       int64  `json:"edge_count"`
	PartitionCount  int    `json:"partition_count"`
	TotalOperations int64  `json:"total_operations"`
	CacheHits       int64  `json:"cache_hits"`
	CacheMisses     int64  `json:"cache_misses"`
	CacheSize       int    `json:"cache_size"`
	SnapshotVersion uint64 `json:"snapshot_version"`
}
