package mcp

// --- Tool Arguments ---

type AddNodeArgs struct {
	Key string `json:"key" jsonschema:"Opaque node key to register (e.g. 'user:42'),required"`
}

type AddNodeResult struct {
	Key    string `json:"key"`
	NodeID uint32 `json:"node_id"`
}

type AddEdgeArgs struct {
	Source string  `json:"source" jsonschema:"Source node key,required"`
	Target string  `json:"target" jsonschema:"Target node key,required"`
	Weight float32 `json:"weight,omitempty" jsonschema:"Edge weight. Defaults to 1.0; re-adding an edge overwrites its weight"`
}

type AddEdgeResult struct {
	Status string `json:"status"`
}

type GetNeighborsArgs struct {
	Key string `json:"key" jsonschema:"Node key whose outgoing edges to list,required"`
}

type NeighborEntry struct {
	Key    string  `json:"key"`
	Weight float32 `json:"weight"`
}

type GetNeighborsResult struct {
	Neighbors []NeighborEntry `json:"neighbors"`
}

type ReachabilityArgs struct {
	Start    string `json:"start" jsonschema:"Node key to start the traversal from,required"`
	MaxDepth int    `json:"max_depth,omitempty" jsonschema:"Maximum number of hops to explore (default 3)"`
}

type ReachabilityResult struct {
	Depths map[string]int `json:"depths"` // key -> hop distance from start
}

type RankNodesArgs struct {
	Limit         int     `json:"limit,omitempty" jsonschema:"Return only the top N nodes by rank (default 10)"`
	Damping       float64 `json:"damping,omitempty" jsonschema:"PageRank damping factor in (0,1). Default 0.85"`
	MaxIterations int     `json:"max_iterations,omitempty" jsonschema:"Iteration cap (default 100)"`
}

type RankedNode struct {
	Key  string  `json:"key"`
	Rank float64 `json:"rank"`
}

type RankNodesResult struct {
	Nodes []RankedNode `json:"nodes"`
}

type GraphStatsArgs struct{}

type GraphStatsResult struct {
	NodeCount       int    `json:"node_count"`
	EdgeCount       int64  `json:"edge_count"`
	PartitionCount  int    `json:"partition_count"`
	TotalOperations int64  `json:"total_operations"`
	SnapshotVersion uint64 `json:"snapshot_version"`
}
