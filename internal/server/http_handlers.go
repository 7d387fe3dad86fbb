// HTTP API handlers.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sferro/grafite/pkg/graph"
	"github.com/sferro/grafite/pkg/metrics"
)

// registerHTTPHandlers sets up the routes for the REST API.
func (s *Server) registerHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/", s.router)
}

// router is our main manual router. It parses the URL and delegates to the right handler.
func (s *Server) router(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	// --- Debug endpoints (pprof) ---
	if strings.HasPrefix(path, "/debug/pprof") {
		// Delegate to the pprof handlers based on the suffix
		switch {
		case path == "/debug/pprof/":
			pprof.Index(w, r)
		case path == "/debug/pprof/cmdline":
			pprof.Cmdline(w, r)
		case path == "/debug/pprof/profile":
			pprof.Profile(w, r)
		case path == "/debug/pprof/symbol":
			pprof.Symbol(w, r)
		case path == "/debug/pprof/trace":
			pprof.Trace(w, r)
		default:
			s.writeHTTPError(w, http.StatusNotFound, "pprof endpoint not found")
		}
		return
	}

	// --- Observability ---
	if path == "/metrics" {
		promhttp.Handler().ServeHTTP(w, r)
		return
	}

	// --- Task endpoints ---
	if strings.HasPrefix(path, "/tasks/") {
		s.handleGetTask(w, r, strings.TrimPrefix(path, "/tasks/"))
		return
	}

	// --- Graph endpoints ---
	switch path {
	case "/graph/nodes":
		s.handleNodeAdd(w, r)
		return
	case "/graph/edges":
		s.handleEdgeAdd(w, r)
		return
	case "/graph/edges/batch":
		s.handleEdgeBatch(w, r)
		return
	case "/graph/analytics/bfs":
		s.handleBFS(w, r)
		return
	case "/graph/analytics/pagerank":
		s.handlePageRank(w, r)
		return
	case "/graph/stats":
		s.handleStats(w, r)
		return
	}

	// URLs with parameters, like /graph/nodes/{key}/neighbors
	if strings.HasPrefix(path, "/graph/nodes/") {
		rest := strings.TrimPrefix(path, "/graph/nodes/")
		if key, ok := strings.CutSuffix(rest, "/neighbors"); ok && key != "" {
			s.handleNeighbors(w, r, key)
			return
		}
	}

	// If no pattern matched, return Not Found.
	s.writeHTTPError(w, http.StatusNotFound, "Endpoint not found")
}

// --- Mutation handlers ---

func (s *Server) handleNodeAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "Only POST is allowed on /graph/nodes")
		return
	}

	var req NodeAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return
	}

	id, err := s.Engine.AddNode(req.Key)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.refreshGraphGauges()
	s.writeHTTPResponse(w, http.StatusOK, map[string]any{"key": req.Key, "id": id})
}

func (s *Server) handleEdgeAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "Only POST is allowed on /graph/edges")
		return
	}

	var req EdgeAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return
	}

	if err := s.Engine.AddEdge(req.Source, req.Target, req.Weight); err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.refreshGraphGauges()
	s.writeHTTPResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEdgeBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "Only POST is allowed on /graph/edges/batch")
		return
	}

	var req EdgeBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return
	}
	if len(req.Edges) == 0 {
		s.writeHTTPError(w, http.StatusBadRequest, "Batch must contain at least one edge")
		return
	}

	edges := make([]graph.Edge[string], len(req.Edges))
	for i, e := range req.Edges {
		edges[i] = graph.Edge[string]{Source: e.Source, Target: e.Target, Weight: e.Weight}
	}

	if err := s.Engine.AddEdgesBatch(edges); err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.refreshGraphGauges()
	s.writeHTTPResponse(w, http.StatusOK, map[string]any{"status": "ok", "edges": len(edges)})
}

// --- Read handlers ---

func (s *Server) handleNeighbors(w http.ResponseWriter, r *http.Request, key string) {
	if r.Method != http.MethodGet {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "Only GET is allowed on /graph/nodes/{key}/neighbors")
		return
	}

	out := s.Engine.OutEdges(key)
	resp := NeighborsResponse{Key: key, Neighbors: make([]NeighborDTO, len(out))}
	for i, n := range out {
		resp.Neighbors[i] = NeighborDTO{Key: n.Key, Weight: n.Weight}
	}
	s.writeHTTPResponse(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "Only GET is allowed on /graph/stats")
		return
	}

	m := s.Engine.Metrics()
	s.writeHTTPResponse(w, http.StatusOK, StatsResponse{
		NodeCount:       m.NodeCount,
		EdgeCount:       m.EdgeCount,
		PartitionCount:  m.PartitionCount,
		TotalOperations: m.TotalOperations,
		CacheHits:       m.CacheHits,
		CacheMisses:     m.CacheMisses,
		CacheSize:       m.CacheSize,
		SnapshotVersion: m.SnapshotVersion,
	})
}

// --- Analytics handlers (asynchronous, task-based) ---

func (s *Server) handleBFS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "Only POST is allowed on /graph/analytics/bfs")
		return
	}

	var req BFSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return
	}
	if req.Start == "" {
		s.writeHTTPError(w, http.StatusBadRequest, "'start' must not be empty")
		return
	}
	if req.MaxDepth < 0 {
		s.writeHTTPError(w, http.StatusBadRequest, "'max_depth' must not be negative")
		return
	}

	task := s.taskManager.NewTask()
	go s.runAnalyticsTask(task, func(ctx context.Context) (any, error) {
		return s.Engine.BFS(ctx, req.Start, req.MaxDepth)
	})

	s.writeHTTPResponse(w, http.StatusAccepted, TaskAcceptedResponse{TaskID: task.ID})
}

func (s *Server) handlePageRank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "Only POST is allowed on /graph/analytics/pagerank")
		return
	}

	var req PageRankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return
	}

	opts := graph.DefaultPageRankOptions()
	if req.Damping != 0 {
		if req.Damping <= 0 || req.Damping >= 1 {
			s.writeHTTPError(w, http.StatusBadRequest, "'damping' must be in (0, 1)")
			return
		}
		opts.Damping = req.Damping
	}
	if req.MaxIterations > 0 {
		opts.MaxIterations = req.MaxIterations
	}
	if req.Tolerance > 0 {
		opts.Tolerance = req.Tolerance
	}

	task := s.taskManager.NewTask()
	go s.runAnalyticsTask(task, func(ctx context.Context) (any, error) {
		return s.Engine.PageRank(ctx, opts)
	})

	s.writeHTTPResponse(w, http.StatusAccepted, TaskAcceptedResponse{TaskID: task.ID})
}

// runAnalyticsTask executes fn in the background and records the outcome on
// the task. Tasks run detached from the originating request, so a client
// disconnect does not cancel the computation.
func (s *Server) runAnalyticsTask(task *Task, fn func(ctx context.Context) (any, error)) {
	metrics.TasksActive.Inc()
	defer metrics.TasksActive.Dec()

	task.SetStatus(TaskStatusRunning)
	result, err := fn(context.Background())
	if err != nil {
		task.SetError(err)
		return
	}
	task.SetResult(result)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "Only GET is allowed on /tasks/{id}")
		return
	}

	task, found := s.taskManager.GetTask(id)
	if !found {
		s.writeHTTPError(w, http.StatusNotFound, "Task not found: "+id)
		return
	}

	s.writeHTTPResponse(w, http.StatusOK, task.Snapshot())
}

// --- System handlers ---

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// refreshGraphGauges pushes the engine counters into the Prometheus gauges
// after a mutation.
func (s *Server) refreshGraphGauges() {
	m := s.Engine.Metrics()
	metrics.GraphNodesTotal.Set(float64(m.NodeCount))
	metrics.GraphEdgesTotal.Set(float64(m.EdgeCount))
	metrics.SnapshotVersion.Set(float64(m.SnapshotVersion))
}

// writeEngineError maps engine errors to HTTP status codes.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	if errors.Is(err, graph.ErrInvalidKey) {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeHTTPError(w, http.StatusInternalServerError, err.Error())
}

// --- JSON helpers ---

// writeHTTPResponse serializes a payload as a JSON response.
func (s *Server) writeHTTPResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// writeHTTPError serializes an error message as a JSON response.
func (s *Server) writeHTTPError(w http.ResponseWriter, statusCode int, message string) {
	s.writeHTTPResponse(w, statusCode, map[string]string{"error": message})
}
