package server

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"drakyn/agent"
	"drakyn/config"
	"drakyn/model"
	"drakyn/storage"
	"drakyn/stream"

	"github.com/gin-gonic/gin"
)

const (
	healthProbeTimeout = 3 * time.Second
	recordTimeout      = 5 * time.Second
)

type healthChecker interface {
	Health(ctx context.Context) error
}

func (s *Server) health(c *gin.Context) {
	resp := HealthResponse{
		Status:       "ok",
		Service:      "inference",
		Version:      config.Version,
		CurrentModel: s.modelID(),
		Backend:      "none",
		Registry:     "none",
	}

	if s.deps.Provider != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
		resp.Backend = probe(s.deps.Provider.Ping(ctx))
		cancel()
	}

	if s.deps.Tools != nil {
		resp.Tools = len(s.deps.Tools.Tools())
		resp.Registry = "connected"
		if hc, ok := s.deps.Tools.Registry().(healthChecker); ok {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
			resp.Registry = probe(hc.Health(ctx))
			cancel()
		}
	}

	c.JSON(http.StatusOK, resp)
}

func probe(err error) string {
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Server] health probe failed: %v", err)
		}
		return "unreachable"
	}
	return "ok"
}

func (s *Server) models(c *gin.Context) {
	ctx := c.Request.Context()
	resp := ModelsResponse{CurrentModel: s.modelID(), Models: []ModelEntry{}}
	seen := make(map[string]bool)

	add := func(p model.Provider, fallbackID string) error {
		infos, err := p.ListModels(ctx)
		if err != nil {
			return err
		}
		for _, info := range infos {
			providerID := info.Provider
			if providerID == "" {
				providerID = fallbackID
			}
			name := info.InternalName
			if name == "" {
				name = info.Name
			}
			id := providerID + "/" + name
			if seen[id] {
				continue
			}
			seen[id] = true
			resp.Models = append(resp.Models, ModelEntry{ID: id, Name: info.Name, Provider: providerID, Size: info.Size})
		}
		return nil
	}

	var activeErr error
	if s.deps.Provider != nil {
		activeErr = add(s.deps.Provider, providerOf(s.modelID()))
	}

	ids := make([]string, 0, len(s.deps.Catalog))
	for id := range s.deps.Catalog {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := add(s.deps.Catalog[id], id); err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("[Server] Skipping models from %s: %v", id, err)
		}
	}

	if activeErr != nil && len(resp.Models) == 0 {
		c.JSON(http.StatusBadGateway, errorResponse{Error: activeErr.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) tools(c *gin.Context) {
	resp := ToolsResponse{Tools: []model.ToolDefinition{}}
	if s.deps.Tools != nil {
		if tools := s.deps.Tools.Tools(); tools != nil {
			resp.Tools = tools
		}
		if at := s.deps.Tools.FetchedAt(); !at.IsZero() {
			resp.FetchedAt = &at
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) refreshTools(c *gin.Context) {
	if s.deps.Tools == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "no capability registry configured"})
		return
	}
	if err := s.deps.Tools.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	s.tools(c)
}

func (s *Server) chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	history, err := toHistory(req.History)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if s.deps.Agent == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "agent not configured"})
		return
	}

	// The run is tied to the request: a client disconnect cancels it.
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	started := time.Now()
	steps := s.deps.Agent.Run(ctx, agent.Request{Message: req.Message, History: history})

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Server] Chat run started (stream=%v, history=%d)", req.Stream, len(history))
	}

	if !req.Stream {
		_, summary := agent.Collect(steps)
		s.record(ctx, summary, started)

		switch summary.Outcome {
		case agent.OutcomeAnswer:
			c.JSON(http.StatusOK, ChatResponse{Answer: summary.Answer})
		case agent.OutcomeError:
			c.JSON(http.StatusOK, ChatResponse{Error: summary.Error})
		default:
			c.JSON(http.StatusServiceUnavailable, ChatResponse{Error: "run cancelled"})
		}
		return
	}

	stream.PrepareSSE(c.Writer.Header())
	c.Status(http.StatusOK)

	var summary agent.Summary
	enc := stream.Encoder{OnStep: summary.Observe}
	if err := enc.Drain(ctx, steps, stream.NewSSESink(c.Writer)); err != nil {
		cancel()
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Server] Stream ended early: %v", err)
		}
		// unblock the run goroutine if it is mid-send
		for range steps {
		}
	}
	if !summary.Finished() {
		summary.Outcome = agent.OutcomeCancelled
	}
	s.record(ctx, summary, started)
}

// record stores the run in the journal. It runs after the client may have
// gone, so it does not inherit the request's cancellation.
func (s *Server) record(ctx context.Context, summary agent.Summary, started time.Time) {
	if s.deps.Runs == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	_, err := s.deps.Runs.Record(ctx, storage.RunRecord{
		Model:      s.modelID(),
		Outcome:    string(summary.Outcome),
		Iterations: summary.Iterations,
		ToolCalls:  summary.ToolCalls,
		ToolErrors: summary.ToolErrors,
		Error:      summary.Error,
		StartedAt:  started,
		Duration:   time.Since(started),
	})
	if err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("[Server] Failed to record run: %v", err)
	}
}

func (s *Server) listRuns(c *gin.Context) {
	if s.deps.Runs == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "run recording is disabled"})
		return
	}

	limit := storage.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	runs, err := s.deps.Runs.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	resp := RunsResponse{Runs: make([]RunEntry, 0, len(runs))}
	for _, r := range runs {
		resp.Runs = append(resp.Runs, toRunEntry(r))
	}
	c.JSON(http.StatusOK, resp)
}

// providerOf returns the provider prefix of a model ID such as
// "ollama/llama3.1".
func providerOf(modelID string) string {
	prefix, _, _ := strings.Cut(modelID, "/")
	return prefix
}
