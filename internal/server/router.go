package server

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/loykin/sidekick/internal/logger"
	"github.com/loykin/sidekick/internal/metrics"
	"github.com/loykin/sidekick/internal/platform"
	"github.com/loykin/sidekick/internal/store"
	"github.com/loykin/sidekick/internal/supervisor"
)

// Router provides embeddable HTTP handlers for the local control surface.
// Endpoints:
//   POST {basePath}/log              body: {"message": "..."}
//   GET  {basePath}/base-url
//   GET  {basePath}/ready
//   GET  {basePath}/status
//   POST {basePath}/backend/retry
//   POST {basePath}/backend/kill-retry
//   POST {basePath}/backend/task
//   GET  {basePath}/logs/autostart
//   POST {basePath}/logs/open
//   GET  {basePath}/history          query: limit=N (requires a store)
//   GET  /metrics
// basePath may be empty or start with '/'; no trailing slash.

type Deps struct {
	Super            *supervisor.Supervisor
	AppLog           *logger.Channel
	AutostartLogPath string
	LogsDir          string
	Platform         platform.Platform
	History          store.Store
}

type Router struct {
	deps     Deps
	basePath string
}

// NewRouter constructs a new Router with configurable basePath.
// Example basePath: "/api" results in /api/ready, /api/status, etc.
func NewRouter(deps Deps, basePath string) *Router {
	bp := sanitizeBase(basePath)
	return &Router{deps: deps, basePath: bp}
}

// Handler returns an http.Handler powered by gin that can be mounted in any server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.POST("/log", r.handleLog)
	group.GET("/base-url", r.handleBaseURL)
	group.GET("/ready", r.handleReady)
	group.GET("/status", r.handleStatus)
	group.POST("/backend/retry", r.handleRetry)
	group.POST("/backend/kill-retry", r.handleKillRetry)
	group.POST("/backend/task", r.handleTask)
	group.GET("/logs/autostart", r.handleAutostartLog)
	group.POST("/logs/open", r.handleOpenLogs)
	group.GET("/history", r.handleHistory)
	g.GET("/metrics", gin.WrapH(metrics.Handler()))
	return g
}

// NewServer starts a standalone HTTP server on addr using this router. The
// listener is bound synchronously so an occupied address fails here instead
// of inside the serve goroutine. The returned server can be shut down via
// its Close/Shutdown methods.
func NewServer(addr, basePath string, deps Deps) (*http.Server, error) {
	r := NewRouter(deps, basePath)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.Serve(ln) }()
	return server, nil
}

// --- Handlers ---

type errorResp struct {
	Error string `json:"error"`
}

type okResp struct {
	OK bool `json:"ok"`
}

type logReq struct {
	Message string `json:"message"`
}

func (r *Router) handleLog(c *gin.Context) {
	var req logReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	if req.Message == "" {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "message required"})
		return
	}
	r.deps.AppLog.Append(req.Message)
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

func (r *Router) handleBaseURL(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"base_url": r.deps.Super.BaseURL()})
}

func (r *Router) handleReady(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"ready": r.deps.Super.Ready()})
}

func (r *Router) handleStatus(c *gin.Context) {
	st := r.deps.Super.Status()
	writeJSON(c, http.StatusOK, gin.H{
		"status": st.String(),
		"state":  string(st.State),
		"reason": string(st.Reason),
	})
}

func (r *Router) handleRetry(c *gin.Context) {
	if err := r.deps.Super.Retry(); err != nil {
		writeJSON(c, http.StatusConflict, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

func (r *Router) handleKillRetry(c *gin.Context) {
	if err := r.deps.Super.KillAndRetry(); err != nil {
		writeJSON(c, http.StatusConflict, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

func (r *Router) handleTask(c *gin.Context) {
	if err := r.deps.Super.RunScheduledTask(); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

func (r *Router) handleAutostartLog(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"path": r.deps.AutostartLogPath})
}

func (r *Router) handleOpenLogs(c *gin.Context) {
	if err := r.deps.Platform.OpenFolder(r.deps.LogsDir); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

func (r *Router) handleHistory(c *gin.Context) {
	if r.deps.History == nil {
		writeJSON(c, http.StatusServiceUnavailable, errorResp{Error: "history store not configured"})
		return
	}
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(c, http.StatusBadRequest, errorResp{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}
	trs, err := r.deps.History.RecentTransitions(c.Request.Context(), limit)
	if err != nil {
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, trs)
}
