package api

import (
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"phylosensi/app"
	"phylosensi/internal/analysis/influence"
	"phylosensi/internal/analysis/treesim"
)

// Server exposes the sensitivity analyses over HTTP. Result bundles live in
// an in-memory store only; nothing is persisted.
type Server struct {
	router  *gin.Engine
	service *app.SensitivityService

	mu           sync.RWMutex
	influenceRes map[string]*influence.Result
	treeRes      map[string]*treesim.Result
}

// NewServer creates the HTTP server around an orchestration service.
func NewServer(service *app.SensitivityService) *Server {
	s := &Server{
		router:       gin.Default(),
		service:      service,
		influenceRes: make(map[string]*influence.Result),
		treeRes:      make(map[string]*treesim.Result),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api")
	{
		api.POST("/analyses/influence", s.handleRunInfluence)
		api.GET("/analyses/influence/:id", s.handleGetInfluence)
		api.GET("/analyses/influence/:id/report", s.handleInfluenceReport)

		api.POST("/analyses/tree-uncertainty", s.handleRunTreeUncertainty)
		api.GET("/analyses/tree-uncertainty/:id", s.handleGetTreeUncertainty)
		api.GET("/analyses/tree-uncertainty/:id/report", s.handleTreeReport)
	}
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// Router exposes the gin engine, mainly for httptest.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts serving on the given address.
func (s *Server) Run(addr string) error {
	log.Printf("[API] listening on %s", addr)
	return s.router.Run(addr)
}

func (s *Server) storeInfluence(res *influence.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.influenceRes[res.AnalysisID.String()] = res
}

func (s *Server) lookupInfluence(id string) (*influence.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.influenceRes[id]
	return res, ok
}

func (s *Server) storeTree(res *treesim.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.treeRes[res.AnalysisID.String()] = res
}

func (s *Server) lookupTree(id string) (*treesim.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.treeRes[id]
	return res, ok
}
