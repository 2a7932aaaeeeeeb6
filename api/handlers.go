package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"

	"phylosensi/app"
	"phylosensi/domain/core"
	"phylosensi/domain/model"
	"phylosensi/domain/phylo"
	"phylosensi/internal/report"
)

type traitsPayload struct {
	Species []string             `json:"species" binding:"required"`
	Columns map[string][]float64 `json:"columns" binding:"required"`
}

type influencePayload struct {
	Response  string        `json:"response" binding:"required"`
	Predictor string        `json:"predictor" binding:"required"`
	Model     string        `json:"model" binding:"required"`
	Cutoff    float64       `json:"cutoff"`
	Traits    traitsPayload `json:"traits" binding:"required"`
	Tree      string        `json:"tree" binding:"required"`
}

type treeUncertaintyPayload struct {
	Response    string        `json:"response" binding:"required"`
	Predictor   string        `json:"predictor" binding:"required"`
	Model       string        `json:"model"`
	Traits      traitsPayload `json:"traits" binding:"required"`
	Trees       []string      `json:"trees" binding:"required"`
	NTree       int           `json:"n_tree" binding:"required"`
	Seed        int64         `json:"seed"`
	SearchBound float64       `json:"search_bound"`
}

func (s *Server) handleRunInfluence(c *gin.Context) {
	var payload influencePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	spec, err := model.NewRegressionSpec(payload.Response, payload.Predictor, model.Evolution(payload.Model), model.FitOptions{})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tree, err := phylo.ParseNewick(payload.Tree)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.service.RunInfluence(c.Request.Context(), app.InfluenceRequest{
		Spec:   spec,
		Traits: &model.TraitTable{Species: payload.Traits.Species, Columns: payload.Traits.Columns},
		Tree:   tree,
		Cutoff: payload.Cutoff,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	s.storeInfluence(res)
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleGetInfluence(c *gin.Context) {
	res, ok := s.lookupInfluence(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleInfluenceReport(c *gin.Context) {
	res, ok := s.lookupInfluence(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
		return
	}
	html := markdown.ToHTML([]byte(report.InfluenceMarkdown(res)), nil, nil)
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (s *Server) handleRunTreeUncertainty(c *gin.Context) {
	var payload treeUncertaintyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	evo := model.Evolution(payload.Model)
	if payload.Model == "" {
		evo = model.LogisticMPLE
	}
	spec, err := model.NewRegressionSpec(payload.Response, payload.Predictor, evo,
		model.FitOptions{SearchBound: payload.SearchBound})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trees, err := phylo.ParseNewickAll(strings.Join(payload.Trees, "\n"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.service.RunTreeUncertainty(c.Request.Context(), app.TreeUncertaintyRequest{
		Spec:   spec,
		Traits: &model.TraitTable{Species: payload.Traits.Species, Columns: payload.Traits.Columns},
		Trees:  trees,
		NTree:  payload.NTree,
		Seed:   payload.Seed,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	s.storeTree(res)
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleGetTreeUncertainty(c *gin.Context) {
	res, ok := s.lookupTree(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleTreeReport(c *gin.Context) {
	res, ok := s.lookupTree(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
		return
	}
	html := markdown.ToHTML([]byte(report.TreeMarkdown(res)), nil, nil)
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func statusFor(err error) int {
	switch {
	case core.IsConstructionError(err):
		return http.StatusBadRequest
	case core.IsEmptyResultError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
