// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the lookup and download pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/paper-finder/internal/httputil"
	"github.com/pdiddy/paper-finder/internal/lookup"
	"github.com/pdiddy/paper-finder/internal/token"
	"github.com/pdiddy/paper-finder/pkg/types"
)

const defaultDownloadTimeout = 2 * time.Minute

// Lookuper runs a full lookup. Satisfied by *lookup.Service.
type Lookuper interface {
	Do(ctx context.Context, q types.Query) (lookup.Result, error)
}

// Server routes HTTP requests to the lookup service and token store.
type Server struct {
	lookups   Lookuper
	tokens    *token.Store
	client    *http.Client
	userAgent string
	addr      string
}

// New builds a Server. The download proxy gets its own client with a
// longer timeout than metadata calls; full texts can be large.
func New(lookups Lookuper, tokens *token.Store, cfg types.ServerConfig, userAgent string) *Server {
	timeout := cfg.DownloadTimeout
	if timeout <= 0 {
		timeout = defaultDownloadTimeout
	}
	return &Server{
		lookups:   lookups,
		tokens:    tokens,
		client:    httputil.NewClient(timeout),
		userAgent: userAgent,
		addr:      cfg.Addr,
	}
}

// Router assembles the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.Use(corsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/api/lookup", s.handleLookup)
	r.GET("/api/download/:token", s.handleDownload)
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.Router()}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Printf("listening on %s", s.addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// lookupResponse is the public lookup result shape. metadata and
// download_token are null (not omitted) when absent so clients can rely
// on the keys being present.
type lookupResponse struct {
	Metadata      *types.CandidateRecord `json:"metadata"`
	CandidateURLs []string               `json:"candidate_urls"`
	DownloadToken *string                `json:"download_token"`
	Warnings      []string               `json:"warnings"`
}

func (s *Server) handleLookup(c *gin.Context) {
	var q types.Query
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON with title and first_author_last_name"})
		return
	}

	res, err := s.lookups.Do(c.Request.Context(), q)
	if errors.Is(err, lookup.ErrInvalidQuery) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Printf("lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	resp := lookupResponse{
		CandidateURLs: []string{},
		Warnings:      res.Warnings,
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	if res.Match != nil {
		resp.Metadata = &res.Match.Metadata
		resp.CandidateURLs = append(resp.CandidateURLs, res.Match.CandidateURLs...)
	}
	if res.DownloadToken != "" {
		resp.DownloadToken = &res.DownloadToken
	}
	c.JSON(http.StatusOK, resp)
}

// corsMiddleware allows browser front ends on other origins to call the
// API. The service carries no credentials, so a permissive policy is safe.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
