// Copyright (C) 2018. See AUTHORS.

// Package server exposes stored generators over HTTP.
//
// Routes:
//
//	GET    /v1/health
//	GET    /v1/check?seed=N
//	GET    /v1/generators
//	POST   /v1/generators/:name          {"seed": N}
//	GET    /v1/generators/:name
//	POST   /v1/generators/:name/next?count=N
//	DELETE /v1/generators/:name
//	GET    /metrics
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/spacemonkeygo/lfsr"
	"github.com/spacemonkeygo/lfsr/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	// Source supplies seeds for generators created without one. Defaults
	// to lfsr.RuntimeSource.
	Source lfsr.Source

	// MaxBatch bounds the count of a single next request. Defaults to 4096.
	MaxBatch int

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Server serves a Store over HTTP.
type Server struct {
	store    *store.Store
	maxBatch int
	logger   *slog.Logger
	router   *gin.Engine

	// srcMu guards src, which need not be safe for concurrent use.
	srcMu sync.Mutex
	src   lfsr.Source
}

// New builds a Server for st. The caller keeps ownership of st.
func New(st *store.Store, opts Options) *Server {
	if opts.Source == nil {
		opts.Source = lfsr.RuntimeSource()
	}
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = 4096
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		store:    st,
		maxBatch: opts.MaxBatch,
		logger:   opts.Logger,
		src:      opts.Source,
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.countRequests)

	v1 := router.Group("/v1")
	v1.GET("/health", s.handleHealth)
	v1.GET("/check", s.handleCheck)
	v1.GET("/generators", s.handleList)
	v1.POST("/generators/:name", s.handleCreate)
	v1.GET("/generators/:name", s.handleGet)
	v1.POST("/generators/:name/next", s.handleNext)
	v1.DELETE("/generators/:name", s.handleDelete)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// Serve serves on l until ctx is cancelled, then shuts down gracefully.
// It closes l.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("serving", slog.String("address", l.Addr().String()))
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) seed() uint16 {
	s.srcMu.Lock()
	defer s.srcMu.Unlock()
	return lfsr.NonZeroSeed(s.src)
}

func (s *Server) countRequests(c *gin.Context) {
	c.Next()
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	requestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
}

type generatorResponse struct {
	Name   string   `json:"name"`
	State  uint16   `json:"state"`
	Values []uint16 `json:"values,omitempty"`
}

type createRequest struct {
	Seed *uint16 `json:"seed"`
}

type checkResponse struct {
	OK     bool   `json:"ok"`
	Seed   uint16 `json:"seed"`
	Period int    `json:"period,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCheck(c *gin.Context) {
	var seed uint16
	if q := c.Query("seed"); q != "" {
		v, err := strconv.ParseUint(q, 0, 16)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "seed must be a 16 bit unsigned integer"})
			return
		}
		seed = uint16(v)
	} else {
		seed = s.seed()
	}

	start := time.Now()
	err := lfsr.CheckSeed(seed)
	checkDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		checkFailures.Inc()
		s.logger.Error("period check failed",
			slog.Int("seed", int(seed)), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, checkResponse{Seed: seed, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, checkResponse{OK: true, Seed: seed, Period: lfsr.Period})
}

func (s *Server) handleList(c *gin.Context) {
	names, err := s.store.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"names": names})
}

func (s *Server) handleCreate(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seed := s.seedOr(req.Seed)
	name := c.Param("name")
	if err := s.store.Create(c.Request.Context(), name, seed); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, generatorResponse{Name: name, State: seed})
}

func (s *Server) seedOr(seed *uint16) uint16 {
	if seed != nil {
		return *seed
	}
	return s.seed()
}

func (s *Server) handleGet(c *gin.Context) {
	name := c.Param("name")
	g, err := s.store.Load(c.Request.Context(), name)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, generatorResponse{Name: name, State: g.State()})
}

func (s *Server) handleNext(c *gin.Context) {
	count := 1
	if q := c.Query("count"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > s.maxBatch {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "count must be between 1 and " + strconv.Itoa(s.maxBatch),
			})
			return
		}
		count = n
	}

	name := c.Param("name")
	vals, err := s.store.Advance(c.Request.Context(), name, count)
	if err != nil {
		s.fail(c, err)
		return
	}
	advancesTotal.Add(float64(len(vals)))
	c.JSON(http.StatusOK, generatorResponse{
		Name:   name,
		State:  vals[len(vals)-1],
		Values: vals,
	})
}

func (s *Server) handleDelete(c *gin.Context) {
	if err := s.store.Delete(c.Request.Context(), c.Param("name")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// fail maps store errors onto status codes.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.logger.Error("request failed",
			slog.String("path", c.FullPath()), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
