// Package server exposes the edit-list patcher over HTTP.
package server

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/ugparu/mp4edts/utils/logger"
)

type Server struct {
	server    *http.Server
	router    *gin.Engine
	queue     *Queue
	startOnce *sync.Once
	closeOnce *sync.Once
	deadChan  chan any
}

func New(cfg Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	queue := NewQueue(cfg.Workers, cfg.QueueSize)
	router := newRouter(queue)

	s := &Server{
		server: &http.Server{
			Addr:    cfg.Addr,
			Handler: router,
		},
		router:    router,
		queue:     queue,
		deadChan:  make(chan any),
		startOnce: &sync.Once{},
		closeOnce: &sync.Once{},
	}
	logger.Debug(s, "Initialized and set up")
	return s
}

func newRouter(queue *Queue) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	pprof.Register(router)

	h := &handlers{queue: queue}
	api := router.Group("/api")
	api.POST("/patch", h.Patch)
	api.POST("/jobs", h.SubmitJob)
	api.GET("/jobs/:id", h.GetJob)
	api.GET("/edit-lists", h.GetEditLists)
	return router
}

func (s *Server) String() string {
	return "HTTP_SERVER addr=" + s.server.Addr
}

// Start starts the workers and blocks serving HTTP until Close.
func (s *Server) Start() {
	err := errors.New("HTTP server has been started already")
	s.startOnce.Do(func() {
		defer close(s.deadChan)

		s.queue.Start()
		logger.Info(s, "Starting listening")
		if err = s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warning(s, err.Error())
		}
		err = nil
	})
	if err != nil {
		logger.Error(s, err.Error())
	}
}

func (s *Server) Close() {
	s.closeOnce.Do(func() {
		logger.Warning(s, "Stopping and closing")
		if err := s.server.Close(); err != nil {
			logger.Warningf(s, "Close error: %v", err)
		}
		s.queue.Close()
	})
}

func (s *Server) Dead() <-chan any {
	return s.deadChan
}
