package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/egaotan/solana-swap/backend"
	"github.com/egaotan/solana-swap/env"
	"github.com/egaotan/solana-swap/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// History answers swap history queries.
type History interface {
	Swaps(ctx context.Context, q store.SwapQuery) ([]*store.SwapRecord, error)
}

type Server struct {
	log        *zap.Logger
	backend    *backend.Backend
	env        *env.Env
	history    History
	router     *gin.Engine
	httpServer *http.Server
}

// NewServer serves backend on listen. history may be nil, which disables
// /api/swaps.
//
// The API does no authorization: /api/swap trusts the user key in the body
// and /api/accounts mints tokens for any caller. Keep it behind a trusted
// network.
func NewServer(listen string, b *backend.Backend, e *env.Env, history History, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		log:     logger.With(zap.String("component", "api")),
		backend: b,
		env:     e,
		history: history,
	}
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLog)
	g := router.Group("/api")
	g.GET("/pools", s.listPools)
	g.POST("/pools", s.initializePool)
	g.GET("/pools/:key", s.getPool)
	g.GET("/quote", s.quote)
	g.POST("/swap", s.swap)
	g.POST("/accounts", s.deposit)
	g.GET("/accounts/:key", s.getAccount)
	g.GET("/swaps", s.swaps)
	s.router = router
	s.httpServer = &http.Server{
		Addr:    listen,
		Handler: router,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves in the background. The returned channel receives the error
// when the listener fails; it stays empty after a clean Stop.
func (s *Server) Start() <-chan error {
	s.log.Info("start rpc server", zap.String("listen", s.httpServer.Addr))
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("listen and serve", zap.Error(err))
			errCh <- err
		}
	}()
	return errCh
}

func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.log.Info("rpc server has stopped")
	return nil
}

func (s *Server) requestLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Debug("request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("latency", time.Since(start)),
	)
}
