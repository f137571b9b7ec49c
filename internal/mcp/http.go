package mcp

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Router builds the HTTP transport: one JSON-RPC request per POST /mcp, plus
// a health check.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.POST("/mcp", s.handlePost)
	return r
}

func (s *Server) handlePost(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxFrameSize))
	if err != nil {
		c.JSON(http.StatusOK, errorResponse(nil, codeParseError, "unreadable request body"))
		return
	}

	resp := s.Handle(c.Request.Context(), bytes.TrimSpace(raw))
	if resp == nil {
		// notification, nothing to send back
		c.Status(http.StatusAccepted)
		return
	}
	c.Data(http.StatusOK, "application/json", resp)
}

// ServeHTTP runs the transport until ctx is cancelled, then drains in-flight
// requests before returning.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router()}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.log.Info().Str("addr", addr).Msg("http transport listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
