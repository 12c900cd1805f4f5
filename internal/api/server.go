// Package api exposes the battle engine over HTTP.
//
// Owner-scoped routes authenticate with the X-Owner-ID header; the results
// route authenticates with the session's secret key, so anonymous voters
// never need an account. Error responses carry the engine's error code so
// clients can react precisely (retry, refresh, re-request the link).
package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roach88/photoduel/internal/battle"
	"github.com/roach88/photoduel/internal/engine"
)

// BlobWriter is the upload side of blob storage.
type BlobWriter interface {
	Store(ctx context.Context, r io.Reader) (string, error)
}

// Server holds the HTTP handlers' dependencies.
type Server struct {
	engine *engine.Engine
	blobs  BlobWriter
	log    *slog.Logger
}

// NewServer creates a Server. blobs may be nil, in which case photo
// uploads must carry a URL instead of a file.
func NewServer(eng *engine.Engine, blobs BlobWriter, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{engine: eng, blobs: blobs, log: log}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router(mode string) *gin.Engine {
	gin.SetMode(mode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	api := r.Group("/api")
	{
		api.POST("/battles", s.createBattle)
		api.POST("/battles/:id/photos", s.addPhoto)
		api.DELETE("/battles/:id/photos/:photoID", s.deletePhoto)
		api.GET("/battles/:id/pair", s.nextPair)
		api.POST("/battles/:id/votes", s.submitVote)
		api.POST("/battles/:id/merge", s.mergePhotos)
		api.POST("/battles/:id/link/rotate", s.rotateLink)
		api.GET("/battles/:id/verify", s.verify)
		api.GET("/results/:id", s.results)
	}
	return r
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.log.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status())
	}
}

// ownerID extracts the caller's owner id, or aborts with 401.
func ownerID(c *gin.Context) (string, bool) {
	id := c.GetHeader("X-Owner-ID")
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing X-Owner-ID header"})
		return "", false
	}
	return id, true
}

// writeError maps an engine error to an HTTP response. The body always
// carries the machine-readable code when there is one.
func (s *Server) writeError(c *gin.Context, err error) {
	code := battle.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case battle.ErrCodeConcurrentModification, battle.ErrCodeAlreadyMerged:
		status = http.StatusConflict
	case battle.ErrCodePhotoNotFound, battle.ErrCodeSessionNotFound:
		status = http.StatusNotFound
	case battle.ErrCodePermissionDenied, battle.ErrCodeInvalidSecretKey:
		status = http.StatusForbidden
	case battle.ErrCodeLinkExpired:
		status = http.StatusGone
	}

	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": string(code)})
}
