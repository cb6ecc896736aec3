// Package api exposes the HTTP surface: room start/stop, the benchmark
// endpoints, and the websocket upgrade into the collaboration hub.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/collabkit/roomwatch/internal/collab"
	"github.com/collabkit/roomwatch/internal/config"
	"github.com/collabkit/roomwatch/internal/latency"
	"github.com/collabkit/roomwatch/internal/registry"
)

type Server struct {
	logger   *zap.Logger
	registry *registry.Registry
	hub      *collab.Hub
	recorder *latency.Recorder

	apiKey     string
	mode       config.Mode
	exportPath string

	// Invoked after /done has drained and exported; triggers process exit.
	shutdown func()
}

func New(logger *zap.Logger, reg *registry.Registry, hub *collab.Hub,
	recorder *latency.Recorder, cfg *config.Config, shutdown func()) *Server {
	return &Server{
		logger:     logger,
		registry:   reg,
		hub:        hub,
		recorder:   recorder,
		apiKey:     cfg.APIKey,
		mode:       cfg.Mode,
		exportPath: cfg.LatencyExportPath,
		shutdown:   shutdown,
	}
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()

	router.Use(ginzap.Ginzap(s.logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(s.logger, true))

	router.GET("/health", s.healthHandler)
	router.GET("/stats", s.statsHandler)
	router.GET("/ws", func(c *gin.Context) {
		collab.ServeWs(s.hub, c.Writer, c.Request)
	})

	router.GET("/add-room/:roomId", s.addRoomHandler)
	router.POST("/listen", s.listenHandler)
	router.POST("/stop", s.stopHandler)
	router.GET("/done", s.doneHandler)

	return router
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) statsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"active_rooms":   s.registry.Count(),
		"active_clients": s.hub.ClientCount(),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}

// addRoomHandler is the benchmark harness entry point. In benchmark mode it
// acknowledges immediately and attaches the listener in the background; in
// production mode it behaves like /listen with path addressing.
func (s *Server) addRoomHandler(c *gin.Context) {
	roomID := c.Param("roomId")

	req := registry.StartRequest{
		RoomID:       roomID,
		AuthToken:    s.apiKey,
		TrackingID:   c.Query("trackingId"),
		TutorialName: c.Query("tutorialName"),
	}

	if s.mode == config.ModeBenchmark {
		go func() {
			if _, err := s.registry.Start(context.Background(), req); err != nil {
				s.logger.Error("background add-room failed",
					zap.String("room", roomID), zap.Error(err))
			}
		}()
		c.String(http.StatusAccepted, "Adding room "+roomID)
		return
	}

	status, err := s.registry.Start(c.Request.Context(), req)
	if err != nil {
		s.renderStartError(c, err)
		return
	}
	s.renderStartStatus(c, status, roomID)
}

type listenRequest struct {
	APIKey       string `json:"apiKey"`
	Room         string `json:"room"`
	TutorialName string `json:"tutorialName"`
	TrackingID   string `json:"trackingId"`
}

func (s *Server) listenHandler(c *gin.Context) {
	var req listenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Invalid request body")
		return
	}

	status, err := s.registry.Start(c.Request.Context(), registry.StartRequest{
		RoomID:       req.Room,
		AuthToken:    req.APIKey,
		TrackingID:   req.TrackingID,
		TutorialName: req.TutorialName,
	})
	if err != nil {
		s.renderStartError(c, err)
		return
	}
	s.renderStartStatus(c, status, req.Room)
}

type stopRequest struct {
	APIKey string `json:"apiKey"`
	Room   string `json:"room"`
}

func (s *Server) stopHandler(c *gin.Context) {
	var req stopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Invalid request body")
		return
	}

	err := s.registry.Stop(c.Request.Context(), req.Room, req.APIKey)
	switch {
	case err == nil:
		c.String(http.StatusOK, "Stopped listening")
	case errors.Is(err, registry.ErrUnauthorized):
		c.String(http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, registry.ErrNotFound):
		c.String(http.StatusBadRequest, "Room not found")
	case errors.Is(err, registry.ErrInvalidRequest):
		c.String(http.StatusBadRequest, reason(err))
	default:
		s.logger.Error("stop failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal error")
	}
}

// doneHandler lets the benchmark harness wait for all in-flight writes to
// drain, collect the latency export, and terminate the process.
func (s *Server) doneHandler(c *gin.Context) {
	if s.mode != config.ModeBenchmark {
		c.String(http.StatusNotFound, "Not found")
		return
	}

	s.registry.Drain()

	if err := s.recorder.WriteCSV(s.exportPath); err != nil {
		s.logger.Error("latency export failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "Export failed")
		return
	}

	c.String(http.StatusOK, "Done")

	if s.shutdown != nil {
		go s.shutdown()
	}
}

func (s *Server) renderStartStatus(c *gin.Context, status registry.Status, roomID string) {
	if status == registry.StatusAlreadyActive {
		c.String(http.StatusOK, "Already listening")
		return
	}
	c.String(http.StatusOK, "Listening to room "+roomID)
}

func (s *Server) renderStartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, registry.ErrUnauthorized):
		c.String(http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, registry.ErrNotFound):
		c.String(http.StatusBadRequest, "Game does not exist")
	case errors.Is(err, registry.ErrInvalidRequest):
		c.String(http.StatusBadRequest, reason(err))
	default:
		s.logger.Error("start failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal error")
	}
}

// reason turns a wrapped validation error into the response body, e.g.
// "invalid request: room is required" -> "Room is required".
func reason(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	if msg == "" {
		return "Invalid request"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
