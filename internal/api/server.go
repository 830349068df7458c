package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/LydenCypher/Cut-Royale-Bot-Discord/internal/storage"
)

// Store is the read-only persistence surface the API exposes
type Store interface {
	ListOpenGames(ctx context.Context) ([]*storage.Game, error)
	ListPlayers(ctx context.Context) ([]*storage.Player, error)
}

// Imager proxies image-generation requests
type Imager interface {
	GenerateImage(ctx context.Context, prompt, theme string) (string, error)
}

// Server is the read-only HTTP API over the game state
type Server struct {
	store  Store
	imager Imager
	http   *http.Server
}

// NewServer builds the API server on the given listen address
func NewServer(addr string, store Store, imager Imager) *Server {
	s := &Server{store: store, imager: imager}
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	return s
}

// Router builds the gin engine with all API routes registered
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/", s.handleRoot)
		api.GET("/games", s.handleGames)
		api.GET("/players", s.handlePlayers)
		api.POST("/generate_image", s.handleGenerateImage)
	}

	return r
}

// Start runs the HTTP server until Shutdown is called
func (s *Server) Start() error {
	slog.Info("Starting API server", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Cut Royale Discord Bot API"})
}

// handleGames lists games that are waiting for players or running
func (s *Server) handleGames(c *gin.Context) {
	games, err := s.store.ListOpenGames(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list games", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list games"})
		return
	}
	if games == nil {
		games = []*storage.Game{}
	}
	c.JSON(http.StatusOK, games)
}

// handlePlayers lists all players
func (s *Server) handlePlayers(c *gin.Context) {
	players, err := s.store.ListPlayers(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list players", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list players"})
		return
	}
	if players == nil {
		players = []*storage.Player{}
	}
	c.JSON(http.StatusOK, players)
}

// imageGenRequest is the generate_image request body
type imageGenRequest struct {
	Prompt      string `json:"prompt" binding:"required"`
	GameContext string `json:"game_context"`
}

// handleGenerateImage proxies a prompt to the image generation service
func (s *Server) handleGenerateImage(c *gin.Context) {
	var req imageGenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	theme := req.GameContext
	if theme == "" {
		theme = "modern"
	}

	imageURL, err := s.imager.GenerateImage(c.Request.Context(), req.Prompt, theme)
	if err != nil {
		slog.Error("Failed to generate image", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "image_url": imageURL})
}
