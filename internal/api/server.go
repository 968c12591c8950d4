// Copyright 2025 Code Weaver Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package api exposes the HTTP surface of the website generation service:
// session management, chat, generation, and operational endpoints.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/your-org/code-weaver/internal/generator"
	"github.com/your-org/code-weaver/internal/health"
	"github.com/your-org/code-weaver/internal/llm"
	"github.com/your-org/code-weaver/internal/store"
)

// Generator runs one generation request. Implemented by
// generator.Orchestrator; tests substitute stubs.
type Generator interface {
	Generate(ctx context.Context, req generator.GenerationRequest) (*generator.Result, error)
}

// chatSystemPrompt keeps the conversational endpoint on topic without
// dragging in the full generation contract.
const chatSystemPrompt = `You are the assistant of a website building service. Answer briefly and helpfully. When the user describes a site they want, encourage them to trigger a generation.`

// chatApology is returned when every attempt to produce a chat reply
// failed. Chat is conversational sugar; it degrades instead of erroring.
const chatApology = "Sorry, I had trouble answering that. Please try again, or go ahead and generate your website."

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	store     *store.Store
	generator Generator
	completer llm.Completer
	models    []string
	health    *health.Manager
	metrics   http.Handler
	logger    *zap.Logger
}

// Config wires a Server.
type Config struct {
	Store     *store.Store
	Generator Generator
	Completer llm.Completer
	Models    []string
	Health    *health.Manager
	Metrics   http.Handler
	Logger    *zap.Logger
}

// NewServer builds the handler set. Logger defaults to a no-op logger.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store:     cfg.Store,
		generator: cfg.Generator,
		completer: cfg.Completer,
		models:    cfg.Models,
		health:    cfg.Health,
		metrics:   cfg.Metrics,
		logger:    logger,
	}
}

// Router assembles the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/", s.handleRoot)
		api.POST("/session", s.handleCreateSession)
		api.GET("/session/:id", s.handleGetSession)
		api.GET("/session/:id/messages", s.handleListMessages)
		api.GET("/session/:id/website", s.handleLatestWebsite)
		api.POST("/chat", s.handleChat)
		api.POST("/generate", s.handleGenerate)
		api.GET("/models", s.handleModels)
	}

	if s.health != nil {
		router.GET("/healthz", gin.WrapF(s.health.HTTPHandler()))
	}
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics))
	}

	return router
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "code-weaver",
		"status":  "running",
	})
}

func (s *Server) handleCreateSession(c *gin.Context) {
	sess, err := s.store.CreateSession(c.Request.Context())
	if err != nil {
		s.logger.Error("Failed to create session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (s *Server) handleGetSession(c *gin.Context) {
	sess, err := s.store.GetSession(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	if err != nil {
		s.logger.Error("Failed to get session", zap.String("id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Server) handleListMessages(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.store.GetSession(c.Request.Context(), id); errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	msgs, err := s.store.ListMessages(c.Request.Context(), id)
	if err != nil {
		s.logger.Error("Failed to list messages", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// ChatRequest is an incoming conversational message.
type ChatRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	ctx := c.Request.Context()
	if _, err := s.store.GetSession(ctx, req.SessionID); errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	if _, err := s.store.AddMessage(ctx, req.SessionID, "user", req.Message); err != nil {
		s.logger.Error("Failed to store user message", zap.Error(err))
	}

	reply := s.chatReply(ctx, req.Message)

	msg, err := s.store.AddMessage(ctx, req.SessionID, "assistant", reply)
	if err != nil {
		s.logger.Error("Failed to store assistant message", zap.Error(err))
		msg = &store.Message{
			SessionID: req.SessionID,
			Role:      "assistant",
			Content:   reply,
			CreatedAt: time.Now().UTC(),
		}
	}
	_ = s.store.TouchSession(ctx, req.SessionID)

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// chatReply asks the first configured model; any failure collapses into
// the apology text.
func (s *Server) chatReply(ctx context.Context, message string) string {
	if s.completer == nil || len(s.models) == 0 {
		return chatApology
	}

	content, err := s.completer.Complete(ctx, llm.CompletionRequest{
		Model:        s.models[0],
		SystemPrompt: chatSystemPrompt,
		UserPrompt:   message,
		MaxTokens:    512,
	})
	if err != nil || content == "" {
		s.logger.Warn("Chat completion failed", zap.Error(err))
		return chatApology
	}
	return content
}

// GenerateRequest is an incoming website generation request.
type GenerateRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Prompt    string `json:"prompt"`
	Model     string `json:"model"`
	Deploy    bool   `json:"deploy"`
	SiteName  string `json:"site_name"`
	Edit      bool   `json:"edit"`
}

// GenerateResponse is the outcome of a generation request.
type GenerateResponse struct {
	WebsiteID    string      `json:"website_id"`
	Files        interface{} `json:"files"`
	UsedFallback bool        `json:"used_fallback"`
	Deployment   interface{} `json:"deployment,omitempty"`
	Attempts     int         `json:"attempts"`
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	ctx := c.Request.Context()
	if _, err := s.store.GetSession(ctx, req.SessionID); errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	genReq := generator.GenerationRequest{
		SessionID: req.SessionID,
		Prompt:    req.Prompt,
		ModelHint: req.Model,
		Deploy:    req.Deploy,
		SiteSlug:  req.SiteName,
	}

	if req.Edit {
		prev, err := s.store.LatestWebsite(ctx, req.SessionID)
		if err == nil {
			genReq.EditMode = true
			genReq.ExistingFiles = prev.Files
		} else if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("Failed to load previous website for edit", zap.Error(err))
		}
	}

	result, err := s.generator.Generate(ctx, genReq)
	if errors.Is(err, generator.ErrEmptyPrompt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt must not be empty"})
		return
	}
	if err != nil {
		// Generate only errors on empty prompts; anything else here means
		// a programming mistake, not a pipeline failure.
		s.logger.Error("Generation failed unexpectedly", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Generation failed"})
		return
	}

	website := &store.Website{
		SessionID:    req.SessionID,
		Prompt:       req.Prompt,
		Files:        result.Files,
		UsedFallback: result.UsedFallback,
	}
	if result.Deployment != nil {
		website.SiteURL = result.Deployment.URL
	}
	if err := s.store.SaveWebsite(ctx, website); err != nil {
		s.logger.Error("Failed to persist website", zap.Error(err))
	}
	_ = s.store.TouchSession(ctx, req.SessionID)

	resp := GenerateResponse{
		WebsiteID:    website.ID,
		Files:        result.Files,
		UsedFallback: result.UsedFallback,
		Attempts:     len(result.Attempts),
	}
	if result.Deployment != nil {
		resp.Deployment = result.Deployment
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleLatestWebsite(c *gin.Context) {
	id := c.Param("id")
	website, err := s.store.LatestWebsite(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No website generated yet"})
		return
	}
	if err != nil {
		s.logger.Error("Failed to load website", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load website"})
		return
	}
	c.JSON(http.StatusOK, website)
}

func (s *Server) handleModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": s.models})
}
