package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"travelguide/config"
	"travelguide/internal/conversation"
	"travelguide/internal/core"
	"travelguide/internal/model"
	"travelguide/internal/speech"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Adapter struct {
	Dispatcher  *core.Dispatcher
	Transcriber speech.Transcriber
	Logger      *zap.Logger
	Config      config.ServerConfig
}

func NewAdapter(cfg config.ServerConfig, dispatcher *core.Dispatcher, transcriber speech.Transcriber, logger *zap.Logger) *Adapter {
	return &Adapter{
		Dispatcher:  dispatcher,
		Transcriber: transcriber,
		Logger:      logger,
		Config:      cfg,
	}
}

type TranscribeResponse struct {
	Text string `json:"text"`
}

type SuggestionsResponse struct {
	Language  string   `json:"language"`
	Greeting  string   `json:"greeting"`
	Questions []string `json:"questions"`
}

// Router builds the gin engine with all routes and middleware.
func (a *Adapter) Router() (*gin.Engine, error) {
	corsCfg, err := corsConfig(a.Config.AllowOrigins())
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(accessLog(a.Logger))
	r.Use(cors.New(corsCfg))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	v1 := r.Group("/api/v1")
	v1.POST("/chat", a.handleChat)
	v1.POST("/transcribe", a.handleTranscribe)
	v1.GET("/suggestions", a.handleSuggestions)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r, nil
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (a *Adapter) Start(ctx context.Context) error {
	router, err := a.Router()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:    ":" + a.Config.Port,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("REST server shutdown failed", zap.Error(err))
		}
	}()

	a.Logger.Info("Starting REST API server", zap.String("port", a.Config.Port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *Adapter) defaultLanguage() conversation.Language {
	return conversation.ParseLanguage(a.Config.DefaultLanguage, conversation.DefaultLanguage)
}

func (a *Adapter) handleChat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	history, err := conversation.ParseHistory(req.Messages)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid conversation", Details: err.Error()})
		return
	}

	msg := &model.InternalMessage{
		Platform: "api",
		Language: conversation.ParseLanguage(req.Language, a.defaultLanguage()),
		History:  history,
	}

	reply, err := a.Dispatcher.Dispatch(c.Request.Context(), msg)
	if err != nil {
		a.Logger.Error("Dispatch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to process chat", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, reply)
}

func (a *Adapter) handleTranscribe(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		a.Logger.Warn("Transcribe called without a file", zap.Error(err))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "No file uploaded"})
		return
	}

	a.Logger.Info("Audio received",
		zap.String("name", fh.Filename),
		zap.String("type", fh.Header.Get("Content-Type")),
		zap.Int64("size", fh.Size))

	if fh.Size == 0 {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Empty file received"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		a.Logger.Error("Failed to open upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Transcription failed", Details: err.Error()})
		return
	}
	defer f.Close()

	audio := &speech.Audio{Name: fh.Filename, Data: f, Size: fh.Size}
	text, err := a.Transcriber.Transcribe(c.Request.Context(), audio, transcriptionLanguage(c.PostForm("language")))
	switch {
	case errors.Is(err, speech.ErrNoFile):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "No file uploaded"})
	case errors.Is(err, speech.ErrEmptyFile):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Empty file received"})
	case err != nil:
		a.Logger.Error("Transcription failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Transcription failed", Details: err.Error()})
	default:
		c.JSON(http.StatusOK, TranscribeResponse{Text: text})
	}
}

// transcriptionLanguage maps "English"/"Japanese" to ISO codes and passes
// any other value through. Empty means the transcriber's default.
func transcriptionLanguage(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if l := conversation.ParseLanguage(s, ""); l != "" {
		return l.Code()
	}
	return strings.ToLower(s)
}

func (a *Adapter) handleSuggestions(c *gin.Context) {
	lang := conversation.ParseLanguage(c.Query("language"), a.defaultLanguage())
	c.JSON(http.StatusOK, SuggestionsResponse{
		Language:  lang.Code(),
		Greeting:  conversation.Greeting(lang),
		Questions: conversation.Suggestions(lang),
	})
}
