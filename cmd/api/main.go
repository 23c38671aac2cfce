package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"rivalsense/internal/analysis"
	"rivalsense/internal/config"
	"rivalsense/internal/handler"
	"rivalsense/internal/service"
)

func main() {

	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	lifecycle := service.NewLifecycle(cfg.LLM, nil)

	// Initialize once at startup so a missing key shows up in the logs early.
	// The service still starts and answers 503 on the analysis endpoints.
	if _, err := lifecycle.Client(); err != nil {
		slog.Warn("starting without AI client", "error", err)
	}

	r := newRouter(cfg, lifecycle)

	slog.Info("starting server", "port", cfg.Port, "provider", cfg.LLM.Provider)

	err = r.Run(":" + cfg.Port)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}

func newRouter(cfg *config.Config, clients handler.ClientProvider) *gin.Engine {
	analysisHandler := handler.NewAnalysisHandler(clients, analysis.Options{
		Timeout:  cfg.LLM.Timeout,
		Language: cfg.LLM.Language,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handler.RequestLogger())

	allowedOrigins := cfg.AllowedOrigins()
	slog.Info("cors allowed origins", "origins", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", handler.RequestIDHeader},
		ExposeHeaders: []string{handler.RequestIDHeader},
	}))

	r.GET("/", analysisHandler.GetRoot)
	r.GET("/health", analysisHandler.GetHealth)

	api := r.Group("/api/ai")
	api.POST("/analyze-sentiment", analysisHandler.AnalyzeSentiment)
	api.POST("/generate-insights", analysisHandler.GenerateInsights)
	api.POST("/full-analysis", analysisHandler.FullAnalysis)

	return r
}
