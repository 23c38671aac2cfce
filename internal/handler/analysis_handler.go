package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"rivalsense/internal/analysis"
	"rivalsense/internal/model"
	"rivalsense/internal/service"
	"rivalsense/pkg/llm"
)

const (
	serviceName    = "Competitor AI Analysis Service"
	serviceVersion = "1.0.0"

	unavailableMessage = "AI service not available - check API key"
)

type ClientProvider interface {
	Client() (llm.Completer, error)
	State() service.State
}

type AnalysisHandler struct {
	clients ClientProvider
	opts    analysis.Options

	mu       sync.Mutex
	analyzer *analysis.Analyzer
	client   llm.Completer
}

func NewAnalysisHandler(clients ClientProvider, opts analysis.Options) *AnalysisHandler {
	return &AnalysisHandler{clients: clients, opts: opts}
}

func (h *AnalysisHandler) GetRoot(c *gin.Context) {
	c.JSON(http.StatusOK, RootResponse{
		Message: serviceName,
		Status:  "running",
		Version: serviceVersion,
	})
}

func (h *AnalysisHandler) GetHealth(c *gin.Context) {
	client, err := h.clients.Client()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:    "unhealthy",
			AIService: h.clients.State().String(),
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		AIService: h.clients.State().String(),
		Model:     client.Model(),
	})
}

func (h *AnalysisHandler) AnalyzeSentiment(c *gin.Context) {
	defer recoverOperation(c, "Analysis")

	var items []model.NewsItem
	if err := c.ShouldBindJSON(&items); err != nil {
		badRequest(c, err)
		return
	}

	analyzer, ok := h.resolveAnalyzer(c)
	if !ok {
		return
	}

	results := analyzer.ClassifySentiment(c.Request.Context(), items)

	c.JSON(http.StatusOK, SentimentResponse{
		Success: true,
		Data:    results,
		Count:   len(results),
	})
}

func (h *AnalysisHandler) GenerateInsights(c *gin.Context) {
	defer recoverOperation(c, "Insights generation")

	req, ok := bindCompanyRequest(c)
	if !ok {
		return
	}

	analyzer, ok := h.resolveAnalyzer(c)
	if !ok {
		return
	}

	report := analyzer.GenerateInsights(c.Request.Context(), *req.CompanyData)

	c.JSON(http.StatusOK, InsightsResponse{Success: true, Data: report})
}

func (h *AnalysisHandler) FullAnalysis(c *gin.Context) {
	defer recoverOperation(c, "Full analysis")

	req, ok := bindCompanyRequest(c)
	if !ok {
		return
	}

	analyzer, ok := h.resolveAnalyzer(c)
	if !ok {
		return
	}

	result := analyzer.FullAnalysis(c.Request.Context(), *req.CompanyData)

	c.JSON(http.StatusOK, FullAnalysisResponse{Success: true, Data: result})
}

// resolveAnalyzer resolves the shared client and writes a 503 when there is none.
func (h *AnalysisHandler) resolveAnalyzer(c *gin.Context) (*analysis.Analyzer, bool) {
	client, err := h.clients.Client()
	if err != nil {
		var unavailable *service.UnavailableError
		if errors.As(err, &unavailable) {
			slog.Warn("AI service unavailable", "reason", unavailable.Reason, "request_id", requestID(c))
		} else {
			slog.Error("error resolving AI client", "error", err, "request_id", requestID(c))
		}
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: unavailableMessage})
		return nil, false
	}

	return h.analyzerFor(client), true
}

// analyzerFor returns the analyzer bound to client, building it on first use.
func (h *AnalysisHandler) analyzerFor(client llm.Completer) *analysis.Analyzer {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.analyzer == nil || h.client != client {
		h.analyzer = analysis.NewAnalyzer(client, h.opts)
		h.client = client
	}
	return h.analyzer
}

func bindCompanyRequest(c *gin.Context) (*CompanyAnalysisRequest, bool) {
	var req CompanyAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return nil, false
	}

	if req.AnalysisType == "" {
		req.AnalysisType = defaultAnalysisType
	}

	slog.Info("company analysis requested",
		"company", req.CompanyData.Name,
		"analysis_type", req.AnalysisType,
		"news", len(req.CompanyData.News),
		"competitors", req.CompanyData.Competitors.Len(),
		"request_id", requestID(c),
	)

	return &req, true
}

func badRequest(c *gin.Context, err error) {
	slog.Warn("invalid request body", "path", c.FullPath(), "error", err, "request_id", requestID(c))
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: fmt.Sprintf("Invalid request body: %v", err)})
}

// recoverOperation turns a panic inside an operation into a 500 response.
func recoverOperation(c *gin.Context, op string) {
	r := recover()
	if r == nil {
		return
	}

	slog.Error("operation panicked", "operation", op, "panic", r, "request_id", requestID(c))
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error: fmt.Sprintf("%s failed: %v", op, r),
	})
}
