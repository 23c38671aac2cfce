package handler

import "rivalsense/internal/model"

const defaultAnalysisType = "full"

type CompanyAnalysisRequest struct {
	CompanyData  *model.CompanyRecord `json:"company_data" binding:"required"`
	AnalysisType string               `json:"analysis_type"`
}

type RootResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Version string `json:"version"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	AIService string `json:"ai_service"`
	Model     string `json:"model,omitempty"`
}

type SentimentResponse struct {
	Success bool                    `json:"success"`
	Data    []model.SentimentResult `json:"data"`
	Count   int                     `json:"count"`
}

type InsightsResponse struct {
	Success bool                `json:"success"`
	Data    model.InsightReport `json:"data"`
}

type FullAnalysisResponse struct {
	Success bool               `json:"success"`
	Data    model.FullAnalysis `json:"data"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
