package model

import "time"

// FinancialSnapshot is a point-in-time market view of a listed company.
type FinancialSnapshot struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Industry      string    `json:"industry"`
	CurrentPrice  float64   `json:"current_price"`
	ChangePercent float64   `json:"change_percent"`
	DayHigh       float64   `json:"day_high"`
	DayLow        float64   `json:"day_low"`
	MarketCap     float64   `json:"market_cap"`
	Website       string    `json:"website"`
	LastUpdated   time.Time `json:"last_updated"`
	Error         string    `json:"error,omitempty"`
}

// CompanySnapshot is one collector run for a tracked company.
type CompanySnapshot struct {
	ID          int64               `json:"id,omitempty"`
	Key         string              `json:"key"`
	Company     CompanyRecord       `json:"company"`
	Financials  []FinancialSnapshot `json:"financials"`
	CollectedAt time.Time           `json:"collected_at"`
}
