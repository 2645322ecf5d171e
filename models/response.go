package models

// ExportResponse is the response for GET /api/v1/users/:username/games.
type ExportResponse struct {
	// Success indicates whether the export completed without errors.
	Success bool `json:"success"`

	Username   string `json:"username,omitempty"`
	ProfileURL string `json:"profile_url,omitempty"`

	// LastPage is the page number at which pagination stopped.
	LastPage int `json:"last_page,omitempty"`

	// StopReason is one of "empty_page", "duplicate_page", "max_pages", "canceled".
	StopReason StopReason `json:"stop_reason,omitempty"`

	// Count is len(Records).
	Count   int          `json:"count"`
	Records []GameRecord `json:"records,omitempty"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit" or "miss".
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status       string `json:"status"`
	Uptime       string `json:"uptime"`
	Engine       string `json:"engine"`
	CacheEntries int    `json:"cache_entries"`
	Version      string `json:"version"`
}

// NewExportResponse wraps a successful ExportResult.
func NewExportResponse(res *ExportResult) ExportResponse {
	return ExportResponse{
		Success:    true,
		Username:   res.Username,
		ProfileURL: res.ProfileURL,
		LastPage:   res.LastPage,
		StopReason: res.StopReason,
		Count:      len(res.Records),
		Records:    res.Records,
	}
}
