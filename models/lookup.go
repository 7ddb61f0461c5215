package models

import "time"

// LookupRequest is the payload for POST /api/v1/rank and
// POST /api/v1/sessions/:id/lookups.
//
// No binding tags: empty fields are reported as MISSING_INPUT by the engine
// rather than as a generic binding failure.
type LookupRequest struct {
	Query       string `json:"query"`
	CountryCode string `json:"country_code"`
	Website     string `json:"website"`
}

// OrganicResult is a single non-paid entry of the provider's result list.
type OrganicResult struct {
	Link    string `json:"link"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// RankLookupResult is the outcome of one completed lookup.
type RankLookupResult struct {
	// TargetHost is the normalized website the results were matched against.
	TargetHost string `json:"target_host"`

	// Results is the provider's organic list in rank order. Never nil.
	Results []OrganicResult `json:"results"`

	// MatchedPosition is the 1-based rank of the first result whose host
	// equals TargetHost, or nil when no result matched.
	MatchedPosition *int `json:"matched_position"`
}

// RankResponse is the response for POST /api/v1/rank.
type RankResponse struct {
	Success         bool            `json:"success"`
	Query           string          `json:"query,omitempty"`
	CountryCode     string          `json:"country_code,omitempty"`
	TargetHost      string          `json:"target_host,omitempty"`
	Results         []OrganicResult `json:"results"`
	MatchedPosition *int            `json:"matched_position"`
	TotalResults    int             `json:"total_results"`
	Timing          TimingInfo      `json:"timing"`
	Error           *ErrorDetail    `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent serving a request.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`
}

// LookupStatus is the lifecycle state of a session's lookup slot.
type LookupStatus string

const (
	StatusIdle      LookupStatus = "idle"
	StatusLoading   LookupStatus = "loading"
	StatusSucceeded LookupStatus = "succeeded"
	StatusFailed    LookupStatus = "failed"
)

// LookupState is the observable tuple a presentation layer renders.
type LookupState struct {
	Status          LookupStatus    `json:"status"`
	Sequence        uint64          `json:"sequence"`
	Query           string          `json:"query,omitempty"`
	CountryCode     string          `json:"country_code,omitempty"`
	TargetHost      string          `json:"target_host,omitempty"`
	Results         []OrganicResult `json:"results"`
	MatchedPosition *int            `json:"matched_position"`
	ErrorCode       string          `json:"error_code,omitempty"`
	ErrorMessage    string          `json:"error_message,omitempty"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CreateSessionRequest is the payload for POST /api/v1/sessions.
type CreateSessionRequest struct {
	// CallbackURL receives a signed event for every applied completion.
	CallbackURL string `json:"callback_url,omitempty" binding:"omitempty,url"`
}

// SessionResponse is the response for session endpoints.
type SessionResponse struct {
	Success bool         `json:"success"`
	ID      string       `json:"id,omitempty"`
	State   *LookupState `json:"state,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// SubmitResponse is the 202 response for POST /api/v1/sessions/:id/lookups.
type SubmitResponse struct {
	Success  bool         `json:"success"`
	ID       string       `json:"id"`
	Sequence uint64       `json:"sequence"`
	Status   LookupStatus `json:"status"`
	Error    *ErrorDetail `json:"error,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status          string `json:"status"` // "healthy" or "degraded"
	Uptime          string `json:"uptime"`
	Version         string `json:"version"`
	LocationsLoaded bool   `json:"locations_loaded"`
	LocationCount   int    `json:"location_count"`
	ActiveSessions  int    `json:"active_sessions"`
}
