package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/use-agent/rankcheck/models"
)

// apiClient calls the rankcheck HTTP API.
type apiClient struct {
	baseURL string
	client  *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 90 * time.Second},
	}
}

// rank runs a synchronous lookup. API-level failures come back as a
// RankResponse with Success=false and Error set.
func (a *apiClient) rank(ctx context.Context, req models.LookupRequest) (*models.RankResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/v1/rank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var resp models.RankResponse
	if err := a.do(httpReq, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// locations filters the country directory by name.
func (a *apiClient) locations(ctx context.Context, q string) ([]models.Location, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/v1/locations?q="+url.QueryEscape(q), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var resp models.LocationsResponse
	if err := a.do(httpReq, &resp); err != nil {
		return nil, err
	}
	return resp.Locations, nil
}

func (a *apiClient) do(req *http.Request, out any) error {
	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}

// resolveCountry turns a country code or name into a code. Two-letter input
// is taken as a code. Otherwise the directory must yield exactly one match,
// or one whose name equals the input.
func (a *apiClient) resolveCountry(ctx context.Context, country string) (string, error) {
	country = strings.TrimSpace(country)
	if len(country) == 2 {
		return strings.ToLower(country), nil
	}

	locs, err := a.locations(ctx, country)
	if err != nil {
		return "", err
	}
	for _, loc := range locs {
		if strings.EqualFold(loc.Name, country) {
			return loc.Code, nil
		}
	}
	switch len(locs) {
	case 0:
		return "", fmt.Errorf("no country matches %q", country)
	case 1:
		return locs[0].Code, nil
	}
	names := make([]string, 0, len(locs))
	for _, loc := range locs {
		names = append(names, fmt.Sprintf("%s (%s)", loc.Name, loc.Code))
	}
	return "", fmt.Errorf("%q is ambiguous: %s", country, strings.Join(names, ", "))
}
