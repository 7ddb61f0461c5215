// Package serp is a client for the search-results provider. It issues one
// search request per call and decodes the organic results in rank order.
package serp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/use-agent/rankcheck/config"
	"github.com/use-agent/rankcheck/metrics"
	"github.com/use-agent/rankcheck/models"
)

// ErrNoAPIKey is wrapped into PROVIDER_UNAVAILABLE when no key is configured.
var ErrNoAPIKey = errors.New("serp: provider API key is not configured")

// Client queries the provider's search endpoint. The API key is injected from
// configuration and only ever placed on outbound requests.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	engine     string
	language   string
}

// NewClient creates a Client. A nil httpClient selects one with cfg.Timeout.
func NewClient(cfg config.ProviderConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		engine:     cfg.Engine,
		language:   cfg.Language,
	}
}

// Search fetches the first page of organic results for query in the given
// country. Transport failures and non-2xx responses are reported as
// PROVIDER_UNAVAILABLE. A body without a usable organic_results list yields
// zero results, not an error.
func (c *Client) Search(ctx context.Context, query, countryCode string) ([]models.OrganicResult, error) {
	if c.apiKey == "" {
		return nil, unavailable(ErrNoAPIKey)
	}

	reqURL, err := c.searchURL(query, countryCode)
	if err != nil {
		return nil, unavailable(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, unavailable(fmt.Errorf("serp: build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "rankcheck/1.0")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ProviderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		// url.Error embeds the full URL, which carries the API key.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, unavailable(fmt.Errorf("serp: do request: %w", err))
	}
	defer resp.Body.Close()

	const maxBody = 10 << 20
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, unavailable(fmt.Errorf("serp: read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, unavailable(fmt.Errorf("serp: provider returned status %d: %s", resp.StatusCode, providerError(body)))
	}

	results, err := ParseOrganicResults(body)
	if err != nil {
		return nil, unavailable(err)
	}

	slog.Debug("provider search completed",
		"query", query,
		"country", countryCode,
		"results", len(results),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return results, nil
}

// searchURL builds the provider request keyed by query and country.
func (c *Client) searchURL(query, countryCode string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("serp: parse base url: %w", err)
	}
	q := u.Query()
	if c.engine != "" {
		q.Set("engine", c.engine)
	}
	q.Set("api_key", c.apiKey)
	q.Set("q", query)
	q.Set("gl", countryCode)
	if c.language != "" {
		q.Set("hl", c.language)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func unavailable(err error) *models.LookupError {
	return models.NewLookupError(models.ErrCodeProviderUnavailable, models.MsgProviderUnavailable, err)
}
