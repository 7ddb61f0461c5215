package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/rankcheck/models"
)

func newLocationsServer(t *testing.T, locs []models.Location) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		out := []models.Location{}
		for _, l := range locs {
			if q != "" && strings.Contains(strings.ToLower(l.Name), strings.ToLower(q)) {
				out = append(out, l)
			}
		}
		_ = json.NewEncoder(w).Encode(models.LocationsResponse{Success: true, Locations: out})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveCountry(t *testing.T) {
	srv := newLocationsServer(t, []models.Location{
		{Code: "ne", Name: "Niger"},
		{Code: "ng", Name: "Nigeria"},
		{Code: "de", Name: "Germany"},
	})
	api := newAPIClient(srv.URL)
	ctx := context.Background()

	code, err := api.resolveCountry(ctx, "DE")
	require.NoError(t, err)
	assert.Equal(t, "de", code)

	code, err = api.resolveCountry(ctx, "germ")
	require.NoError(t, err)
	assert.Equal(t, "de", code)

	code, err = api.resolveCountry(ctx, "niger")
	require.NoError(t, err)
	assert.Equal(t, "ne", code, "exact name wins over partial matches")

	_, err = api.resolveCountry(ctx, "nig")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = api.resolveCountry(ctx, "atlantis")
	assert.ErrorContains(t, err, "no country matches")
}

func TestFormatRank(t *testing.T) {
	pos := 2
	out := formatRank(&models.RankResponse{
		Success:     true,
		Query:       "widgets",
		CountryCode: "de",
		TargetHost:  "target.com",
		Results: []models.OrganicResult{
			{Link: "https://other.com", Title: "Other"},
			{Link: "https://target.com", Title: "Target"},
		},
		MatchedPosition: &pos,
		TotalResults:    2,
	})
	assert.Contains(t, out, "target.com is in position 2")
	assert.Contains(t, out, "* 2. Target")

	out = formatRank(&models.RankResponse{Success: true, Query: "q", CountryCode: "us", TargetHost: "x.com", Results: []models.OrganicResult{}})
	assert.Contains(t, out, "was not found in the first 0 results")
	assert.Contains(t, out, "No results found for this query.")
}
