package rank

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/rankcheck/config"
	"github.com/use-agent/rankcheck/models"
	"github.com/use-agent/rankcheck/serp"
)

// stubSearcher returns canned results and counts calls.
type stubSearcher struct {
	results []models.OrganicResult
	err     error
	calls   atomic.Int32
	last    [2]string
}

func (s *stubSearcher) Search(ctx context.Context, query, countryCode string) ([]models.OrganicResult, error) {
	s.calls.Add(1)
	s.last = [2]string{query, countryCode}
	return s.results, s.err
}

func TestLookup_MissingInputIssuesNoRequest(t *testing.T) {
	tests := []struct {
		name string
		req  models.LookupRequest
	}{
		{"empty query", models.LookupRequest{CountryCode: "us", Website: "target.com"}},
		{"blank query", models.LookupRequest{Query: "   ", CountryCode: "us", Website: "target.com"}},
		{"empty country", models.LookupRequest{Query: "shoes", Website: "target.com"}},
		{"both empty", models.LookupRequest{Website: "target.com"}},
		{"missing input wins over bad website", models.LookupRequest{Website: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &stubSearcher{}
			res, err := NewEngine(s).Lookup(context.Background(), tt.req)
			assert.Nil(t, res)
			assert.True(t, models.IsCode(err, models.ErrCodeMissingInput), "err=%v", err)
			assert.Equal(t, models.MsgMissingInput, models.AsLookupError(err).Message)
			assert.Zero(t, s.calls.Load())
		})
	}
}

func TestLookup_MissingInputOverHTTPTransport(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"organic_results":[]}`))
	}))
	defer srv.Close()

	client := serp.NewClient(config.ProviderConfig{APIKey: "k", BaseURL: srv.URL, Timeout: time.Second}, srv.Client())
	_, err := NewEngine(client).Lookup(context.Background(), models.LookupRequest{Query: "", CountryCode: "us", Website: "a.com"})
	assert.True(t, models.IsCode(err, models.ErrCodeMissingInput))
	assert.Zero(t, calls.Load())
}

func TestLookup_MalformedWebsiteIssuesNoRequest(t *testing.T) {
	for _, raw := range []string{"", "  ", "exa mple.com", "https://", "www.", "WWW.", "https://www./path"} {
		s := &stubSearcher{}
		_, err := NewEngine(s).Lookup(context.Background(), models.LookupRequest{Query: "q", CountryCode: "us", Website: raw})
		assert.True(t, models.IsCode(err, models.ErrCodeMalformedWebsite), "raw=%q err=%v", raw, err)
		assert.Zero(t, s.calls.Load(), "raw=%q", raw)
	}
}

func TestLookup_MatchesSecondResult(t *testing.T) {
	s := &stubSearcher{results: []models.OrganicResult{
		{Link: "https://other.com"},
		{Link: "https://www.target.com/x"},
	}}

	res, err := NewEngine(s).Lookup(context.Background(), models.LookupRequest{
		Query: "widgets", CountryCode: "GB", Website: "target.com",
	})
	require.NoError(t, err)
	require.NotNil(t, res.MatchedPosition)
	assert.Equal(t, 2, *res.MatchedPosition)
	assert.Equal(t, "target.com", res.TargetHost)
	assert.Len(t, res.Results, 2)
	assert.Equal(t, [2]string{"widgets", "gb"}, s.last)
	assert.Equal(t, int32(1), s.calls.Load())
}

func TestLookup_NoMatchKeepsAllResults(t *testing.T) {
	results := []models.OrganicResult{
		{Link: "https://a.com", Title: "A"},
		{Link: "https://b.com", Title: "B"},
		{Link: "https://shop.target.com", Title: "subdomain is not a match"},
		{Link: "https://target.com.evil.io", Title: "suffix is not a match"},
	}
	s := &stubSearcher{results: results}

	res, err := NewEngine(s).Lookup(context.Background(), models.LookupRequest{
		Query: "q", CountryCode: "us", Website: "https://www.target.com",
	})
	require.NoError(t, err)
	assert.Nil(t, res.MatchedPosition)
	assert.Equal(t, results, res.Results)
}

func TestLookup_ZeroResultsIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"search_metadata":{"status":"Success"}}`))
	}))
	defer srv.Close()

	client := serp.NewClient(config.ProviderConfig{APIKey: "k", BaseURL: srv.URL, Timeout: time.Second}, srv.Client())
	res, err := NewEngine(client).Lookup(context.Background(), models.LookupRequest{
		Query: "q", CountryCode: "us", Website: "target.com",
	})
	require.NoError(t, err)
	assert.NotNil(t, res.Results)
	assert.Empty(t, res.Results)
	assert.Nil(t, res.MatchedPosition)
}

func TestLookup_ProviderFailure(t *testing.T) {
	s := &stubSearcher{err: errors.New("boom")}
	res, err := NewEngine(s).Lookup(context.Background(), models.LookupRequest{
		Query: "q", CountryCode: "us", Website: "target.com",
	})
	assert.Nil(t, res)
	assert.True(t, models.IsCode(err, models.ErrCodeProviderUnavailable))
	assert.Equal(t, models.MsgProviderUnavailable, models.AsLookupError(err).Message)
}

func TestLookup_NoCachingBetweenCalls(t *testing.T) {
	s := &stubSearcher{results: []models.OrganicResult{{Link: "https://target.com"}}}
	e := NewEngine(s)
	req := models.LookupRequest{Query: "q", CountryCode: "us", Website: "target.com"}

	for i := 0; i < 3; i++ {
		_, err := e.Lookup(context.Background(), req)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), s.calls.Load())
}

func TestLookup_WWWOnlyWebsiteNeverMatches(t *testing.T) {
	s := &stubSearcher{results: []models.OrganicResult{
		{Link: "https://other.com"},
		{Link: "https://www./x"},
	}}
	res, err := NewEngine(s).Lookup(context.Background(), models.LookupRequest{
		Query: "q", CountryCode: "us", Website: "www.",
	})
	assert.Nil(t, res)
	assert.True(t, models.IsCode(err, models.ErrCodeMalformedWebsite))
	assert.Zero(t, s.calls.Load())
	assert.Nil(t, MatchPosition(s.results, ""))
}

func TestMatchPosition_FirstMatchWins(t *testing.T) {
	results := []models.OrganicResult{
		{Link: "not a url"},
		{Link: ""},
		{Link: "https://target.com/a"},
		{Link: "https://www.target.com/b"},
	}
	pos := MatchPosition(results, "target.com")
	require.NotNil(t, pos)
	assert.Equal(t, 3, *pos)

	assert.Nil(t, MatchPosition(nil, "target.com"))
}

func TestValidate(t *testing.T) {
	target, err := Validate(models.LookupRequest{Query: " running shoes ", CountryCode: " DE ", Website: "WWW.Example.com"})
	require.NoError(t, err)
	assert.Equal(t, Target{Query: "running shoes", CountryCode: "de", Host: "example.com"}, target)
}
