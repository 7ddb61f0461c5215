// Package rank finds where a website appears in the organic results the
// search-results provider returns for a query and country.
package rank

import (
	"context"
	"log/slog"
	"strings"

	"github.com/use-agent/rankcheck/metrics"
	"github.com/use-agent/rankcheck/models"
	"github.com/use-agent/rankcheck/website"
)

// Searcher retrieves the ranked organic results for a query in a country.
// serp.Client is the production implementation.
type Searcher interface {
	Search(ctx context.Context, query, countryCode string) ([]models.OrganicResult, error)
}

// Engine runs rank lookups. It holds no state between calls: identical
// inputs always cause a fresh provider request.
type Engine struct {
	searcher Searcher
}

// NewEngine creates an Engine that retrieves results through s.
func NewEngine(s Searcher) *Engine {
	return &Engine{searcher: s}
}

// Target is a validated lookup input.
type Target struct {
	Query       string
	CountryCode string
	Host        string
}

// Validate checks the lookup preconditions and normalizes the website. It
// never touches the network. Errors are MISSING_INPUT or MALFORMED_WEBSITE.
func Validate(req models.LookupRequest) (Target, error) {
	query := strings.TrimSpace(req.Query)
	country := strings.ToLower(strings.TrimSpace(req.CountryCode))
	if query == "" || country == "" {
		return Target{}, models.NewLookupError(models.ErrCodeMissingInput, models.MsgMissingInput, nil)
	}

	host, err := website.Normalize(req.Website)
	if err != nil {
		return Target{}, models.NewLookupError(models.ErrCodeMalformedWebsite, models.MsgMalformedWebsite, err)
	}
	return Target{Query: query, CountryCode: country, Host: host}, nil
}

// Lookup validates req, issues exactly one provider request and returns the
// result list with the 1-based position of the first result whose host equals
// the normalized website. A missing match is a normal outcome with a nil
// MatchedPosition.
func (e *Engine) Lookup(ctx context.Context, req models.LookupRequest) (*models.RankLookupResult, error) {
	target, err := Validate(req)
	if err != nil {
		metrics.RecordLookup(Outcome(err), nil)
		return nil, err
	}

	results, err := e.searcher.Search(ctx, target.Query, target.CountryCode)
	if err != nil {
		if !models.IsCode(err, models.ErrCodeProviderUnavailable) {
			err = models.NewLookupError(models.ErrCodeProviderUnavailable, models.MsgProviderUnavailable, err)
		}
		slog.Warn("rank lookup failed",
			"query", target.Query,
			"country", target.CountryCode,
			"error", err,
		)
		metrics.RecordLookup(Outcome(err), nil)
		return nil, err
	}
	if results == nil {
		results = []models.OrganicResult{}
	}

	pos := MatchPosition(results, target.Host)
	if pos != nil {
		metrics.RecordLookup(metrics.OutcomeMatched, pos)
	} else {
		metrics.RecordLookup(metrics.OutcomeNotFound, nil)
	}

	return &models.RankLookupResult{
		TargetHost:      target.Host,
		Results:         results,
		MatchedPosition: pos,
	}, nil
}

// MatchPosition returns the 1-based index of the first result whose link host,
// with one leading "www." removed, equals host exactly. Subdomains and
// suffixes do not match. Results with unparsable links are skipped.
func MatchPosition(results []models.OrganicResult, host string) *int {
	for i, r := range results {
		h, err := website.Host(r.Link)
		if err != nil {
			continue
		}
		if h == host {
			pos := i + 1
			return &pos
		}
	}
	return nil
}

// Outcome maps a lookup error to its metrics outcome label.
func Outcome(err error) string {
	switch models.AsLookupError(err).Code {
	case models.ErrCodeMissingInput:
		return metrics.OutcomeMissing
	case models.ErrCodeMalformedWebsite:
		return metrics.OutcomeMalformed
	case models.ErrCodeProviderUnavailable:
		return metrics.OutcomeProvider
	default:
		return metrics.OutcomeError
	}
}
