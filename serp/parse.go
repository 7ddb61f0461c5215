package serp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/rankcheck/models"
)

// ParseOrganicResults decodes the organic_results list of a provider body.
//
// The body must be JSON; anything else is an error. A missing field, a
// non-list field or a non-object body all yield zero results. List entries
// keep their index even when malformed, so positions stay aligned with the
// provider's ranking; a malformed entry simply never matches.
func ParseOrganicResults(body []byte) ([]models.OrganicResult, error) {
	if !json.Valid(body) {
		return nil, fmt.Errorf("serp: response body is not JSON")
	}

	results := []models.OrganicResult{}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return results, nil
	}
	raw, ok := envelope["organic_results"]
	if !ok {
		return results, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return results, nil
	}

	for _, e := range entries {
		var entry organicEntry
		_ = json.Unmarshal(e, &entry)
		results = append(results, models.OrganicResult{
			Link:    string(entry.Link),
			Title:   plainText(string(entry.Title)),
			Snippet: plainText(string(entry.Snippet)),
		})
	}
	return results, nil
}

// organicEntry is one element of organic_results. Fields of the wrong JSON
// type decode as empty strings.
type organicEntry struct {
	Link    looseString `json:"link"`
	Title   looseString `json:"title"`
	Snippet looseString `json:"snippet"`
}

type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err == nil {
		*s = looseString(v)
	}
	return nil
}

// plainText strips markup and decodes HTML entities the provider sometimes
// leaves in titles and snippets.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

// providerError extracts the provider's "error" message from a failed
// response for logging.
func providerError(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	const limit = 200
	body = bytes.TrimSpace(body)
	if len(body) > limit {
		body = body[:limit]
	}
	return string(body)
}
