// Package location holds the country directory used to pick the geo
// parameter of a lookup. The list is fetched once per process from a
// geography provider and filtered in memory as the operator types.
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/use-agent/rankcheck/metrics"
	"github.com/use-agent/rankcheck/models"
)

// Directory is a lazily loaded, process-lifetime set of locations.
// It is safe for concurrent use.
type Directory struct {
	client *http.Client
	url    string

	once      sync.Once
	mu        sync.RWMutex
	locations []models.Location
	loaded    bool
}

// NewDirectory creates a Directory that fetches from url. A nil client
// selects a client with the given timeout.
func NewDirectory(url string, client *http.Client, timeout time.Duration) *Directory {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Directory{client: client, url: url}
}

// NewStaticDirectory creates an already loaded Directory over locs.
func NewStaticDirectory(locs []models.Location) *Directory {
	d := &Directory{locations: locs, loaded: true}
	d.once.Do(func() {})
	return d
}

// Load fetches the location list on the first call and retains it for the
// life of the Directory. Later calls return the retained set without
// fetching. A failed fetch is logged and leaves the set empty; it is not
// retried.
func (d *Directory) Load(ctx context.Context) []models.Location {
	d.once.Do(func() {
		start := time.Now()
		locs, err := Fetch(ctx, d.client, d.url)
		if err != nil {
			slog.Warn("location directory load failed", "url", d.url, "error", err)
			locs = nil
		} else {
			slog.Info("location directory loaded",
				"count", len(locs),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}

		d.mu.Lock()
		d.locations = locs
		d.loaded = true
		d.mu.Unlock()

		metrics.LocationsLoaded.Set(float64(len(locs)))
	})
	return d.Locations()
}

// Loaded reports whether the one-shot load has finished, successfully or not.
func (d *Directory) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}

// Locations returns the retained set. It is empty until Load completes.
func (d *Directory) Locations() []models.Location {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.locations
}

// Filter returns the retained locations whose name contains prefix.
func (d *Directory) Filter(prefix string) []models.Location {
	return Filter(prefix, d.Locations())
}

// Lookup finds a location by its country code, ignoring case.
func (d *Directory) Lookup(code string) (models.Location, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return models.Location{}, false
	}
	for _, loc := range d.Locations() {
		if loc.Code == code {
			return loc, true
		}
	}
	return models.Location{}, false
}

// Filter returns the locations whose name contains prefix case-insensitively,
// in their original order. An empty prefix yields an empty, non-nil slice:
// no input means no suggestions, not every location.
func Filter(prefix string, locs []models.Location) []models.Location {
	out := []models.Location{}
	if prefix == "" {
		return out
	}
	needle := strings.ToLower(prefix)
	for _, loc := range locs {
		if strings.Contains(strings.ToLower(loc.Name), needle) {
			out = append(out, loc)
		}
	}
	return out
}

// country is one element of the geography provider's response.
type country struct {
	CCA2 string `json:"cca2"`
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
}

// Fetch retrieves and decodes the location list from url. Entries without a
// code or a name are skipped.
func Fetch(ctx context.Context, client *http.Client, url string) ([]models.Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("location: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("location: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("location: unexpected status %d", resp.StatusCode)
	}

	const maxBody = 5 << 20
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("location: read body: %w", err)
	}

	var countries []country
	if err := json.Unmarshal(body, &countries); err != nil {
		return nil, fmt.Errorf("location: decode body: %w", err)
	}

	locs := make([]models.Location, 0, len(countries))
	for _, c := range countries {
		code := strings.ToLower(strings.TrimSpace(c.CCA2))
		name := strings.TrimSpace(c.Name.Common)
		if code == "" || name == "" {
			continue
		}
		locs = append(locs, models.Location{Code: code, Name: name})
	}
	return locs, nil
}
