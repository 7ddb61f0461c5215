// Package website canonicalizes operator-entered websites and result links to
// bare hostnames so they can be compared for rank matching.
package website

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// ErrMalformed is returned when a website cannot be reduced to a hostname.
var ErrMalformed = errors.New("website: malformed")

// Normalize reduces raw to a lowercase hostname without scheme, path, port or
// a single leading "www." label. "WWW.Example.com", "https://example.com/path"
// and "example.com" all normalize to "example.com".
func Normalize(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", fmt.Errorf("%w: empty input", ErrMalformed)
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "https://" + s
	}

	host, err := hostname(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrMalformed, raw, err)
	}
	return host, nil
}

// Host extracts the comparable hostname of an absolute result link. It applies
// the same www stripping as Normalize but does not prepend a scheme: links from
// the provider are expected to be absolute.
func Host(link string) (string, error) {
	return hostname(strings.TrimSpace(link))
}

func hostname(s string) (string, error) {
	u, err := url.Parse(s)
	if err != nil {
		return "", err
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", errors.New("no host")
	}
	host, err = toASCII(host)
	if err != nil {
		return "", err
	}
	host = StripWWW(host)
	if host == "" {
		return "", errors.New("no host after www. strip")
	}
	return host, nil
}

// StripWWW removes one leading "www." label.
func StripWWW(host string) string {
	return strings.TrimPrefix(host, "www.")
}

// toASCII converts internationalized hostnames to their punycode form so a
// Unicode spelling and an xn-- spelling of the same host compare equal.
// Pure ASCII hosts pass through unchanged.
func toASCII(host string) (string, error) {
	if isASCII(host) {
		return host, nil
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("idna: %w", err)
	}
	return ascii, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
