package filter

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

var urlRegex = regexp.MustCompile(`(?i)\bhttps?://[^\s<>]+|\bwww\.[^\s<>]+`)

// ExtractURLs returns every link-looking token of content.
func ExtractURLs(content string) []string {
	return urlRegex.FindAllString(content, -1)
}

// Host returns the lowercase ASCII host of a raw link.
func Host(raw string) string {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(strings.TrimSuffix(parsed.Hostname(), "."))
	if ascii, err := idna.ToASCII(host); err == nil {
		host = ascii
	}
	return host
}

// DomainAllowed reports whether the host of raw, or one of its parent
// domains, is in allowed.
func DomainAllowed(raw string, allowed []string) bool {
	host := Host(raw)
	if host == "" {
		return false
	}
	for _, d := range allowed {
		d = strings.ToLower(strings.TrimSpace(d))
		if ascii, err := idna.ToASCII(d); err == nil {
			d = ascii
		}
		if d != "" && (host == d || strings.HasSuffix(host, "."+d)) {
			return true
		}
	}
	return false
}
