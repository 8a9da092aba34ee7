package httpds

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// nameCleaner replaces sequences of non-alphanumeric characters with "_".
var nameCleaner = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// HashString returns a stable SHA1 hex digest of s. It is useful for generating
// deterministic identifiers when a natural key is not available.
func HashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}

// NameFromURL derives a job name from a download URL. It prefers the last
// path segment without its extension ("/exports/people.json" -> "people"),
// then the cleaned query string, and falls back to a short hash of the whole
// URL when neither yields anything usable.
func NameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "url_" + HashString(rawURL)[:12]
	}

	base := path.Base(u.Path)
	base = strings.TrimSuffix(base, path.Ext(base))
	if clean := strings.Trim(nameCleaner.ReplaceAllString(base, "_"), "_"); clean != "" {
		return clean
	}
	if clean := strings.Trim(nameCleaner.ReplaceAllString(u.RawQuery, "_"), "_"); clean != "" {
		return clean
	}
	return "url_" + HashString(rawURL)[:12]
}

// PathFromURL returns the path component of rawURL, or rawURL itself when it
// does not parse. The import layer infers the format from its extension.
func PathFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}
