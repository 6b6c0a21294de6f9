// Package youtube extracts video identifiers from the URL shapes YouTube
// serves: watch links, youtu.be short links, embeds, /v/ and shorts.
package youtube

import "regexp"

var idPattern = regexp.MustCompile(`(?:youtu\.be/|youtube\.com/(?:watch\?v=|embed/|v/|shorts/))([a-zA-Z0-9_-]{11})`)

// ExtractVideoID returns the 11-character video ID embedded in url.
// A URL without one is a normal outcome (uploaded files have no URL),
// so absence is reported as ok=false rather than an error.
func ExtractVideoID(url string) (string, bool) {
	m := idPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}
