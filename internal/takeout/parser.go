// Package takeout extracts YouTube video ids from a watch-history export.
//
// Google Takeout produces either watch-history.json (an array of activity
// entries) or an HTML page of links. Parse classifies the input and returns
// the candidate URLs it found; ExtractIDs reduces them to unique video ids.
package takeout

import (
	"bytes"
	"encoding/json"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Format identifies which parse strategy recognised the input
type Format int

const (
	FormatUnrecognized Format = iota
	FormatJSON
	FormatHTML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatHTML:
		return "html"
	default:
		return "unrecognized"
	}
}

// Result is the outcome of Parse. URLs is empty for FormatUnrecognized.
type Result struct {
	Format Format
	URLs   []string
}

var (
	// videoLinkPattern finds watch or shorts links in arbitrary text.
	videoLinkPattern = regexp.MustCompile(`https://www\.youtube\.com/(?:watch\?v=|shorts/)[A-Za-z0-9_-]{11}[^"'<>\s]*`)

	// videoHrefPattern accepts an anchor target only when it is itself a
	// watch or shorts link, not a redirect that embeds one.
	videoHrefPattern = regexp.MustCompile(`^https://www\.youtube\.com/(?:watch\?v=|shorts/)[A-Za-z0-9_-]{11}`)

	// videoIDPattern pulls the id out of either accepted URL shape.
	videoIDPattern = regexp.MustCompile(`(?:[?&]v=|/shorts/)([A-Za-z0-9_-]{11})`)

	// ValidID matches a bare YouTube video id.
	ValidID = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

type historyEntry struct {
	TitleURL string `json:"titleUrl"`
}

// Parse classifies data as a JSON history array or an HTML/text history and
// collects the candidate URLs. A JSON array is FormatJSON even when none of
// its entries carries a URL.
func Parse(data []byte) Result {
	if urls, ok := parseJSON(data); ok {
		return Result{Format: FormatJSON, URLs: urls}
	}

	if urls := parseHTML(data); len(urls) > 0 {
		return Result{Format: FormatHTML, URLs: urls}
	}

	return Result{Format: FormatUnrecognized}
}

func parseJSON(data []byte) ([]string, bool) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}

	var entries []historyEntry
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, false
	}

	urls := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.TitleURL != "" {
			urls = append(urls, e.TitleURL)
		}
	}
	return urls, true
}

// parseHTML walks anchor tags first; documents without any anchors
// (plain-text dumps, mangled markup) are scanned with videoLinkPattern.
func parseHTML(data []byte) []string {
	var (
		urls    []string
		anchors int
	)

	z := html.NewTokenizer(bytes.NewReader(data))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				urls = nil
			}
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if string(name) != "a" || !hasAttr {
			continue
		}
		for {
			key, val, more := z.TagAttr()
			if string(key) == "href" {
				anchors++
				if videoHrefPattern.Match(val) {
					urls = append(urls, string(val))
				}
			}
			if !more {
				break
			}
		}
	}

	if len(urls) > 0 || anchors > 0 {
		return urls
	}

	return videoLinkPattern.FindAllString(string(data), -1)
}

// ExtractIDs returns the unique video ids found in urls, in first-seen order.
// URLs that are not watch or shorts links are ignored.
func ExtractIDs(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	ids := make([]string, 0, len(urls))

	for _, u := range urls {
		m := videoIDPattern.FindStringSubmatch(strings.TrimSpace(u))
		if m == nil {
			continue
		}
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		ids = append(ids, m[1])
	}

	return ids
}

// ShortsURL is the canonical form a video is stored under
func ShortsURL(id string) string {
	return "https://www.youtube.com/shorts/" + id
}
