package twitter

import (
	"strconv"
	"strings"

	"github.com/iconidentify/xresolve/internal/domain"
)

// statusPrefixLen is the length of "https://twitter.com/", skipped before the
// path is inspected.
const statusPrefixLen = 20

var spacesMarkers = []string{"twitter.com/i/spaces/", "x.com/i/spaces/"}

// ExtractTweetID parses a post identifier from a status URL or a bare numeric id.
// ok is false for live-audio spaces, unparseable input and a zero id.
//
// Accepted forms include:
//
//	https://twitter.com/user/status/1234567890
//	https://x.com/user/status/1234567890?s=20
//	1234567890
func ExtractTweetID(link string) (id domain.TweetID, ok bool) {
	link = strings.TrimSpace(link)

	if n, err := strconv.ParseUint(link, 10, 64); err == nil {
		return domain.TweetID(n), n > 0
	}

	for _, marker := range spacesMarkers {
		if strings.Contains(link, marker) {
			return 0, false
		}
	}
	if len(link) <= statusPrefixLen {
		return 0, false
	}

	path := link[statusPrefixLen:]
	last := path[strings.LastIndex(path, "/")+1:]
	if i := strings.IndexByte(last, '?'); i >= 0 {
		last = last[:i]
	}

	n, err := strconv.ParseUint(last, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return domain.TweetID(n), true
}
