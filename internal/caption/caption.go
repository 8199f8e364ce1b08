// Package caption turns raw post text into a delivery caption.
package caption

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/iconidentify/xresolve/internal/domain"
)

// ShortLinkPattern matches t.co redirect tokens embedded in post text.
var ShortLinkPattern = regexp.MustCompile(`https://t\.co/\w+\b`)

// Composer rewrites short links in post text and appends an author credit.
type Composer struct {
	pattern *regexp.Regexp
}

// NewComposer returns a Composer using pattern, or ShortLinkPattern when nil.
func NewComposer(pattern *regexp.Regexp) *Composer {
	if pattern == nil {
		pattern = ShortLinkPattern
	}
	return &Composer{pattern: pattern}
}

// Body rewrites the short links of text.
//
// Upstream appends a short link to the last attachment. When the post has
// media that trailing link is removed and the one before it, if any, is moved
// to its own line. Without media the trailing link is a real link and is moved
// to its own line.
func (c *Composer) Body(text string, hasMedia bool) string {
	links := c.pattern.FindAllString(text, -1)
	if len(links) == 0 {
		return text
	}

	last := links[len(links)-1]
	if !hasMedia {
		return onOwnLine(text, last)
	}

	body := strings.ReplaceAll(text, last, "")
	if len(links) > 1 {
		body = onOwnLine(body, links[len(links)-2])
	}
	return body
}

// Compose builds the full caption: the rewritten body followed by a blank
// line and an HTML credit linking the post.
func (c *Composer) Compose(text string, hasMedia bool, author domain.Author, id domain.TweetID) string {
	return c.Body(text, hasMedia) + " \n\n" + Credit(author, id)
}

// Credit renders the HTML anchor crediting the author.
func Credit(author domain.Author, id domain.TweetID) string {
	return fmt.Sprintf("<a href='%s'>&#x1F464 %s</a>", domain.StatusURL(author.Username, id), author.Name)
}

func onOwnLine(text, link string) string {
	return strings.ReplaceAll(text, link, "\n"+link)
}
