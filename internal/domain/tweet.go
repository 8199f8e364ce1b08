package domain

import (
	"fmt"
	"strconv"
)

// TweetID is the numeric identifier of a post.
type TweetID uint64

// String returns the decimal representation of the TweetID.
func (id TweetID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseTweetID parses a decimal id as sent by the upstream API.
func ParseTweetID(s string) (TweetID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse tweet id %q: %w", s, err)
	}
	return TweetID(n), nil
}

// MediaKind represents the type of an attachment.
type MediaKind string

const (
	MediaKindPhoto         MediaKind = "photo"
	MediaKindVideo         MediaKind = "video"
	MediaKindAnimatedImage MediaKind = "animated_gif"
)

// Variant is one encoding of a video or animated attachment.
// A nil BitRate marks a manifest or alternative stream that is not ranked.
type Variant struct {
	BitRate     *int   `json:"bit_rate,omitempty"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

// HasBitRate reports whether the variant takes part in bit rate ranking.
func (v Variant) HasBitRate() bool {
	return v.BitRate != nil
}

// Attachment is an upstream media descriptor before selection.
type Attachment struct {
	Kind       MediaKind
	URL        string // photos only
	PreviewURL string // videos and animated images
	Variants   []Variant
}

// ResolvedMedia is the single representative asset chosen for an attachment.
type ResolvedMedia struct {
	URL          string    `json:"url"`
	Kind         MediaKind `json:"kind"`
	ThumbnailURL string    `json:"thumbnail_url"`
}

// Author is the display identity of a post author.
type Author struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Tweet is the upstream post payload, already mapped out of the wire schema.
type Tweet struct {
	ID             TweetID
	Text           *string // nil when upstream sent no text
	ConversationID uint64
	Author         Author
	Attachments    []Attachment
}

// ReferenceRepliedTo is the reference kind linking a reply to its parent.
const ReferenceRepliedTo = "replied_to"

// Reference links a post to another post.
type Reference struct {
	Type string
	ID   TweetID
}

// SearchResult is one post returned by a conversation search.
type SearchResult struct {
	ID         TweetID
	References []Reference
}

// RepliesTo reports whether the post carries a replied_to reference to parent.
func (r SearchResult) RepliesTo(parent TweetID) bool {
	for _, ref := range r.References {
		if ref.Type == ReferenceRepliedTo && ref.ID == parent {
			return true
		}
	}
	return false
}

// Bundle is the normalized result of resolving a post reference.
type Bundle struct {
	Caption        string          `json:"caption"`
	Media          []ResolvedMedia `json:"media"`
	AuthorName     string          `json:"author_name"`
	AuthorHandle   string          `json:"author_handle"`
	PostID         TweetID         `json:"post_id,string"`
	URL            string          `json:"url"`
	AllVariants    []Variant       `json:"all_variants"`
	ConversationID uint64          `json:"conversation_id,string"`
	AuthorID       uint64          `json:"author_id,string"`
	ThreadCount    uint            `json:"thread_count"`
	Cursor         uint8           `json:"cursor"`
}

// HasMedia returns true if the bundle carries any selected media.
func (b *Bundle) HasMedia() bool {
	return len(b.Media) > 0
}

// HasThread returns true if the post belongs to a self-reply thread.
func (b *Bundle) HasThread() bool {
	return b.ThreadCount > 0
}

// StatusURL builds the canonical post URL for a handle and id.
func StatusURL(username string, id TweetID) string {
	return fmt.Sprintf("https://twitter.com/%s/status/%s", username, id)
}
