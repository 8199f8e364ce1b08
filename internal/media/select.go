// Package media picks one representative asset per post attachment.
package media

import "github.com/iconidentify/xresolve/internal/domain"

// Selection is the outcome of selecting over a post's attachments.
type Selection struct {
	// Media holds one entry per attachment that produced an asset, in upstream order.
	Media []domain.ResolvedMedia

	// Variants holds every bit-rated variant seen, for later quality choice.
	Variants []domain.Variant
}

// Select resolves each attachment to at most one asset.
//
// Videos and animated images take the highest bit rate variant, the last one
// winning a tie. Without any bit-rated variant the last unranked variant is
// used, and with neither the attachment is dropped. Photos use their URL as
// both asset and thumbnail. Unknown kinds are skipped.
func Select(attachments []domain.Attachment) Selection {
	var sel Selection

	for _, att := range attachments {
		switch att.Kind {
		case domain.MediaKindVideo, domain.MediaKindAnimatedImage:
			best, ranked := bestVariant(att.Variants)
			sel.Variants = append(sel.Variants, ranked...)
			if best == "" {
				continue
			}
			sel.Media = append(sel.Media, domain.ResolvedMedia{
				URL:          best,
				Kind:         att.Kind,
				ThumbnailURL: att.PreviewURL,
			})

		case domain.MediaKindPhoto:
			sel.Media = append(sel.Media, domain.ResolvedMedia{
				URL:          att.URL,
				Kind:         att.Kind,
				ThumbnailURL: att.URL,
			})
		}
	}

	return sel
}

// bestVariant scans variants once and returns the chosen URL together with
// all bit-rated variants in input order.
func bestVariant(variants []domain.Variant) (string, []domain.Variant) {
	var (
		ranked      []domain.Variant
		bestURL     string
		bestRate    int
		haveRanked  bool
		fallbackURL string
	)

	for _, v := range variants {
		if !v.HasBitRate() {
			fallbackURL = v.URL
			continue
		}
		ranked = append(ranked, v)
		if !haveRanked || *v.BitRate >= bestRate {
			bestURL = v.URL
			bestRate = *v.BitRate
			haveRanked = true
		}
	}

	if haveRanked {
		return bestURL, ranked
	}
	return fallbackURL, ranked
}
