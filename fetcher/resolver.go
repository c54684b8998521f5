package fetcher

import (
	"net/url"
	"strings"

	"ewintr.nl/treats/model"
)

var postPathSegments = map[string]bool{
	"p":     true,
	"reel":  true,
	"reels": true,
	"tv":    true,
}

// PostIDFromURL extracts the post identifier from a shared Instagram URL.
// It accepts the post, reel and tv path forms, with or without a leading
// username segment. The second return value is false when the URL does not
// match any known post shape.
func PostIDFromURL(rawURL string) (model.PostID, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, segment := range segments {
		if postPathSegments[segment] && i+1 < len(segments) && segments[i+1] != "" {
			return model.PostID(segments[i+1]), true
		}
	}

	return "", false
}
