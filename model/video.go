package model

// PostID identifies a single Instagram post, as extracted from its share URL.
type PostID string

// Video holds the metadata scraped from a post page. Width and height are
// kept as strings because that is how the page reports them. Caption may be
// empty, which callers treat as a terminal condition.
type Video struct {
	Username     string
	Width        string
	Height       string
	Caption      string
	DownloadURL  string
	ThumbnailURL string
}
