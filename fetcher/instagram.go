package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ewintr.nl/treats/httperr"
	"ewintr.nl/treats/model"
	"github.com/PuerkitoBio/goquery"
)

const (
	instagramBaseURL = "https://www.instagram.com"
	fetchTimeout     = 15 * time.Second
	userAgent        = "Mozilla/5.0 (compatible; treats/1.0)"
)

// postJSON mirrors the JSON-LD metadata block embedded in a post page.
type postJSON struct {
	Author struct {
		Identifier struct {
			Value string `json:"value"`
		} `json:"identifier"`
	} `json:"author"`
	Video []postJSONVideo `json:"video"`
}

type postJSONVideo struct {
	Width        string `json:"width"`
	Height       string `json:"height"`
	Caption      string `json:"caption"`
	ContentURL   string `json:"contentUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

type Instagram struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewInstagram(logger *slog.Logger) *Instagram {
	return &Instagram{
		baseURL: instagramBaseURL,
		client:  &http.Client{Timeout: fetchTimeout},
		logger:  logger,
	}
}

// Fetch retrieves the public page of a post and maps its JSON-LD block to a
// video record. A nil video with a nil error means the page yielded no
// usable metadata; the caller decides what status that warrants. A missing
// page and a post without video are classified failures.
func (ig *Instagram) Fetch(ctx context.Context, postID model.PostID) (*model.Video, error) {
	pageURL := fmt.Sprintf("%s/p/%s/", ig.baseURL, postID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := ig.client.Do(req)
	if err != nil {
		ig.logger.Error("post page fetch failed", slog.String("post", string(postID)), slog.String("error", err.Error()))
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, httperr.BadRequest("This post page isn't available.")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		ig.logger.Error("post page parse failed", slog.String("post", string(postID)), slog.String("error", err.Error()))
		return nil, nil
	}

	jsonElement := doc.Find(`script[type="application/ld+json"]`)
	if jsonElement.Length() == 0 {
		return nil, nil
	}

	var post postJSON
	if err := json.Unmarshal([]byte(jsonElement.First().Text()), &post); err != nil {
		ig.logger.Error("post metadata decode failed", slog.String("post", string(postID)), slog.String("error", err.Error()))
		return nil, nil
	}

	return formatPost(post)
}

func formatPost(post postJSON) (*model.Video, error) {
	if len(post.Video) == 0 {
		return nil, httperr.BadRequest("This post does not contain a video")
	}

	video := post.Video[0]

	return &model.Video{
		Username:     post.Author.Identifier.Value,
		Width:        video.Width,
		Height:       video.Height,
		Caption:      video.Caption,
		DownloadURL:  video.ContentURL,
		ThumbnailURL: video.ThumbnailURL,
	}, nil
}
