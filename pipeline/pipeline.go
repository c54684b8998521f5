package pipeline

import (
	"context"
	"log/slog"
	"time"

	"ewintr.nl/treats/fetcher"
	"ewintr.nl/treats/httperr"
	"ewintr.nl/treats/model"
)

const notifyTimeout = 15 * time.Second

type VideoFetcher interface {
	Fetch(ctx context.Context, postID model.PostID) (*model.Video, error)
}

type RecipeExtractor interface {
	Extract(ctx context.Context, recipeText string, format model.RecipeFormat) (*model.Recipe, error)
}

type RecordCreator interface {
	Create(ctx context.Context, recipe *model.Recipe) (*model.Record, error)
}

type Notifier interface {
	Send(ctx context.Context, recipeName string) error
}

// Pipeline runs the extraction steps in sequence. It holds no state between
// requests.
type Pipeline struct {
	videos   VideoFetcher
	recipes  RecipeExtractor
	records  RecordCreator
	notifier Notifier
	logger   *slog.Logger
}

func New(videos VideoFetcher, recipes RecipeExtractor, records RecordCreator, notifier Notifier, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		videos:   videos,
		recipes:  recipes,
		records:  records,
		notifier: notifier,
		logger:   logger,
	}
}

// ExtractFromPost resolves the post URL, scrapes the caption from the post
// page and turns it into a recipe. A post without a caption is a classified
// failure, never sent to the extractor.
func (p *Pipeline) ExtractFromPost(ctx context.Context, postURL string, format model.RecipeFormat) (*model.Recipe, error) {
	postID, ok := fetcher.PostIDFromURL(postURL)
	if !ok {
		return nil, httperr.BadRequest("Invalid Post URL")
	}

	p.logger.Info("fetching video info", slog.String("post", string(postID)))
	video, err := p.videos.Fetch(ctx, postID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, httperr.BadRequest("Could not resolve video info")
	}

	// TODO: transcribe the video audio when a post has no caption
	if video.Caption == "" {
		return nil, httperr.BadRequest("No caption found.")
	}

	p.logger.Info("extracting recipe", slog.String("post", string(postID)))
	recipe, err := p.recipes.Extract(ctx, video.Caption, format)
	if err != nil {
		return nil, err
	}
	recipe.URL = postURL

	return recipe, nil
}

// ExtractFromText extracts a recipe from caption text supplied directly,
// always in the list format.
func (p *Pipeline) ExtractFromText(ctx context.Context, recipeText string) (*model.Recipe, error) {
	return p.recipes.Extract(ctx, recipeText, model.FormatList)
}

// Run executes the full extract, publish and notify sequence and returns
// the created record.
func (p *Pipeline) Run(ctx context.Context, postURL string, format model.RecipeFormat) (*model.Record, error) {
	recipe, err := p.ExtractFromPost(ctx, postURL, format)
	if err != nil {
		return nil, err
	}

	p.logger.Info("publishing recipe", slog.String("name", recipe.Name))
	record, err := p.records.Create(ctx, recipe)
	if err != nil {
		return nil, err
	}

	p.notify(recipe.Name)

	return record, nil
}

// notify dispatches the mail in the background. Delivery is best effort:
// failures are logged and never reach the caller, and the goroutine carries
// its own deadline.
func (p *Pipeline) notify(recipeName string) {
	if p.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := p.notifier.Send(ctx, recipeName); err != nil {
			p.logger.Error("failed to send notification", slog.String("name", recipeName), slog.String("error", err.Error()))
		}
	}()
}
