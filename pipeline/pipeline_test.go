package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"ewintr.nl/treats/httperr"
	"ewintr.nl/treats/model"
)

type fakeFetcher struct {
	video *model.Video
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context, _ model.PostID) (*model.Video, error) {
	return f.video, f.err
}

type fakeExtractor struct {
	recipe *model.Recipe
	err    error
	text   string
}

func (f *fakeExtractor) Extract(_ context.Context, recipeText string, format model.RecipeFormat) (*model.Recipe, error) {
	f.text = recipeText
	if f.err != nil {
		return nil, f.err
	}
	recipe := *f.recipe
	recipe.Format = format

	return &recipe, nil
}

type fakeCreator struct {
	record *model.Record
	err    error
	got    *model.Recipe
}

func (f *fakeCreator) Create(_ context.Context, recipe *model.Recipe) (*model.Record, error) {
	f.got = recipe

	return f.record, f.err
}

type fakeNotifier struct {
	err  error
	sent chan string
}

func (f *fakeNotifier) Send(_ context.Context, recipeName string) error {
	if f.sent != nil {
		f.sent <- recipeName
	}

	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const postURL = "https://www.instagram.com/p/DAbCd12eFgH/"

func TestExtractFromPost(t *testing.T) {
	videos := &fakeFetcher{video: &model.Video{Caption: "some recipe text"}}
	recipes := &fakeExtractor{recipe: &model.Recipe{Name: "Pad Thai"}}
	p := New(videos, recipes, &fakeCreator{}, nil, discardLogger())

	recipe, err := p.ExtractFromPost(context.Background(), postURL, model.FormatList)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recipe.URL != postURL {
		t.Errorf("expected source url attached, got %q", recipe.URL)
	}
	if recipes.text != "some recipe text" {
		t.Errorf("expected the caption to reach the extractor, got %q", recipes.text)
	}
}

func TestExtractFromPostInvalidURL(t *testing.T) {
	p := New(&fakeFetcher{}, &fakeExtractor{}, &fakeCreator{}, nil, discardLogger())

	_, err := p.ExtractFromPost(context.Background(), "https://example.com/nope", model.FormatList)
	var herr *httperr.Error
	if !errors.As(err, &herr) || herr.Status != http.StatusBadRequest || herr.Message != "Invalid Post URL" {
		t.Fatalf("expected 400 Invalid Post URL, got %v", err)
	}
}

func TestExtractFromPostNoCaption(t *testing.T) {
	videos := &fakeFetcher{video: &model.Video{Caption: ""}}
	p := New(videos, &fakeExtractor{}, &fakeCreator{}, nil, discardLogger())

	_, err := p.ExtractFromPost(context.Background(), postURL, model.FormatList)
	var herr *httperr.Error
	if !errors.As(err, &herr) || herr.Status != http.StatusBadRequest || herr.Message != "No caption found." {
		t.Fatalf("expected 400 No caption found., got %v", err)
	}
}

func TestExtractFromPostUnresolvedVideo(t *testing.T) {
	p := New(&fakeFetcher{}, &fakeExtractor{}, &fakeCreator{}, nil, discardLogger())

	_, err := p.ExtractFromPost(context.Background(), postURL, model.FormatList)
	var herr *httperr.Error
	if !errors.As(err, &herr) || herr.Status != http.StatusBadRequest {
		t.Fatalf("expected a 400 for an unresolved video, got %v", err)
	}
}

func TestRunPublishesAndNotifies(t *testing.T) {
	videos := &fakeFetcher{video: &model.Video{Caption: "some recipe text"}}
	recipes := &fakeExtractor{recipe: &model.Recipe{Name: "Pad Thai"}}
	records := &fakeCreator{record: &model.Record{ID: "rec123"}}
	notifier := &fakeNotifier{sent: make(chan string, 1)}
	p := New(videos, recipes, records, notifier, discardLogger())

	record, err := p.Run(context.Background(), postURL, model.FormatHTML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.ID != "rec123" {
		t.Errorf("expected record rec123, got %q", record.ID)
	}
	if records.got == nil || records.got.Format != model.FormatHTML {
		t.Errorf("expected html recipe published, got %+v", records.got)
	}

	select {
	case name := <-notifier.sent:
		if name != "Pad Thai" {
			t.Errorf("expected notification for Pad Thai, got %q", name)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a notification")
	}
}

func TestRunNotifierFailureIsInvisible(t *testing.T) {
	videos := &fakeFetcher{video: &model.Video{Caption: "some recipe text"}}
	recipes := &fakeExtractor{recipe: &model.Recipe{Name: "Pad Thai"}}
	records := &fakeCreator{record: &model.Record{ID: "rec123"}}
	notifier := &fakeNotifier{err: errors.New("relay down"), sent: make(chan string, 1)}
	p := New(videos, recipes, records, notifier, discardLogger())

	record, err := p.Run(context.Background(), postURL, model.FormatHTML)
	if err != nil {
		t.Fatalf("notifier failure must not fail the request: %v", err)
	}
	if record == nil || record.ID != "rec123" {
		t.Fatalf("expected the published record, got %+v", record)
	}

	<-notifier.sent // the attempt happened, its failure stayed internal
}

func TestRunStopsOnPublishError(t *testing.T) {
	videos := &fakeFetcher{video: &model.Video{Caption: "some recipe text"}}
	recipes := &fakeExtractor{recipe: &model.Recipe{Name: "Pad Thai"}}
	records := &fakeCreator{err: errors.New("cms rejected item")}
	notifier := &fakeNotifier{sent: make(chan string, 1)}
	p := New(videos, recipes, records, notifier, discardLogger())

	if _, err := p.Run(context.Background(), postURL, model.FormatHTML); err == nil {
		t.Fatal("expected the publish error to propagate")
	}

	select {
	case name := <-notifier.sent:
		t.Fatalf("no notification expected after a failed publish, got %q", name)
	case <-time.After(50 * time.Millisecond):
	}
}
