package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"ewintr.nl/treats/model"
)

// Pipeline is the part of the recipe pipeline the HTTP boundary needs.
type Pipeline interface {
	ExtractFromPost(ctx context.Context, postURL string, format model.RecipeFormat) (*model.Recipe, error)
	ExtractFromText(ctx context.Context, recipeText string) (*model.Recipe, error)
	Run(ctx context.Context, postURL string, format model.RecipeFormat) (*model.Record, error)
}

type recipeResponse struct {
	Recipe *model.Recipe `json:"recipe"`
}

// ExtractAPI serves the extract-and-publish flow (GET) and extraction from
// raw caption text (POST).
type ExtractAPI struct {
	pipeline Pipeline
	enabled  bool
	logger   *slog.Logger
}

func NewExtractAPI(pipeline Pipeline, enabled bool, logger *slog.Logger) *ExtractAPI {
	return &ExtractAPI{
		pipeline: pipeline,
		enabled:  enabled,
		logger:   logger,
	}
}

func (api *ExtractAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !api.enabled {
		Fail(w, http.StatusNotImplemented, "Not Implemented")
		return
	}

	switch r.Method {
	case http.MethodGet:
		api.Publish(w, r)
	case http.MethodPost:
		api.FromText(w, r)
	default:
		Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// Publish runs the full pipeline for the post in the query string and
// responds with the created record.
func (api *ExtractAPI) Publish(w http.ResponseWriter, r *http.Request) {
	postURL, ok := postURLFromQuery(r)
	if !ok {
		Fail(w, http.StatusBadRequest, "Post URL is required")
		return
	}

	record, err := api.pipeline.Run(r.Context(), postURL, model.FormatHTML)
	if err != nil {
		RespondErr(w, err, api.logger)
		return
	}

	Success(w, record)
}

// FromText extracts a structured recipe from caption text supplied directly,
// without touching the post page or the publisher.
func (api *ExtractAPI) FromText(w http.ResponseWriter, r *http.Request) {
	var request struct {
		RecipeText string `json:"recipeText"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if request.RecipeText == "" {
		Fail(w, http.StatusBadRequest, "Recipe text is required")
		return
	}

	recipe, err := api.pipeline.ExtractFromText(r.Context(), request.RecipeText)
	if err != nil {
		RespondErr(w, err, api.logger)
		return
	}

	Success(w, recipeResponse{Recipe: recipe})
}

// postURLFromQuery reads the postUrl query parameter. Share sheets tend to
// percent-encode the whole URL a second time, so one extra decode is applied
// when it succeeds.
func postURLFromQuery(r *http.Request) (string, bool) {
	raw := r.URL.Query().Get("postUrl")
	if raw == "" {
		return "", false
	}
	if decoded, err := url.QueryUnescape(raw); err == nil {
		raw = decoded
	}

	return raw, true
}
