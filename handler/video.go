package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"ewintr.nl/treats/model"
)

// VideoAPI serves extraction without publishing: the post's caption in,
// a structured recipe out.
type VideoAPI struct {
	pipeline Pipeline
	enabled  bool
	logger   *slog.Logger
}

func NewVideoAPI(pipeline Pipeline, enabled bool, logger *slog.Logger) *VideoAPI {
	return &VideoAPI{
		pipeline: pipeline,
		enabled:  enabled,
		logger:   logger,
	}
}

func (api *VideoAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !api.enabled {
		Fail(w, http.StatusNotImplemented, "Not Implemented")
		return
	}

	var postURL string
	switch r.Method {
	case http.MethodGet:
		var ok bool
		if postURL, ok = postURLFromQuery(r); !ok {
			Fail(w, http.StatusBadRequest, "Post URL is required")
			return
		}
	case http.MethodPost:
		var request struct {
			PostURL string `json:"postUrl"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			Fail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if request.PostURL == "" {
			Fail(w, http.StatusBadRequest, "Post URL is required")
			return
		}
		postURL = request.PostURL
	default:
		Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	recipe, err := api.pipeline.ExtractFromPost(r.Context(), postURL, model.FormatList)
	if err != nil {
		RespondErr(w, err, api.logger)
		return
	}

	Success(w, recipeResponse{Recipe: recipe})
}
