package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ewintr.nl/treats/dast"
	"ewintr.nl/treats/httperr"
	"ewintr.nl/treats/model"
)

const (
	datoCMSBaseURL = "https://site-api.datocms.com"
	datoAPIVersion = "3"
	createTimeout  = 30 * time.Second
)

// DatoCMS creates recipe items through the DatoCMS content management API.
// Every call creates a new item; there is no upsert or deduplication.
type DatoCMS struct {
	baseURL  string
	apiToken string
	itemType string
	client   *http.Client
	logger   *slog.Logger
}

func NewDatoCMS(apiToken, itemType string, logger *slog.Logger) *DatoCMS {
	return &DatoCMS{
		baseURL:  datoCMSBaseURL,
		apiToken: apiToken,
		itemType: itemType,
		client:   &http.Client{},
		logger:   logger,
	}
}

type localized struct {
	EN any `json:"en"`
}

type itemAttributes struct {
	Date        string    `json:"date"`
	InspiredBy  string    `json:"inspired_by,omitempty"`
	Title       localized `json:"title"`
	Slug        localized `json:"slug"`
	Ingredients localized `json:"ingredients"`
	Todo        localized `json:"todo"`
}

type createRequest struct {
	Data struct {
		Type          string         `json:"type"`
		Attributes    itemAttributes `json:"attributes"`
		Relationships struct {
			ItemType struct {
				Data struct {
					Type string `json:"type"`
					ID   string `json:"id"`
				} `json:"data"`
			} `json:"item_type"`
		} `json:"relationships"`
	} `json:"data"`
}

// Create publishes one recipe as a new item, dated today, with the slug
// derived from the recipe name and the ingredients and steps converted to
// structured text.
func (d *DatoCMS) Create(ctx context.Context, recipe *model.Recipe) (*model.Record, error) {
	ingredients, todo, err := structuredFields(recipe)
	if err != nil {
		return nil, err
	}

	var body createRequest
	body.Data.Type = "item"
	body.Data.Attributes = itemAttributes{
		Date:        time.Now().Format("2006-01-02"),
		InspiredBy:  recipe.URL,
		Title:       localized{EN: recipe.Name},
		Slug:        localized{EN: Slug(recipe.Name)},
		Ingredients: localized{EN: ingredients},
		Todo:        localized{EN: todo},
	}
	body.Data.Relationships.ItemType.Data.Type = "item_type"
	body.Data.Relationships.ItemType.Data.ID = d.itemType

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode item: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, createTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/items", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+d.apiToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/vnd.api+json")
	req.Header.Set("X-Api-Version", datoAPIVersion)

	resp, err := d.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: create item: %v", httperr.ErrTimeout, err)
		}
		return nil, fmt.Errorf("create item: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("create item: status %d: %s", resp.StatusCode, string(detail))
	}

	var created struct {
		Data model.Record `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decode created item: %w", err)
	}

	d.logger.Info("created item", slog.String("id", created.Data.ID), slog.String("name", recipe.Name))

	return &created.Data, nil
}

// structuredFields builds the two structured text fields from whichever
// encoding the recipe carries.
func structuredFields(recipe *model.Recipe) (ingredients, todo *dast.Document, err error) {
	switch recipe.Format {
	case model.FormatHTML:
		ingredients, err = dast.FromHTML(recipe.IngredientsHTML)
		if err != nil {
			return nil, nil, fmt.Errorf("convert ingredients: %w", err)
		}
		todo, err = dast.FromHTML(recipe.StepsHTML)
		if err != nil {
			return nil, nil, fmt.Errorf("convert steps: %w", err)
		}
	case model.FormatList:
		lines := make([]string, 0, len(recipe.Ingredients))
		for _, ing := range recipe.Ingredients {
			lines = append(lines, strings.TrimSpace(ing.Amount+" "+ing.Name))
		}
		ingredients = dast.FromLines(dast.StyleBulleted, lines)
		todo = dast.FromLines(dast.StyleNumbered, recipe.Steps)
	default:
		return nil, nil, fmt.Errorf("unknown recipe format %q", recipe.Format)
	}

	return ingredients, todo, nil
}
