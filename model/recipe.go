package model

import "encoding/json"

// RecipeFormat selects the encoding of the ingredients and steps fields.
type RecipeFormat string

const (
	// FormatHTML encodes ingredients and steps as HTML fragments, with
	// section headings and bold quantity marks.
	FormatHTML RecipeFormat = "html"
	// FormatList encodes ingredients as name/amount pairs and steps as a
	// flat list of instructions.
	FormatList RecipeFormat = "list"
)

type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// Recipe is the extracted recipe. Only the fields of the active Format are
// populated. URL is attached by the caller after generation, the language
// model is never asked to produce it.
type Recipe struct {
	Name   string
	Format RecipeFormat

	// FormatHTML
	IngredientsHTML string
	StepsHTML       string

	// FormatList
	Ingredients []Ingredient
	Steps       []string

	URL string
}

func (r Recipe) MarshalJSON() ([]byte, error) {
	if r.Format == FormatHTML {
		return json.Marshal(struct {
			Name        string `json:"name"`
			Ingredients string `json:"ingredients"`
			Steps       string `json:"steps"`
			URL         string `json:"url,omitempty"`
		}{r.Name, r.IngredientsHTML, r.StepsHTML, r.URL})
	}

	return json.Marshal(struct {
		Name        string       `json:"name"`
		Ingredients []Ingredient `json:"ingredients"`
		Steps       []string     `json:"steps"`
		URL         string       `json:"url,omitempty"`
	}{r.Name, r.Ingredients, r.Steps, r.URL})
}
