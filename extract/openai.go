package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ewintr.nl/treats/httperr"
	"ewintr.nl/treats/model"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const extractTimeout = 60 * time.Second

const htmlPrompt = `You are my personal assistant and help me transcribe recipes for my cookbook.
What are the ingredients (with measurements) and steps for the following recipe?
Always convert all measurements to the metric system if that is not already the case!
Translate everything to English.

The steps should be separated into parts of the recipe (e.g. "Cream cheese frosting" or "Sauce")
if a part consists of at least two instructions. A step should always mention the necessary
ingredients with measurements to fulfill it, e.g. a step like "Mix all ingredients for the batter"
should instead be "Mix 200g of flour, 100ml of milk and 3 eggs". Any ingredient in a step should be
formatted in bold using the <strong> tag. The ingredients and steps should be returned as a single
string of valid HTML. Ingredients are listed in an unordered list <ul>, each item added as an <li>
element and in the following structure: e.g. '200g Potatoes' with the measurement after the
ingredient and no space between the number and any metric unit. Headings in the steps are <h4>
elements and steps below them are listed in an ordered list <ol>.

Do not add any info by yourself! Only output ingredients and steps that are stated in the original
recipe. Recipe: %q`

const listPrompt = `You are my personal assistant and help me transcribe recipes for my cookbook.
What are the ingredients (with measurements) and steps for the following recipe?
Always convert all measurements to the metric system if that is not already the case.
Every ingredient has a name and an amount, e.g. name "Potatoes" and amount "200g", with no space
between the number and any metric unit. Steps are single instructions in the order they are
performed. A step should always mention the necessary ingredients with measurements to fulfill it,
e.g. a step like "Mix all ingredients for the batter" should instead be "Mix 200g of flour, 100ml
of milk and 3 eggs". Do not add any info by yourself! Only output ingredients and steps that are
stated in the original recipe. Recipe: %q`

// htmlRecipe and listRecipe are the schemas the completion is bound to. The
// top-level "recipe" wrapper keeps the model from emitting a bare object.
type htmlRecipe struct {
	Recipe struct {
		Name        string `json:"name"`
		Ingredients string `json:"ingredients"`
		Steps       string `json:"steps"`
	} `json:"recipe"`
}

type listRecipe struct {
	Recipe struct {
		Name        string             `json:"name"`
		Ingredients []model.Ingredient `json:"ingredients"`
		Steps       []string           `json:"steps"`
	} `json:"recipe"`
}

type OpenAI struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

func NewOpenAI(client *openai.Client, logger *slog.Logger) *OpenAI {
	return &OpenAI{
		client:  client,
		model:   openai.GPT4oMini,
		timeout: extractTimeout,
		logger:  logger,
	}
}

// Extract turns caption text into a recipe in the requested format. The
// completion is schema-constrained, so the response is guaranteed to
// unmarshal into the requested shape.
func (o *OpenAI) Extract(ctx context.Context, recipeText string, format model.RecipeFormat) (*model.Recipe, error) {
	switch format {
	case model.FormatHTML:
		return o.extractHTML(ctx, recipeText)
	case model.FormatList:
		return o.extractList(ctx, recipeText)
	default:
		return nil, fmt.Errorf("unknown recipe format %q", format)
	}
}

func (o *OpenAI) extractHTML(ctx context.Context, recipeText string) (*model.Recipe, error) {
	schema, err := jsonschema.GenerateSchemaForType(htmlRecipe{})
	if err != nil {
		return nil, fmt.Errorf("generate schema: %w", err)
	}

	var payload htmlRecipe
	if err := o.generate(ctx, fmt.Sprintf(htmlPrompt, recipeText), "recipe_html", schema, &payload); err != nil {
		return nil, err
	}

	return &model.Recipe{
		Name:            payload.Recipe.Name,
		Format:          model.FormatHTML,
		IngredientsHTML: payload.Recipe.Ingredients,
		StepsHTML:       payload.Recipe.Steps,
	}, nil
}

func (o *OpenAI) extractList(ctx context.Context, recipeText string) (*model.Recipe, error) {
	schema, err := jsonschema.GenerateSchemaForType(listRecipe{})
	if err != nil {
		return nil, fmt.Errorf("generate schema: %w", err)
	}

	var payload listRecipe
	if err := o.generate(ctx, fmt.Sprintf(listPrompt, recipeText), "recipe_list", schema, &payload); err != nil {
		return nil, err
	}

	return &model.Recipe{
		Name:        payload.Recipe.Name,
		Format:      model.FormatList,
		Ingredients: payload.Recipe.Ingredients,
		Steps:       payload.Recipe.Steps,
	}, nil
}

func (o *OpenAI) generate(ctx context.Context, prompt, schemaName string, schema *jsonschema.Definition, out any) error {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName,
				Schema: schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: recipe generation: %v", httperr.ErrTimeout, err)
		}
		return fmt.Errorf("generate recipe: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("generate recipe: no choices returned")
	}

	content := resp.Choices[len(resp.Choices)-1].Message.Content
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("decode recipe: %w", err)
	}

	o.logger.Info("generated recipe", slog.String("schema", schemaName), slog.Int("size", len(content)))

	return nil
}
