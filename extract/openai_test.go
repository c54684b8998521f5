package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ewintr.nl/treats/model"
	"github.com/sashabaranov/go-openai"
)

func testOpenAI(t *testing.T, content string, requests *[]map[string]any) (*OpenAI, func()) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		*requests = append(*requests, req)

		resp := map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		}
		json.NewEncoder(w).Encode(resp)
	}))

	config := openai.DefaultConfig("test-key")
	config.BaseURL = srv.URL + "/v1"
	o := NewOpenAI(openai.NewClientWithConfig(config), slog.New(slog.NewTextHandler(io.Discard, nil)))

	return o, srv.Close
}

func TestExtractList(t *testing.T) {
	content := `{"recipe":{"name":"Simple Bake","ingredients":[{"name":"Flour","amount":"480g"},{"name":"Egg","amount":"1"}],"steps":["Mix 480g of flour and 1 egg.","Bake at 175C for 20 minutes."]}}`
	var requests []map[string]any
	o, cleanup := testOpenAI(t, content, &requests)
	defer cleanup()

	caption := "2 cups flour, 1 egg. Mix and bake at 350F for 20 minutes."
	recipe, err := o.Extract(context.Background(), caption, model.FormatList)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if recipe.Format != model.FormatList {
		t.Errorf("expected list format, got %q", recipe.Format)
	}
	if recipe.Name != "Simple Bake" {
		t.Errorf("unexpected name %q", recipe.Name)
	}
	if len(recipe.Ingredients) != 2 || recipe.Ingredients[0].Amount != "480g" {
		t.Errorf("unexpected ingredients %+v", recipe.Ingredients)
	}
	if len(recipe.Steps) != 2 || !strings.Contains(recipe.Steps[1], "175C") {
		t.Errorf("unexpected steps %+v", recipe.Steps)
	}
	if recipe.URL != "" {
		t.Errorf("url must not be set by the extractor, got %q", recipe.URL)
	}

	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}
	req := requests[0]
	format := req["response_format"].(map[string]any)
	if format["type"] != "json_schema" {
		t.Errorf("expected json_schema response format, got %v", format["type"])
	}
	messages := req["messages"].([]any)
	prompt := messages[0].(map[string]any)["content"].(string)
	if !strings.Contains(prompt, caption) {
		t.Errorf("prompt does not embed the caption: %q", prompt)
	}
	if !strings.Contains(prompt, "metric system") {
		t.Errorf("prompt misses the metric conversion directive: %q", prompt)
	}
}

func TestExtractHTML(t *testing.T) {
	content := `{"recipe":{"name":"Pad Thai","ingredients":"<ul><li>250g Rice Noodles</li></ul>","steps":"<h4>Stir Fry</h4><ol><li>Fry <strong>250g</strong> noodles.</li></ol>"}}`
	var requests []map[string]any
	o, cleanup := testOpenAI(t, content, &requests)
	defer cleanup()

	recipe, err := o.Extract(context.Background(), "noodles and stuff", model.FormatHTML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if recipe.Format != model.FormatHTML {
		t.Errorf("expected html format, got %q", recipe.Format)
	}
	if !strings.Contains(recipe.IngredientsHTML, "<ul>") {
		t.Errorf("unexpected ingredients html %q", recipe.IngredientsHTML)
	}
	if !strings.Contains(recipe.StepsHTML, "<h4>") {
		t.Errorf("unexpected steps html %q", recipe.StepsHTML)
	}

	prompt := requests[0]["messages"].([]any)[0].(map[string]any)["content"].(string)
	if !strings.Contains(prompt, "<strong>") {
		t.Errorf("html prompt misses the strong tag directive: %q", prompt)
	}
}

func TestExtractUnknownFormat(t *testing.T) {
	var requests []map[string]any
	o, cleanup := testOpenAI(t, "{}", &requests)
	defer cleanup()

	if _, err := o.Extract(context.Background(), "text", model.RecipeFormat("yaml")); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestExtractUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`)
	}))
	defer srv.Close()

	config := openai.DefaultConfig("test-key")
	config.BaseURL = srv.URL + "/v1"
	o := NewOpenAI(openai.NewClientWithConfig(config), slog.New(slog.NewTextHandler(io.Discard, nil)))

	if _, err := o.Extract(context.Background(), "text", model.FormatList); err == nil {
		t.Fatal("expected the upstream error to propagate")
	}
}
