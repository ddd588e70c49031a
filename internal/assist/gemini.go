package assist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"warungpos/backend/internal/domain"
)

var errEmptyResponse = errors.New("empty model response")

type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey string, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, productName string, instruction string) (*domain.ProductSuggestion, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(fmt.Sprintf("Product Name: %q", productName)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    suggestionSchema(),
		},
	)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, errEmptyResponse
	}
	var suggestion domain.ProductSuggestion
	if err := json.Unmarshal([]byte(text), &suggestion); err != nil {
		return nil, fmt.Errorf("decode suggestion: %w", err)
	}
	return &suggestion, nil
}

func suggestionSchema() *genai.Schema {
	categories := append(append([]string{}, domain.Categories...), otherCategory)
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"description":    {Type: genai.TypeString},
			"suggestedPrice": {Type: genai.TypeNumber},
			"category":       {Type: genai.TypeString, Enum: categories},
		},
		PropertyOrdering: []string{"description", "suggestedPrice", "category"},
	}
}
