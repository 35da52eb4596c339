package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/rs/zerolog/log"
)

const systemPrompt = `You extract travel query details from user input.
Respond with a single JSON object and nothing else, using exactly this schema:
{"place": "<place name or empty string if none>", "wants_weather": <bool>, "wants_places": <bool>}
Set wants_weather when the user asks about weather, temperature, rain or forecast.
Set wants_places when the user asks about attractions, sights or places to visit.
If no place is mentioned, return an empty "place".`

type OpenAIClient struct {
	client openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAIClient{
		client: client,
		model:  model,
	}, nil
}

// ExtractPlaceIntent asks the model for a PlaceIntent and validates the
// returned JSON against the schema before trusting it.
func (c *OpenAIClient) ExtractPlaceIntent(ctx context.Context, userText string) (*PlaceIntent, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userText),
		},
		Temperature: openai.Float(0),
		MaxTokens:   openai.Int(120),
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	extraction, err := parsePlaceIntent(content)
	if err != nil {
		log.Warn().Str("content", content).Err(err).Msg("model output failed schema validation")
		return nil, err
	}
	return extraction, nil
}

// parsePlaceIntent decodes and validates model output. Models sometimes
// wrap JSON in code fences; those are tolerated, anything else is not.
func parsePlaceIntent(content string) (*PlaceIntent, error) {
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	dec := json.NewDecoder(strings.NewReader(content))
	dec.DisallowUnknownFields()

	var out PlaceIntent
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid extraction schema: %w", err)
	}

	out.Place = strings.TrimSpace(out.Place)
	if strings.EqualFold(out.Place, "none") {
		out.Place = ""
	}
	if out.Place == "" {
		return nil, ErrNoPlace
	}
	return &out, nil
}
