package translation

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultLocalEndpoint points to a local OpenAI-compatible endpoint.
	DefaultLocalEndpoint = "http://127.0.0.1:8845/v1"
	DefaultLocalModel    = "qwen2.5-7b-instruct"
	DefaultOpenAIModel   = openai.GPT4oMini

	generatorTimeout = 120 * time.Second
)

// OpenAIGenerator calls a chat completions API. The same type serves the
// hosted OpenAI API and local OpenAI-compatible servers.
type OpenAIGenerator struct {
	name        string
	model       string
	client      *openai.Client
	structured  bool
	temperature float32
}

func NewOpenAIGenerator(apiKey, baseURL, model string) *OpenAIGenerator {
	clientConfig := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
		clientConfig.BaseURL = normalizeEndpoint(trimmed, clientConfig.BaseURL)
	}
	clientConfig.HTTPClient = &http.Client{Timeout: generatorTimeout}

	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIGenerator{
		name:        "openai",
		model:       model,
		client:      openai.NewClientWithConfig(clientConfig),
		structured:  true,
		temperature: 0.3,
	}
}

// NewLocalGenerator targets a self-hosted server. Such servers rarely
// support json_schema response formats, so only JSON object mode is requested
// and the schema travels in the prompt.
func NewLocalGenerator(endpoint, model string) *OpenAIGenerator {
	clientConfig := openai.DefaultConfig("local")
	clientConfig.BaseURL = normalizeEndpoint(endpoint, DefaultLocalEndpoint)
	clientConfig.HTTPClient = &http.Client{Timeout: generatorTimeout}

	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultLocalModel
	}
	return &OpenAIGenerator{
		name:        "local",
		model:       model,
		client:      openai.NewClientWithConfig(clientConfig),
		temperature: 0.3,
	}
}

func (g *OpenAIGenerator) Name() string {
	return g.name
}

func (g *OpenAIGenerator) ModelName() string {
	if g == nil {
		return ""
	}
	return g.model
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if g == nil || g.client == nil {
		return "", fmt.Errorf("generator is not initialized")
	}
	if strings.TrimSpace(req.UserPrompt) == "" {
		return "", fmt.Errorf("prompt is required")
	}

	systemPrompt := req.SystemPrompt
	format := &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	if g.structured && len(req.Schema) > 0 {
		format = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.SchemaName,
				Schema: req.Schema,
			},
		}
	} else if len(req.Schema) > 0 {
		systemPrompt += "\n\nThe response must be a single JSON document matching this JSON schema:\n" + string(req.Schema)
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
		Temperature:    g.temperature,
		ResponseFormat: format,
	})
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", g.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s response missing choices", g.name)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%s response was empty", g.name)
	}
	return content, nil
}

// normalizeEndpoint turns "host:port", "http://host:port/" or a full
// ".../v1/chat/completions" URL into the ".../v1" base URL the client expects.
func normalizeEndpoint(raw, fallback string) string {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" {
		return fallback
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil || strings.TrimSpace(parsed.Host) == "" {
		return fallback
	}

	path := strings.TrimRight(parsed.Path, "/")
	path = strings.TrimSuffix(path, "/chat/completions")
	switch {
	case strings.HasSuffix(path, "/v1"):
	case path == "":
		path = "/v1"
	default:
		path += "/v1"
	}
	parsed.Path = path
	return parsed.String()
}
