package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider uses the official openai-go client (chat completions). The
// client is built up front, so the provider is safe for concurrent use.
type OpenAIProvider struct {
	apiKey string
	model  string
	client *openai.Client
}

func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	p := &OpenAIProvider{apiKey: strings.TrimSpace(apiKey), model: strings.TrimSpace(model)}
	if p.apiKey != "" {
		c := openai.NewClient(option.WithAPIKey(p.apiKey))
		p.client = &c
	}
	return p
}

func (p *OpenAIProvider) ensureClient() error {
	if p.client == nil {
		return ErrNoAPIKey
	}
	return nil
}

// GenerateProduct drafts a product record. Timeout: 8s, no retry.
func (p *OpenAIProvider) GenerateProduct(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	if err := p.ensureClient(); err != nil {
		return GenerateResponse{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	text, err := p.complete(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(generateSystemPrompt()),
		openai.UserMessage(generateUserPrompt(req)),
	})
	if err != nil {
		return GenerateResponse{}, err
	}
	var out GenerateResponse
	if err := DecodeJSON(text, &out); err != nil {
		return GenerateResponse{}, fmt.Errorf("openai: parse product: %w", err)
	}
	return out, nil
}

// Converse sends the conversation and returns the raw reply text.
func (p *OpenAIProvider) Converse(ctx context.Context, req ConverseRequest) (ConverseResponse, error) {
	if err := p.ensureClient(); err != nil {
		return ConverseResponse{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	for _, m := range req.History {
		if m.Role == RoleAssistant {
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		} else {
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	msgs = append(msgs, openai.UserMessage(req.Input))
	text, err := p.complete(ctx, msgs)
	if err != nil {
		return ConverseResponse{}, err
	}
	return ConverseResponse{Text: text}, nil
}

func (p *OpenAIProvider) complete(ctx context.Context, msgs []openai.ChatCompletionMessageParamUnion) (string, error) {
	model := p.model
	if model == "" {
		model = defaultOpenAIModel
	}
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: msgs,
	})
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
