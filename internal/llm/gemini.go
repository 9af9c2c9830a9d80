package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider calls the Gemini API through google.golang.org/genai. It is
// safe for concurrent use; the generator and the assistant share one.
type GeminiProvider struct {
	apiKey string
	model  string

	once      sync.Once
	client    *genai.Client
	clientErr error
}

func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	return &GeminiProvider{apiKey: strings.TrimSpace(apiKey), model: strings.TrimSpace(model)}
}

// ensureClient builds the client once. Construction does not use the
// caller's context so a cancelled first call cannot poison later ones.
func (g *GeminiProvider) ensureClient() error {
	if g.apiKey == "" {
		return ErrNoAPIKey
	}
	g.once.Do(func() {
		g.client, g.clientErr = genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if g.clientErr != nil {
			g.clientErr = fmt.Errorf("gemini: create client: %w", g.clientErr)
		}
	})
	return g.clientErr
}

// GenerateProduct drafts a product record. Timeout: 8s, no retry.
func (g *GeminiProvider) GenerateProduct(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	if err := g.ensureClient(); err != nil {
		return GenerateResponse{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	contents := []*genai.Content{genai.NewContentFromText(generateUserPrompt(req), genai.RoleUser)}
	text, err := g.generate(ctx, generateSystemPrompt(), contents, true)
	if err != nil {
		return GenerateResponse{}, err
	}
	var out GenerateResponse
	if err := DecodeJSON(text, &out); err != nil {
		return GenerateResponse{}, fmt.Errorf("gemini: parse product: %w", err)
	}
	return out, nil
}

// Converse sends the conversation and returns the raw reply text.
func (g *GeminiProvider) Converse(ctx context.Context, req ConverseRequest) (ConverseResponse, error) {
	if err := g.ensureClient(); err != nil {
		return ConverseResponse{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, m := range req.History {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(req.Input, genai.RoleUser))
	text, err := g.generate(ctx, req.System, contents, req.JSON)
	if err != nil {
		return ConverseResponse{}, err
	}
	return ConverseResponse{Text: text}, nil
}

func (g *GeminiProvider) generate(ctx context.Context, system string, contents []*genai.Content, asJSON bool) (string, error) {
	model := g.model
	if model == "" {
		model = defaultGeminiModel
	}
	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if asJSON {
		cfg.ResponseMIMEType = "application/json"
	}
	resp, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return text, nil
}
