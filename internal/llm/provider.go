package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jask/budregistry/internal/product"
)

// Provider defines the model calls used by services.
type Provider interface {
	GenerateProduct(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	Converse(ctx context.Context, req ConverseRequest) (ConverseResponse, error)
}

// ErrNoAPIKey is returned by providers constructed without a key.
var ErrNoAPIKey = errors.New("llm: api key not configured")

// callTimeout bounds every provider call. There is no retry.
const callTimeout = 8 * time.Second

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// New builds the named provider.
func New(name, apiKey, model string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProviderGemini:
		return NewGeminiProvider(apiKey, model), nil
	case ProviderOpenAI:
		return NewOpenAIProvider(apiKey, model), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", name)
	}
}

// GenerateRequest asks for a product record drafted from free text.
type GenerateRequest struct {
	Description string   `json:"description"`
	Markets     []string `json:"known_markets"`
	Categories  []string `json:"categories"`
}

// GenerateResponse is the product record the model returns.
type GenerateResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	LicenseNumber string   `json:"licenseNumber"`
	Brand         string   `json:"brand"`
	Category      string   `json:"category"`
	Potency       string   `json:"potency"`
	Subspecies    string   `json:"subspecies"`
	Strain        string   `json:"strain"`
	Feelings      []string `json:"feelings"`
	Description   string   `json:"description"`
	Markets       []string `json:"markets"`
	TotalMarkets  int      `json:"totalMarkets"`
}

// Product converts the response to the shared product shape. TotalMarkets
// becomes the market capacity.
func (r GenerateResponse) Product() product.Product {
	return product.Product{
		ID:             r.ID,
		Name:           r.Name,
		LicenseNumber:  r.LicenseNumber,
		Brand:          r.Brand,
		Category:       r.Category,
		Potency:        r.Potency,
		Subspecies:     r.Subspecies,
		Strain:         r.Strain,
		Feelings:       r.Feelings,
		Description:    r.Description,
		Markets:        r.Markets,
		MarketCapacity: r.TotalMarkets,
	}
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConverseRequest is a chat turn: system prompt, prior turns, new input.
type ConverseRequest struct {
	System  string
	History []Message
	Input   string
	// JSON asks the provider for a JSON-only reply where supported.
	JSON bool
}

type ConverseResponse struct {
	Text string
}

func generateSystemPrompt() string {
	return "You are a cannabis product registry assistant. From the user's description, draft one product record. " +
		"Return ONLY valid JSON with keys: id (string, may be empty), name, licenseNumber, brand, category, potency, " +
		"subspecies, strain, feelings (array of strings), description, markets (array of market codes), totalMarkets (integer). " +
		"Only use market codes from known_markets and a category from categories."
}

func generateUserPrompt(req GenerateRequest) string {
	if len(req.Markets) == 0 {
		req.Markets = product.Markets
	}
	if len(req.Categories) == 0 {
		req.Categories = product.Categories
	}
	payload, _ := json.Marshal(req)
	return "Input JSON:\n" + string(payload)
}

// DecodeJSON parses a model reply, tolerating code fences and prose around
// the JSON object.
func DecodeJSON(text string, v any) error {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return fmt.Errorf("no JSON object in reply")
	}
	return json.Unmarshal([]byte(s[start:end+1]), v)
}

