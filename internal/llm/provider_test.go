package llm

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeJSONToleratesFencesAndProse(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"bare":        `{"name":"Blue Dream","markets":["CA"]}`,
		"fenced":      "```json\n{\"name\":\"Blue Dream\",\"markets\":[\"CA\"]}\n```",
		"plain fence": "```\n{\"name\":\"Blue Dream\",\"markets\":[\"CA\"]}\n```",
		"prose":       "Sure! Here it is: {\"name\":\"Blue Dream\",\"markets\":[\"CA\"]} Enjoy.",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			var out GenerateResponse
			require.NoError(t, DecodeJSON(text, &out))
			require.Equal(t, "Blue Dream", out.Name)
			require.Equal(t, []string{"CA"}, out.Markets)
		})
	}

	var out GenerateResponse
	require.Error(t, DecodeJSON("no json here", &out))
	require.Error(t, DecodeJSON("{broken", &out))
}

func TestProvidersWithoutKey(t *testing.T) {
	t.Parallel()

	for _, name := range []string{ProviderGemini, ProviderOpenAI} {
		p, err := New(name, "  ", "")
		require.NoError(t, err)
		_, err = p.GenerateProduct(context.Background(), GenerateRequest{Description: "blue dream flower"})
		require.ErrorIs(t, err, ErrNoAPIKey, name)
		_, err = p.Converse(context.Background(), ConverseRequest{Input: "hi"})
		require.ErrorIs(t, err, ErrNoAPIKey, name)
	}

	_, err := New("claude", "k", "")
	require.Error(t, err)
}

func TestGenerateResponseProduct(t *testing.T) {
	t.Parallel()

	r := GenerateResponse{Name: "Gummies", Brand: "Kind Kitchen", Markets: []string{"CO"}, TotalMarkets: 4}
	p := r.Product()
	require.Equal(t, "Kind Kitchen", p.Brand)
	require.Equal(t, 4, p.MarketCapacity)
	require.Equal(t, 1, p.TotalMarkets())
}

func TestGenerateUserPromptFillsVocabulary(t *testing.T) {
	t.Parallel()

	prompt := generateUserPrompt(GenerateRequest{Description: "sleepy gummies"})
	require.Contains(t, prompt, `"known_markets":["AZ"`)
	require.Contains(t, prompt, `"Edible"`)
	require.Contains(t, prompt, "sleepy gummies")
}

func TestProviderClientsAreSharedAcrossGoroutines(t *testing.T) {
	t.Parallel()

	o := NewOpenAIProvider("sk-test", "")
	require.NotNil(t, o.client)
	require.NoError(t, o.ensureClient())

	g := NewGeminiProvider("test-key", "")
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- g.ensureClient()
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	require.NotNil(t, g.client)
	first := g.client
	require.NoError(t, g.ensureClient())
	require.Same(t, first, g.client)
}
