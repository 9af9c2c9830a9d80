package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jask/budregistry/internal/llm"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func staticResponder(t *testing.T) *StaticResponder {
	t.Helper()
	replies, err := DefaultReplies()
	require.NoError(t, err)
	return NewStaticResponder(replies)
}

func TestDefaultRepliesSuggestionsResolve(t *testing.T) {
	t.Parallel()

	replies, err := DefaultReplies()
	require.NoError(t, err)
	s := NewStaticResponder(replies)

	// every suggested prompt in the table has its own canned answer
	all := append([]Reply{replies.Default}, func() []Reply {
		out := make([]Reply, len(replies.Entries))
		for i, e := range replies.Entries {
			out[i] = e.Reply
		}
		return out
	}()...)
	for _, r := range all {
		for _, a := range r.Suggestions {
			got, err := s.Respond(context.Background(), Request{Input: a.Prompt})
			require.NoError(t, err)
			require.NotEqual(t, replies.Default.Text, got.Text, "suggestion %q falls through to default", a.Prompt)
		}
	}
}

func TestStaticResponderExactMatch(t *testing.T) {
	t.Parallel()

	s := staticResponder(t)
	ctx := context.Background()

	got, err := s.Respond(ctx, Request{Input: "  Show my top products "})
	require.NoError(t, err)
	require.Equal(t, KindTable, got.Blocks[0].Kind)
	require.Len(t, got.Blocks[0].Table.Rows, 3)

	fallback, err := s.Respond(ctx, Request{Input: "show my top products"})
	require.NoError(t, err)
	require.Equal(t, KindAlert, fallback.Blocks[0].Kind, "matching is case-sensitive")
	require.Len(t, fallback.Suggestions, 4)
}

func TestLoadRepliesValidation(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"missing default": "entries: []\n",
		"bad block":       "default:\n  text: hi\n  blocks:\n    - kind: chart\n",
		"ragged table":    "default:\n  text: hi\n  blocks:\n    - kind: table\n      table:\n        columns: [a, b]\n        rows: [[x]]\n",
		"duplicate input": "default:\n  text: hi\nentries:\n  - input: a\n    reply: {text: one}\n  - input: a\n    reply: {text: two}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadReplies(strings.NewReader(doc))
			require.Error(t, err)
		})
	}
}

func TestBlockValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Block{Kind: KindSteps, Steps: &Steps{Items: []string{"a", "b"}, Current: 1}}.Validate())
	require.ErrorIs(t, Block{Kind: KindSteps, Steps: &Steps{Items: []string{"a"}, Current: 1}}.Validate(), ErrInvalidBlock)
	require.ErrorIs(t, Block{Kind: KindAlert, Alert: &Alert{Level: "loud", Title: "x"}}.Validate(), ErrInvalidBlock)
	require.ErrorIs(t, Block{Kind: KindEntity}.Validate(), ErrInvalidBlock)
	require.NoError(t, Block{Kind: KindStats, Stats: []Stat{{Label: "a", Value: "1"}}}.Validate())
}

type scriptedProvider struct {
	text string
	err  error
	got  llm.ConverseRequest
}

func (p *scriptedProvider) GenerateProduct(context.Context, llm.GenerateRequest) (llm.GenerateResponse, error) {
	return llm.GenerateResponse{}, errors.New("not used")
}

func (p *scriptedProvider) Converse(_ context.Context, req llm.ConverseRequest) (llm.ConverseResponse, error) {
	p.got = req
	return llm.ConverseResponse{Text: p.text}, p.err
}

func TestModelResponderDecodesAndFiltersBlocks(t *testing.T) {
	t.Parallel()

	p := &scriptedProvider{text: "```json\n" + `{"text":"Two markets.","blocks":[` +
		`{"kind":"stats","stats":[{"label":"CA","value":"3"}]},` +
		`{"kind":"chart"}],"suggestions":[{"label":"More","prompt":"more"}]}` + "\n```"}
	m := &ModelResponder{Provider: p}

	history := []Turn{{Role: RoleUser, Text: "hi"}, {Role: RoleAssistant, Text: "hello"}}
	got, err := m.Respond(context.Background(), Request{History: history, Input: "markets?"})
	require.NoError(t, err)
	require.Equal(t, "Two markets.", got.Text)
	require.Len(t, got.Blocks, 1)
	require.Equal(t, KindStats, got.Blocks[0].Kind)

	require.True(t, p.got.JSON)
	require.Contains(t, p.got.System, "table, entity, stats, alert, steps")
	require.Equal(t, []llm.Message{{Role: llm.RoleUser, Content: "hi"}, {Role: llm.RoleAssistant, Content: "hello"}}, p.got.History)
}

func TestModelResponderFallsBack(t *testing.T) {
	t.Parallel()

	s := staticResponder(t)
	m := &ModelResponder{Provider: &scriptedProvider{err: llm.ErrNoAPIKey}, Fallback: s}
	got, err := m.Respond(context.Background(), Request{Input: "What's pending approval?"})
	require.NoError(t, err)
	require.Equal(t, KindEntity, got.Blocks[0].Kind)

	m = &ModelResponder{Provider: &scriptedProvider{text: "not json"}}
	_, err = m.Respond(context.Background(), Request{Input: "x"})
	require.Error(t, err)
}

func TestConversationRecordsTurns(t *testing.T) {
	t.Parallel()

	c := NewConversation(staticResponder(t), time.Millisecond, nil)
	_, err := c.Send(context.Background(), "   ")
	require.Error(t, err)

	reply, err := c.Send(context.Background(), "How do I register a product?")
	require.NoError(t, err)
	require.Equal(t, KindSteps, reply.Blocks[0].Kind)

	h := c.History()
	require.Len(t, h, 2)
	require.Equal(t, RoleUser, h[0].Role)
	require.Equal(t, RoleAssistant, h[1].Role)
	require.NotNil(t, h[1].Reply)

	c.Reset()
	require.Empty(t, c.History())
}

func TestConversationDelayHonoursCancel(t *testing.T) {
	t.Parallel()

	c := NewConversation(staticResponder(t), time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := c.Send(ctx, "Show my top products")
		errc <- err
	}()
	cancel()
	select {
	case err := <-errc:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("send did not return after cancel")
	}
	require.Empty(t, c.History())
}

func TestReplyMarkdown(t *testing.T) {
	t.Parallel()

	r := Reply{
		Text: "Summary",
		Blocks: []Block{
			{Kind: KindTable, Table: &Table{Title: "Top", Columns: []string{"A", "B"}, Rows: [][]string{{"x|y", "1"}}}},
			{Kind: KindAlert, Alert: &Alert{Level: AlertWarning, Title: "Careful"}},
			{Kind: KindSteps, Steps: &Steps{Items: []string{"Search", "Edit"}, Current: 1}},
		},
		Suggestions: []Action{{Label: "Next", Prompt: "next"}},
	}
	md := r.Markdown()
	require.Contains(t, md, "| A | B |")
	require.Contains(t, md, `| x\|y | 1 |`)
	require.Contains(t, md, "> **! Careful**")
	require.Contains(t, md, "1. ~~Search~~")
	require.Contains(t, md, "2. **Edit**")
	require.Contains(t, md, "`1` Next")
}
