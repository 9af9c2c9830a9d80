package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jask/budregistry/internal/assistant"
	"github.com/jask/budregistry/internal/catalog"
	"github.com/jask/budregistry/internal/llm"
	"github.com/jask/budregistry/internal/prefs"
	"github.com/jask/budregistry/internal/search"
	"github.com/jask/budregistry/internal/service"
	"github.com/jask/budregistry/internal/wizard"
)

type draftProvider struct{}

func (draftProvider) GenerateProduct(_ context.Context, req llm.GenerateRequest) (llm.GenerateResponse, error) {
	return llm.GenerateResponse{
		Name:     "Mystery Gummies 10pk",
		Brand:    "Kind Kitchen",
		Category: "Edible",
		Markets:  []string{"CO", "XX"},
	}, nil
}

func (draftProvider) Converse(context.Context, llm.ConverseRequest) (llm.ConverseResponse, error) {
	return llm.ConverseResponse{}, llm.ErrNoAPIKey
}

func newTestApp(t *testing.T, store *prefs.Store) *App {
	t.Helper()
	seed, err := catalog.DefaultSeed()
	require.NoError(t, err)
	ms, err := catalog.NewMemoryStore(seed)
	require.NoError(t, err)
	engine, err := catalog.NewEngine(catalog.EngineDeps{Store: ms, PageSize: 6})
	require.NoError(t, err)
	index, err := search.DefaultIndex()
	require.NoError(t, err)
	replies, err := assistant.DefaultReplies()
	require.NoError(t, err)
	return New(context.Background(), Deps{
		Catalog:   engine,
		Searcher:  index,
		Generator: &service.GeneratorService{Provider: draftProvider{}},
		Chat:      assistant.NewConversation(assistant.NewStaticResponder(replies), 0, nil),
		Prefs:     store,
		UseCase:   wizard.UseCaseRegister,
		DarkMode:  true,
	})
}

func press(t *testing.T, a *App, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := a.Update(keyMsg(k))
		drain(a, cmd)
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+g":
		return tea.KeyMsg{Type: tea.KeyCtrlG}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// drain runs cmd and feeds lookup, generation and chat results back into
// the app. Ticks and blinks are dropped.
func drain(a *App, cmd tea.Cmd) {
	for _, msg := range collect(cmd, 300*time.Millisecond) {
		switch msg.(type) {
		case lookupMsg, generatedMsg, chatReplyMsg:
			_, next := a.Update(msg)
			drain(a, next)
		}
	}
}

func collect(cmd tea.Cmd, wait time.Duration) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	var msg tea.Msg
	select {
	case msg = <-ch:
	case <-time.After(wait):
		return nil
	}
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out []tea.Msg
	)
	for _, c := range batch {
		wg.Add(1)
		go func(c tea.Cmd) {
			defer wg.Done()
			msgs := collect(c, wait)
			mu.Lock()
			out = append(out, msgs...)
			mu.Unlock()
		}(c)
	}
	wg.Wait()
	return out
}

func TestFilterSelectAllAndBulkDelete(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, nil)

	press(t, a, "f")
	require.Equal(t, modalFilter, a.modal)
	target := -1
	for i, r := range a.filterRows() {
		if r.facet == catalog.FacetType && r.option.Label == "Bundle" {
			target = i
		}
	}
	require.GreaterOrEqual(t, target, 0)
	for i := 0; i < target; i++ {
		press(t, a, "down")
	}
	press(t, a, "space", "esc")
	require.Equal(t, modalNone, a.modal)

	v := a.catalog.View()
	require.Len(t, v.Items, 1)
	require.Equal(t, "page 1 of 1", v.Label())

	press(t, a, "a")
	require.Equal(t, []string{"bnd-001"}, a.catalog.SelectedIDs())

	press(t, a, "x")
	require.Equal(t, modalConfirmDelete, a.modal)
	press(t, a, "y")
	require.Equal(t, modalNone, a.modal)
	require.Equal(t, 5, a.catalog.View().All)
	require.Empty(t, a.catalog.SelectedIDs())
	require.Equal(t, "deleted 1", a.status)
}

func TestDeleteWithoutSelectionIsRefused(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, nil)

	press(t, a, "x")
	require.Equal(t, modalNone, a.modal)
	require.Equal(t, 6, a.catalog.View().All)
}

func TestWizardRegistersCandidate(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, nil)

	press(t, a, "r")
	require.Equal(t, modalWizard, a.modal)
	press(t, a, "blue")

	st, ok := a.wiz.w.State().(wizard.Search)
	require.True(t, ok)
	require.Equal(t, wizard.StatusResults, st.Status)
	require.NotEmpty(t, st.Candidates)
	require.Contains(t, st.Candidates[0].Name, "Blue Dream")

	press(t, a, "enter")
	require.Equal(t, wizard.StepConfirm, a.wiz.w.Step())
	press(t, a, "enter")
	require.Equal(t, wizard.StepEdit, a.wiz.w.Step())
	require.NotNil(t, a.wiz.editor)

	press(t, a, "ctrl+s")
	require.Equal(t, modalNone, a.modal)
	require.Nil(t, a.wiz)
	require.Equal(t, 7, a.catalog.View().All)
	require.Contains(t, a.status, "registered Blue Dream")
}

func TestWizardCreateNewThenCancelClearsSearch(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, nil)

	press(t, a, "r", "Zkittlez Nebula")
	require.True(t, a.wiz.w.CanCreateNew())
	press(t, a, "enter")

	draft, ok := a.wiz.w.Draft()
	require.True(t, ok)
	require.Equal(t, "Zkittlez Nebula", draft.Name)
	require.Empty(t, draft.Markets)

	press(t, a, "esc")
	st, ok := a.wiz.w.State().(wizard.Search)
	require.True(t, ok)
	require.Empty(t, st.Query)
	require.Empty(t, a.wiz.query.Value())
	require.Nil(t, a.wiz.editor)

	// nothing left to lose, so escape closes without a prompt
	press(t, a, "esc")
	require.Equal(t, modalNone, a.modal)
}

func TestWizardExitGuard(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, nil)

	press(t, a, "r", "blue", "esc")
	require.Equal(t, wizard.StepExitPrompt, a.wiz.w.Step())

	press(t, a, "n")
	st, ok := a.wiz.w.State().(wizard.Search)
	require.True(t, ok)
	require.Equal(t, "blue", st.Query)

	press(t, a, "esc", "y")
	require.Equal(t, modalNone, a.modal)
	require.Equal(t, 6, a.catalog.View().All)
}

func TestWizardKeepsResultsThatArriveDuringExitPrompt(t *testing.T) {
	t.Parallel()

	t.Run("lookup", func(t *testing.T) {
		a := newTestApp(t, nil)
		press(t, a, "r")
		_, pending := a.Update(keyMsg("blue"))
		press(t, a, "esc")
		require.Equal(t, wizard.StepExitPrompt, a.wiz.w.Step())

		drain(a, pending)
		press(t, a, "n")
		st, ok := a.wiz.w.State().(wizard.Search)
		require.True(t, ok)
		require.Equal(t, wizard.StatusResults, st.Status)
		require.NotEmpty(t, st.Candidates)

		press(t, a, "enter")
		require.Equal(t, wizard.StepConfirm, a.wiz.w.Step())
	})

	t.Run("generated draft", func(t *testing.T) {
		a := newTestApp(t, nil)
		press(t, a, "r", "zzqx mystery")
		_, pending := a.Update(keyMsg("ctrl+g"))
		press(t, a, "esc")
		require.Equal(t, wizard.StepExitPrompt, a.wiz.w.Step())

		drain(a, pending)
		require.Nil(t, a.wiz.editor)
		press(t, a, "n")
		require.Equal(t, wizard.StepEdit, a.wiz.w.Step())
		require.NotNil(t, a.wiz.editor)
		require.Equal(t, "Review generated draft", a.wiz.editor.title)

		press(t, a, "ctrl+s")
		require.Equal(t, modalNone, a.modal)
		require.Equal(t, 7, a.catalog.View().All)
	})
}

func TestWizardGeneratesDraft(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, nil)

	press(t, a, "r", "zzqx mystery", "ctrl+g")
	require.Equal(t, wizard.StepEdit, a.wiz.w.Step())
	require.Equal(t, "Review generated draft", a.wiz.editor.title)
	draft, _ := a.wiz.w.Draft()
	require.Equal(t, []string{"CO"}, draft.Markets)

	press(t, a, "ctrl+s")
	require.Equal(t, modalNone, a.modal)
	require.Equal(t, 7, a.catalog.View().All)
}

func TestBundleBuilderCreatesBundle(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, nil)

	press(t, a, "space", "right", "space", "b")
	require.Equal(t, modalBundle, a.modal)
	require.Len(t, a.bundle.items, 2)

	press(t, a, "Duo", "tab", "19.99", "enter")
	require.Equal(t, modalNone, a.modal)

	first := a.catalog.View().Items[0]
	require.Equal(t, "Duo", first.Name)
	require.True(t, first.IsBundle())
	require.True(t, decimal.RequireFromString("19.99").Equal(first.Price))
	require.Empty(t, a.catalog.SelectedIDs())
}

func TestBundleBuilderRejectsBadPrice(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, nil)

	press(t, a, "space", "b", "Duo", "tab", "abc", "enter")
	require.Equal(t, modalBundle, a.modal)
	require.Contains(t, a.bundle.err, "price")
	require.Equal(t, 6, a.catalog.View().All)
}

func TestEditorSavesThroughEngine(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, nil)

	press(t, a, "e")
	require.Equal(t, modalEditor, a.modal)
	press(t, a, " XL", "ctrl+s")
	require.Equal(t, modalNone, a.modal)

	got, ok := a.catalog.Get("prd-001")
	require.True(t, ok)
	require.Equal(t, "Blue Dream 3.5g XL", got.Name)
}

func TestLayoutAndThemePersist(t *testing.T) {
	t.Parallel()
	store := &prefs.Store{Dir: t.TempDir()}
	a := newTestApp(t, store)

	press(t, a, "z")
	require.Equal(t, 12, a.catalog.PageSize())

	press(t, a, "v")
	got, err := store.Load(prefs.Prefs{})
	require.NoError(t, err)
	require.Equal(t, prefs.Prefs{DarkMode: true, Layout: "list"}, got)

	press(t, a, "t")
	require.False(t, a.dark)
	got, err = store.Load(prefs.Prefs{})
	require.NoError(t, err)
	require.False(t, got.DarkMode)
}

func TestChatPanel(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, nil)
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	press(t, a, "c")
	require.Equal(t, viewChat, a.state)
	press(t, a, "Show my top products", "enter")

	h := a.chat.conv.History()
	require.Len(t, h, 2)
	require.Equal(t, assistant.KindTable, h[1].Reply.Blocks[0].Kind)
	require.Empty(t, a.chat.pending)
	require.Contains(t, a.View(), "Assistant")

	press(t, a, "esc")
	require.Equal(t, viewCatalog, a.state)
}

func TestChatIgnoresReplyFromCancelledSend(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, nil)
	press(t, a, "c")

	_ = a.sendChat("Show my top products")
	first := a.chat.seq
	press(t, a, "esc")
	require.Empty(t, a.chat.pending)
	require.Equal(t, viewChat, a.state, "esc cancels before leaving the panel")

	resend := a.sendChat("Show my top products")
	a.Update(chatReplyMsg{seq: first, input: "Show my top products", err: context.Canceled})
	require.Equal(t, "Show my top products", a.chat.pending)

	drain(a, resend)
	require.Empty(t, a.chat.pending)
	require.Len(t, a.chat.conv.History(), 2)
}

func TestViewRendersPageAndModal(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, nil)
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 50})

	out := a.View()
	require.Contains(t, out, "page 1 of 1")
	require.Contains(t, out, "Blue Dream")

	press(t, a, "r")
	require.Contains(t, a.View(), "Register product")
}
