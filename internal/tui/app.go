package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jask/budregistry/internal/assistant"
	"github.com/jask/budregistry/internal/catalog"
	"github.com/jask/budregistry/internal/prefs"
	"github.com/jask/budregistry/internal/search"
	"github.com/jask/budregistry/internal/service"
	"github.com/jask/budregistry/internal/theme"
	"github.com/jask/budregistry/internal/wizard"
)

// App is the catalog screen with its overlays and the assistant panel.
type App struct {
	ctx       context.Context
	log       *zap.Logger
	catalog   *catalog.Engine
	searcher  search.Searcher
	generator *service.GeneratorService
	prefs     *prefs.Store
	useCase   wizard.UseCase

	state   appState
	modal   modalState
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	styles  theme.Styles
	dark    bool

	width, height int
	cursor        int
	status        string
	statusErr     bool

	searching    bool
	searchInput  textinput.Model
	filterCursor int

	editor    *editorModel
	editingID string
	bundle    *bundleModel
	wiz       *wizardView
	chat      *chatPanel
}

// Deps are the collaborators the App drives.
type Deps struct {
	Catalog   *catalog.Engine
	Searcher  search.Searcher
	Generator *service.GeneratorService
	Chat      *assistant.Conversation
	Prefs     *prefs.Store
	UseCase   wizard.UseCase
	DarkMode  bool
	Log       *zap.Logger
}

type appState string

const (
	viewCatalog appState = "catalog"
	viewChat    appState = "chat"
)

type modalState string

const (
	modalNone          modalState = ""
	modalFilter        modalState = "filter"
	modalConfirmDelete modalState = "confirmDelete"
	modalBundle        modalState = "bundle"
	modalEditor        modalState = "editor"
	modalWizard        modalState = "wizard"
)

func New(ctx context.Context, deps Deps) *App {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Searcher == nil {
		deps.Searcher = search.Empty{}
	}
	if deps.UseCase == "" {
		deps.UseCase = wizard.UseCaseRegister
	}
	si := textinput.New()
	si.Placeholder = "name, brand or license"
	si.Prompt = "/ "
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	a := &App{
		ctx:         ctx,
		log:         deps.Log,
		catalog:     deps.Catalog,
		searcher:    deps.Searcher,
		generator:   deps.Generator,
		prefs:       deps.Prefs,
		useCase:     deps.UseCase,
		state:       viewCatalog,
		keys:        defaultKeys(),
		help:        help.New(),
		spinner:     sp,
		searchInput: si,
	}
	if deps.Chat != nil {
		a.chat = newChatPanel(deps.Chat)
	}
	a.applyTheme(deps.DarkMode)
	return a
}

func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) applyTheme(dark bool) {
	a.dark = dark
	a.styles = theme.NewStyles(theme.ForDarkMode(dark))
	p := a.styles.Palette
	a.spinner.Style = lipgloss.NewStyle().Foreground(p.Accent())
	a.help.Styles.ShortKey = a.styles.Key
	a.help.Styles.ShortDesc = a.styles.Dim
	a.help.Styles.ShortSeparator = a.styles.Dim
	a.help.Styles.FullKey = a.styles.Key
	a.help.Styles.FullDesc = a.styles.Dim
	a.help.Styles.FullSeparator = a.styles.Dim
}

func (a *App) setStatus(s string) {
	a.status = s
	a.statusErr = false
}

func (a *App) setError(err error) {
	a.status = "error: " + err.Error()
	a.statusErr = true
}

func (a *App) busy() bool {
	if a.chat != nil && a.chat.pending != "" {
		return true
	}
	if a.wiz == nil {
		return false
	}
	st, ok := a.wiz.w.State().(wizard.Search)
	return ok && (st.Status == wizard.StatusLoading || st.Status == wizard.StatusGenerating)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.help.Width = m.Width
		a.resizeChat()
	case tea.KeyMsg:
		if m.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		if a.state == viewChat {
			return a.handleChatKey(m)
		}
		if a.searching {
			return a.handleSearchKey(m)
		}
		return a.handleCatalogKey(m)
	case lookupMsg:
		a.applyLookup(m)
	case generatedMsg:
		return a, a.applyGenerated(m)
	case chatReplyMsg:
		a.applyChatReply(m)
	case spinner.TickMsg:
		if !a.busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(m)
		if a.chat != nil && a.chat.pending != "" {
			a.refreshChat()
		}
		return a, cmd
	case statusMsg:
		a.setStatus(string(m))
	case errMsg:
		a.setError(m.error)
	}
	return a, nil
}

func (a *App) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalWizard:
		return a.handleWizardKey(msg)
	case modalFilter:
		return a.handleFilterKey(msg)
	case modalConfirmDelete:
		switch msg.String() {
		case "y", "enter":
			n := a.catalog.BulkDelete()
			a.modal = modalNone
			a.setStatus(fmt.Sprintf("deleted %d", n))
			a.clampCursor()
		case "n", "esc":
			a.modal = modalNone
		}
	case modalBundle:
		if msg.String() == "esc" {
			a.bundle = nil
			a.modal = modalNone
			return a, nil
		}
		submit, cmd := a.bundle.update(msg)
		if submit {
			a.createBundle()
		}
		return a, cmd
	case modalEditor:
		outcome, cmd := a.editor.update(msg)
		switch outcome {
		case editorCancel:
			a.editor, a.editingID = nil, ""
			a.modal = modalNone
		case editorSave:
			a.saveEdit()
		}
		return a, cmd
	}
	return a, nil
}

func (a *App) createBundle() {
	name, price, err := a.bundle.request()
	if err != nil {
		a.bundle.err = err.Error()
		return
	}
	b, err := a.catalog.CreateBundle(name, a.bundle.items, price)
	if err != nil {
		a.bundle.err = err.Error()
		return
	}
	a.catalog.ClearSelection()
	a.bundle = nil
	a.modal = modalNone
	a.catalog.SetPage(1)
	a.cursor = 0
	a.setStatus(fmt.Sprintf("created bundle %s ($%s)", b.Name, b.Price.StringFixed(2)))
}

func (a *App) saveEdit() {
	p, err := a.editor.result()
	if err != nil {
		a.editor.err = err.Error()
		return
	}
	p.ID = a.editingID
	d, err := a.catalog.EditProduct(p)
	if err != nil {
		a.editor.err = err.Error()
		return
	}
	a.editor, a.editingID = nil, ""
	a.modal = modalNone
	a.setStatus("saved " + d.Name)
}

// savePrefsCmd persists the theme and layout.
func (a *App) savePrefsCmd() tea.Cmd {
	if a.prefs == nil {
		return nil
	}
	store := *a.prefs
	p := prefs.Prefs{DarkMode: a.dark, Layout: string(a.catalog.Layout())}
	log := a.log
	return func() tea.Msg {
		if err := store.Save(p); err != nil {
			log.Warn("save prefs", zap.Error(err))
			return errMsg{fmt.Errorf("save preferences: %w", err)}
		}
		return nil
	}
}

func (a *App) View() string {
	var body string
	switch a.state {
	case viewChat:
		body = a.renderChat()
	default:
		body = a.renderCatalog()
	}
	if a.modal == modalNone {
		return body
	}
	var card string
	switch a.modal {
	case modalWizard:
		card = a.renderWizard()
	case modalFilter:
		card = a.renderFilters()
	case modalConfirmDelete:
		n := len(a.catalog.SelectedIDs())
		card = a.styles.Title.Render("Delete products") + "\n\n" +
			a.styles.Text.Render(fmt.Sprintf("Delete %d selected item(s)? This cannot be undone.", n)) + "\n\n" +
			a.styles.Key.Render("y") + a.styles.Dim.Render(" delete  ") + a.styles.Key.Render("n") + a.styles.Dim.Render(" keep")
	case modalBundle:
		card = a.bundle.view(a.styles)
	case modalEditor:
		card = a.editor.view(a.styles)
	}
	return renderModal(body, a.styles.Modal.Render(card), a.width, a.height)
}
