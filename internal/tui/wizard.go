package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/budregistry/internal/product"
	"github.com/jask/budregistry/internal/search"
	"github.com/jask/budregistry/internal/service"
	"github.com/jask/budregistry/internal/wizard"
)

// wizardView is the registration overlay around a wizard.Wizard.
type wizardView struct {
	w      *wizard.Wizard
	query  textinput.Model
	cursor int
	lookup *search.Lookup
	editor *editorModel
	err    string
}

func newWizardView(uc wizard.UseCase, log *zap.Logger) *wizardView {
	q := textinput.New()
	q.Placeholder = "Search by name, license or UPC"
	q.CharLimit = 120
	q.Width = 44
	q.Focus()
	return &wizardView{w: wizard.New(uc, log), query: q}
}

func (a *App) openWizard() tea.Cmd {
	a.wiz = newWizardView(a.useCase, a.log)
	a.modal = modalWizard
	return textinput.Blink
}

func (a *App) closeWizard() {
	if a.wiz != nil && a.wiz.lookup != nil {
		a.wiz.lookup.Cancel()
	}
	a.wiz = nil
	a.modal = modalNone
}

func (a *App) startLookup(t wizard.Ticket) tea.Cmd {
	if a.wiz.lookup != nil {
		a.wiz.lookup.Cancel()
		a.wiz.lookup = nil
	}
	if !t.Valid() {
		return nil
	}
	l := search.Start(a.ctx, a.searcher, t.Query)
	a.wiz.lookup = l
	return tea.Batch(a.spinner.Tick, func() tea.Msg {
		res, err := l.Result()
		return lookupMsg{ticket: t, results: res, err: err}
	})
}

func (a *App) startGenerate() tea.Cmd {
	if a.generator == nil {
		a.wiz.err = "AI drafting is not configured"
		return nil
	}
	t, err := a.wiz.w.BeginGenerate()
	if err != nil {
		a.wiz.err = err.Error()
		return nil
	}
	if a.wiz.lookup != nil {
		a.wiz.lookup.Cancel()
		a.wiz.lookup = nil
	}
	a.wiz.err = ""
	gen, ctx := a.generator, a.ctx
	return tea.Batch(a.spinner.Tick, func() tea.Msg {
		p, err := gen.Draft(ctx, t.Query)
		return generatedMsg{ticket: t, product: p, err: err}
	})
}

func (a *App) applyLookup(m lookupMsg) {
	if a.wiz == nil {
		return
	}
	if a.wiz.w.ApplyResults(m.ticket, m.results, m.err) {
		a.wiz.lookup = nil
		a.wiz.cursor = 0
	}
}

func (a *App) applyGenerated(m generatedMsg) tea.Cmd {
	if a.wiz == nil {
		return nil
	}
	if !a.wiz.w.FinishGenerate(m.ticket, m.product) {
		return nil
	}
	switch {
	case errors.Is(m.err, service.ErrBusy):
		a.wiz.err = "a draft is already being generated"
	case m.err != nil:
		a.wiz.err = m.err.Error()
	case m.product == nil:
		a.wiz.err = "could not generate a draft; try again or create one manually"
	}
	return a.syncWizardEditor()
}

// syncWizardEditor opens the shared editor when the wizard enters Edit and
// drops it when it leaves.
func (a *App) syncWizardEditor() tea.Cmd {
	draft, ok := a.wiz.w.Draft()
	switch {
	case ok && a.wiz.editor == nil:
		title := "Register product"
		if e, isEdit := a.wiz.w.State().(wizard.Edit); isEdit && e.Origin == wizard.OriginGenerated {
			title = "Review generated draft"
		}
		a.wiz.editor = newEditor(title, draft)
		return textinput.Blink
	case !ok:
		a.wiz.editor = nil
	}
	return nil
}

func (a *App) handleWizardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	wv := a.wiz
	wv.err = ""
	var cmd tea.Cmd
	switch st := wv.w.State().(type) {
	case wizard.Search:
		cmd = a.wizardSearchKey(msg, st)
	case wizard.Confirm:
		switch msg.String() {
		case "enter", "right":
			a.wizardErr(wv.w.Next())
			wv.cursor = 0
		case "backspace", "left":
			a.wizardErr(wv.w.Back())
			wv.cursor = 0
		case "esc":
			a.requestWizardClose()
		}
	case wizard.MarketSelection:
		switch msg.String() {
		case "left", "h", "up", "k":
			if wv.cursor > 0 {
				wv.cursor--
			}
		case "right", "l", "down", "j":
			if wv.cursor < len(product.Markets)-1 {
				wv.cursor++
			}
		case " ":
			a.wizardErr(wv.w.ToggleMarket(product.Markets[wv.cursor]))
		case "enter":
			if !wv.w.CanNext() {
				wv.err = "choose at least one market"
			} else {
				a.wizardErr(wv.w.Next())
			}
		case "backspace":
			a.wizardErr(wv.w.Back())
		case "esc":
			a.requestWizardClose()
		}
	case wizard.Edit:
		return a, a.wizardEditKey(msg)
	case wizard.ExitPrompt:
		switch msg.String() {
		case "y", "enter":
			a.wizardErr(wv.w.ConfirmExit())
		case "n", "esc":
			a.wizardErr(wv.w.DismissExit())
		}
	}
	if a.wiz != nil && a.wiz.w.IsClosed() {
		a.closeWizard()
		return a, cmd
	}
	if a.wiz != nil {
		return a, tea.Batch(cmd, a.syncWizardEditor())
	}
	return a, cmd
}

func (a *App) wizardSearchKey(msg tea.KeyMsg, st wizard.Search) tea.Cmd {
	wv := a.wiz
	switch msg.String() {
	case "esc":
		a.requestWizardClose()
		return nil
	case "up":
		if wv.cursor > 0 {
			wv.cursor--
		}
		return nil
	case "down":
		if wv.cursor < len(st.Candidates)-1 {
			wv.cursor++
		}
		return nil
	case "enter":
		switch {
		case st.Status == wizard.StatusResults && wv.cursor < len(st.Candidates):
			a.wizardErr(wv.w.SelectCandidate(st.Candidates[wv.cursor].ID))
		case wv.w.CanCreateNew():
			a.wizardErr(wv.w.CreateNew())
		}
		return nil
	case "ctrl+n":
		if wv.w.CanCreateNew() {
			a.wizardErr(wv.w.CreateNew())
		}
		return nil
	case "ctrl+g":
		return a.startGenerate()
	}
	if st.Status == wizard.StatusGenerating {
		return nil
	}
	before := wv.query.Value()
	var cmd tea.Cmd
	wv.query, cmd = wv.query.Update(msg)
	if wv.query.Value() == before {
		return cmd
	}
	t, err := wv.w.SetQuery(wv.query.Value())
	if err != nil {
		a.wizardErr(err)
		return cmd
	}
	wv.cursor = 0
	return tea.Batch(cmd, a.startLookup(t))
}

func (a *App) wizardEditKey(msg tea.KeyMsg) tea.Cmd {
	wv := a.wiz
	if wv.editor == nil {
		return a.syncWizardEditor()
	}
	outcome, cmd := wv.editor.update(msg)
	switch outcome {
	case editorCancel:
		a.wizardErr(wv.w.Cancel())
		wv.editor = nil
		wv.query.SetValue("")
		wv.query.Focus()
		wv.cursor = 0
	case editorSave:
		p, err := wv.editor.result()
		if err != nil {
			wv.editor.err = err.Error()
			return cmd
		}
		saved, err := wv.w.Save(p)
		if err != nil {
			wv.editor.err = err.Error()
			return cmd
		}
		d, err := a.catalog.Register(saved)
		if err != nil {
			a.setError(err)
		} else {
			a.setStatus(fmt.Sprintf("registered %s", d.Name))
		}
		a.closeWizard()
	}
	return cmd
}

func (a *App) requestWizardClose() {
	closed, err := a.wiz.w.RequestClose()
	a.wizardErr(err)
	if closed {
		a.closeWizard()
	}
}

func (a *App) wizardErr(err error) {
	if err != nil && a.wiz != nil {
		a.wiz.err = err.Error()
	}
}

func (a *App) renderWizard() string {
	wv := a.wiz
	s := a.styles
	if wv.editor != nil {
		return wv.editor.view(s)
	}
	var b strings.Builder
	b.WriteString(s.Title.Render("Register product"))
	b.WriteString(s.Dim.Render("  " + wv.w.Step().String()))
	b.WriteString("\n\n")

	st := wv.w.State()
	if p, ok := st.(wizard.ExitPrompt); ok {
		b.WriteString(s.Text.Render("Discard what you've entered so far?") + "\n\n")
		b.WriteString(s.Key.Render("y") + s.Dim.Render(" discard  ") + s.Key.Render("n") + s.Dim.Render(" keep editing"))
		b.WriteString("\n" + s.Dim.Render("paused on "+p.Resume.Step().String()))
		return b.String()
	}

	switch st := st.(type) {
	case wizard.Search:
		b.WriteString(wv.query.View() + "\n\n")
		switch st.Status {
		case wizard.StatusLoading:
			b.WriteString(a.spinner.View() + s.Dim.Render(" searching…") + "\n")
		case wizard.StatusGenerating:
			b.WriteString(a.spinner.View() + s.Dim.Render(" drafting with AI…") + "\n")
		case wizard.StatusNoMatches:
			b.WriteString(s.Text.Render(fmt.Sprintf("No matches for %q.", st.Query)) + "\n")
			b.WriteString(s.Key.Render("enter") + s.Dim.Render(" create new  ") + s.Key.Render("ctrl+g") + s.Dim.Render(" draft with AI") + "\n")
		case wizard.StatusResults:
			for i, c := range st.Candidates {
				line := fmt.Sprintf("%-32s %-14s %s", truncate(c.Name, 32), truncate(c.Brand, 14), c.LicenseNumber)
				if i == wv.cursor {
					line = s.Cursor.Render(line)
				} else {
					line = s.Text.Render(line)
				}
				b.WriteString(line + "\n")
			}
		default:
			b.WriteString(s.Dim.Render("Type to search the licensed registry.") + "\n")
		}
		if wv.w.CanGenerate() && st.Status == wizard.StatusResults {
			b.WriteString("\n" + s.Key.Render("ctrl+g") + s.Dim.Render(" draft with AI instead") + "\n")
		}
	case wizard.Confirm:
		c := st.Candidate
		b.WriteString(s.Header.Render(c.Name) + "\n")
		b.WriteString(s.Text.Render(fmt.Sprintf("%s · %s · %s", c.Brand, c.Category, c.LicenseNumber)) + "\n")
		if c.Potency != "" {
			b.WriteString(s.Dim.Render("potency "+c.Potency) + "\n")
		}
		if len(c.Markets) > 0 {
			b.WriteString(s.Dim.Render("markets "+strings.Join(c.Markets, ", ")) + "\n")
		}
		b.WriteString("\n" + s.Key.Render("enter") + s.Dim.Render(" continue  ") + s.Key.Render("backspace") + s.Dim.Render(" back") + "\n")
	case wizard.MarketSelection:
		b.WriteString(s.Text.Render("Where will "+st.Candidate.Name+" be sold?") + "\n\n")
		chosen := map[string]bool{}
		for _, m := range st.Markets {
			chosen[m] = true
		}
		parts := make([]string, len(product.Markets))
		for i, m := range product.Markets {
			txt := s.Dim.Render("○" + m)
			if chosen[m] {
				txt = s.Selected.Render("●" + m)
			}
			if i == wv.cursor {
				txt = s.Cursor.Render(m)
			}
			parts[i] = txt
		}
		b.WriteString(strings.Join(parts, " ") + "\n\n")
		b.WriteString(s.Key.Render("space") + s.Dim.Render(" toggle  ") + s.Key.Render("enter") + s.Dim.Render(" continue  ") + s.Key.Render("backspace") + s.Dim.Render(" back") + "\n")
	}
	if wv.err != "" {
		b.WriteString("\n" + s.Error.Render(wv.err) + "\n")
	}
	b.WriteString("\n" + s.Status.Render("esc close"))
	return b.String()
}
