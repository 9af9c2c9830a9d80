package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/budregistry/internal/product"
	"github.com/jask/budregistry/internal/theme"
)

type editorOutcome int

const (
	editorOpen editorOutcome = iota
	editorSave
	editorCancel
)

var fieldLabels = map[string]string{
	product.FieldName:          "Name",
	product.FieldLicenseNumber: "License",
	product.FieldBrand:         "Brand",
	product.FieldCategory:      "Category",
	product.FieldSubspecies:    "Subspecies",
	product.FieldStrain:        "Strain",
	product.FieldPotency:       "Potency",
	product.FieldDescription:   "Description",
	product.FieldImage:         "Image",
	product.FieldUPC:           "UPC",
	product.FieldCapacity:      "Capacity",
}

// editorModel is the one product form behind both the catalog's edit path and
// the wizard's Edit step. Focus runs over the text fields, then the market
// chips, then the feeling chips.
type editorModel struct {
	title  string
	form   *product.EditForm
	inputs []textinput.Model
	focus  int
	chip   int
	err    string
}

func newEditor(title string, p product.Product) *editorModel {
	e := &editorModel{title: title, form: product.NewEditForm(p)}
	e.inputs = make([]textinput.Model, len(product.TextFields))
	for i, f := range product.TextFields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 200
		ti.Width = 40
		ti.SetValue(e.form.Get(f))
		e.inputs[i] = ti
	}
	e.inputs[0].Focus()
	return e
}

func (e *editorModel) marketRow() int  { return len(e.inputs) }
func (e *editorModel) feelingRow() int { return len(e.inputs) + 1 }

func (e *editorModel) setFocus(i int) {
	n := e.feelingRow() + 1
	i = (i%n + n) % n
	if e.focus < len(e.inputs) {
		e.inputs[e.focus].Blur()
	}
	e.focus = i
	e.chip = 0
	if i < len(e.inputs) {
		e.inputs[i].Focus()
	}
}

func (e *editorModel) update(msg tea.KeyMsg) (editorOutcome, tea.Cmd) {
	switch msg.String() {
	case "ctrl+s":
		if _, err := e.form.Result(); err != nil {
			e.err = err.Error()
			return editorOpen, nil
		}
		return editorSave, nil
	case "esc":
		return editorCancel, nil
	case "tab", "down":
		e.setFocus(e.focus + 1)
		return editorOpen, nil
	case "shift+tab", "up":
		e.setFocus(e.focus - 1)
		return editorOpen, nil
	}

	switch e.focus {
	case e.marketRow():
		e.chipKey(msg, product.Markets, func(code string) {
			if err := e.form.ToggleMarket(code); err != nil {
				e.err = err.Error()
			}
		})
		return editorOpen, nil
	case e.feelingRow():
		e.chipKey(msg, product.Feelings, e.form.ToggleFeeling)
		return editorOpen, nil
	}

	var cmd tea.Cmd
	e.inputs[e.focus], cmd = e.inputs[e.focus].Update(msg)
	field := product.TextFields[e.focus]
	if err := e.form.Set(field, e.inputs[e.focus].Value()); err != nil {
		e.err = err.Error()
	} else {
		e.err = ""
	}
	return editorOpen, cmd
}

func (e *editorModel) chipKey(msg tea.KeyMsg, options []string, toggle func(string)) {
	switch msg.String() {
	case "left", "h":
		if e.chip > 0 {
			e.chip--
		}
	case "right", "l":
		if e.chip < len(options)-1 {
			e.chip++
		}
	case " ", "enter":
		toggle(options[e.chip])
	}
}

// result is the normalized product the save callback receives.
func (e *editorModel) result() (product.Product, error) {
	return e.form.Result()
}

func (e *editorModel) view(s theme.Styles) string {
	var b strings.Builder
	b.WriteString(s.Title.Render(e.title))
	b.WriteString("\n\n")
	for i, f := range product.TextFields {
		label := fmt.Sprintf("%-12s", fieldLabels[f])
		if i == e.focus {
			b.WriteString(s.Key.Render(label))
		} else {
			b.WriteString(s.Dim.Render(label))
		}
		b.WriteString(" " + e.inputs[i].View() + "\n")
	}
	b.WriteString("\n")
	b.WriteString(e.chipsView(s, "Markets", product.Markets, e.form.HasMarket, e.focus == e.marketRow()))
	b.WriteString("\n")
	b.WriteString(e.chipsView(s, "Feelings", product.Feelings, e.form.HasFeeling, e.focus == e.feelingRow()))
	b.WriteString("\n")
	p := e.form.Product()
	b.WriteString(s.Dim.Render(fmt.Sprintf("%d of %d markets active", p.TotalMarkets(), max(p.MarketCapacity, p.TotalMarkets()))))
	b.WriteString("\n")
	if e.err != "" {
		b.WriteString(s.Error.Render(e.err) + "\n")
	}
	b.WriteString(s.Status.Render("tab next field · space toggle chip · ctrl+s save · esc cancel"))
	return b.String()
}

func (e *editorModel) chipsView(s theme.Styles, label string, options []string, on func(string) bool, focused bool) string {
	parts := make([]string, len(options))
	for i, o := range options {
		txt := o
		if on(o) {
			txt = s.Selected.Render("●" + o)
		} else {
			txt = s.Dim.Render("○" + o)
		}
		if focused && i == e.chip {
			txt = s.Cursor.Render(o)
		}
		parts[i] = txt
	}
	head := s.Dim.Render(fmt.Sprintf("%-12s", label))
	if focused {
		head = s.Key.Render(fmt.Sprintf("%-12s", label))
	}
	return head + " " + strings.Join(parts, " ")
}
