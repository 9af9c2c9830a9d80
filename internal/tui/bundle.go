package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/jask/budregistry/internal/catalog"
	"github.com/jask/budregistry/internal/theme"
)

const (
	bundleFocusName = iota
	bundleFocusPrice
	bundleFocusItems
)

// bundleModel builds a bundle from the current selection.
type bundleModel struct {
	items []catalog.BundleItem
	name  textinput.Model
	price textinput.Model
	focus int
	item  int
	err   string
}

func newBundle(items []catalog.BundleItem) *bundleModel {
	name := textinput.New()
	name.Placeholder = "Bundle name"
	name.CharLimit = 80
	name.Focus()
	price := textinput.New()
	price.Placeholder = "0.00"
	price.CharLimit = 12
	return &bundleModel{items: items, name: name, price: price}
}

// request validates the form. The engine does the rest.
func (m *bundleModel) request() (string, decimal.Decimal, error) {
	name := strings.TrimSpace(m.name.Value())
	if name == "" {
		return "", decimal.Zero, fmt.Errorf("%w: name is required", catalog.ErrInvalidBundle)
	}
	raw := strings.TrimPrefix(strings.TrimSpace(m.price.Value()), "$")
	if raw == "" {
		return name, decimal.Zero, nil
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("%w: price %q", catalog.ErrInvalidBundle, m.price.Value())
	}
	return name, price.Round(2), nil
}

func (m *bundleModel) setFocus(f int) {
	m.focus = f
	m.name.Blur()
	m.price.Blur()
	switch f {
	case bundleFocusName:
		m.name.Focus()
	case bundleFocusPrice:
		m.price.Focus()
	}
}

// update returns true once the user submits.
func (m *bundleModel) update(msg tea.KeyMsg) (submit bool, cmd tea.Cmd) {
	switch msg.String() {
	case "enter":
		return true, nil
	case "tab":
		m.setFocus((m.focus + 1) % 3)
		return false, nil
	case "shift+tab":
		m.setFocus((m.focus + 2) % 3)
		return false, nil
	}
	switch m.focus {
	case bundleFocusName:
		m.name, cmd = m.name.Update(msg)
	case bundleFocusPrice:
		m.price, cmd = m.price.Update(msg)
	default:
		switch msg.String() {
		case "up", "k":
			if m.item > 0 {
				m.item--
			}
		case "down", "j":
			if m.item < len(m.items)-1 {
				m.item++
			}
		case "+", "=", "right", "l":
			m.items[m.item].Units++
		case "-", "left", "h":
			if m.items[m.item].Units > 1 {
				m.items[m.item].Units--
			}
		}
	}
	return false, cmd
}

func (m *bundleModel) view(s theme.Styles) string {
	var b strings.Builder
	b.WriteString(s.Title.Render("New bundle") + "\n\n")
	label := func(f int, text string) string {
		if m.focus == f {
			return s.Key.Render(text)
		}
		return s.Dim.Render(text)
	}
	b.WriteString(label(bundleFocusName, "Name   ") + " " + m.name.View() + "\n")
	b.WriteString(label(bundleFocusPrice, "Price $ ") + m.price.View() + "\n\n")
	b.WriteString(label(bundleFocusItems, "Items") + "\n")
	for i, it := range m.items {
		line := fmt.Sprintf("%3d × %s", it.Units, truncate(it.Product.Name, 36))
		if m.focus == bundleFocusItems && i == m.item {
			line = s.Cursor.Render(line)
		} else {
			line = s.Text.Render(line)
		}
		b.WriteString("  " + line + "\n")
	}
	if m.err != "" {
		b.WriteString("\n" + s.Error.Render(m.err) + "\n")
	}
	b.WriteString("\n" + s.Status.Render("tab field · +/- units · enter create · esc cancel"))
	return b.String()
}
