package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/budregistry/internal/catalog"
	"github.com/jask/budregistry/internal/product"
)

const (
	gridColumns = 3
	cardWidth   = 30
)

func (a *App) handleCatalogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := a.keys
	v := a.catalog.View()
	n := len(v.Items)
	step := 1
	if v.Layout == catalog.LayoutGrid {
		step = gridColumns
	}
	switch {
	case key.Matches(msg, k.Quit):
		return a, tea.Quit
	case key.Matches(msg, k.Up):
		if a.cursor-step >= 0 {
			a.cursor -= step
		}
	case key.Matches(msg, k.Down):
		if a.cursor+step < n {
			a.cursor += step
		}
	case key.Matches(msg, k.Left):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(msg, k.Right):
		if a.cursor < n-1 {
			a.cursor++
		}
	case key.Matches(msg, k.NextPage):
		a.catalog.NextPage()
		a.cursor = 0
	case key.Matches(msg, k.PrevPage):
		a.catalog.PrevPage()
		a.cursor = 0
	case key.Matches(msg, k.PageSize):
		size := a.catalog.CyclePageSize()
		a.cursor = 0
		a.setStatus(fmt.Sprintf("%d per page", size))
	case key.Matches(msg, k.Layout):
		a.catalog.ToggleLayout()
		return a, a.savePrefsCmd()
	case key.Matches(msg, k.Select):
		if it, ok := a.current(); ok {
			a.catalog.ToggleSelect(it.ID)
		}
	case key.Matches(msg, k.SelectAll):
		a.catalog.ToggleSelectAll()
	case key.Matches(msg, k.Delete):
		if len(a.catalog.SelectedIDs()) == 0 {
			a.setStatus("select products to delete")
			return a, nil
		}
		a.modal = modalConfirmDelete
	case key.Matches(msg, k.Bundle):
		sel := a.catalog.SelectedProducts()
		if len(sel) == 0 {
			a.setStatus("select products to bundle")
			return a, nil
		}
		items := make([]catalog.BundleItem, len(sel))
		for i, p := range sel {
			items[i] = catalog.BundleItem{Product: p, Units: 1}
		}
		a.bundle = newBundle(items)
		a.modal = modalBundle
		return a, textinput.Blink
	case key.Matches(msg, k.Edit):
		it, ok := a.current()
		if !ok {
			return a, nil
		}
		a.editor = newEditor("Edit "+it.Name, product.FromDashboard(it))
		a.editingID = it.ID
		a.modal = modalEditor
		return a, textinput.Blink
	case key.Matches(msg, k.Register):
		return a, a.openWizard()
	case key.Matches(msg, k.Filter):
		a.filterCursor = 0
		a.modal = modalFilter
	case key.Matches(msg, k.Search):
		a.searching = true
		a.searchInput.Focus()
		return a, textinput.Blink
	case key.Matches(msg, k.Chat):
		return a, a.openChat()
	case key.Matches(msg, k.Theme):
		a.applyTheme(!a.dark)
		a.refreshChat()
		return a, a.savePrefsCmd()
	case msg.String() == "esc":
		a.catalog.ClearSelection()
	case msg.String() == "?":
		a.help.ShowAll = !a.help.ShowAll
	}
	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.searching = false
		a.searchInput.Blur()
		return a, nil
	case "esc":
		a.searching = false
		a.searchInput.Blur()
		a.searchInput.SetValue("")
		a.catalog.SetSearch("")
		a.cursor = 0
		return a, nil
	}
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	a.catalog.SetSearch(a.searchInput.Value())
	a.cursor = 0
	return a, cmd
}

type filterRow struct {
	facet  catalog.Facet
	option catalog.FilterOption
}

func (a *App) filterRows() []filterRow {
	var rows []filterRow
	for _, g := range a.catalog.FilterGroups() {
		for _, o := range g.Options {
			rows = append(rows, filterRow{facet: g.Facet, option: o})
		}
	}
	return rows
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := a.filterRows()
	switch msg.String() {
	case "esc", "f", "q":
		a.modal = modalNone
	case "up", "k":
		if a.filterCursor > 0 {
			a.filterCursor--
		}
	case "down", "j":
		if a.filterCursor < len(rows)-1 {
			a.filterCursor++
		}
	case " ", "enter":
		if a.filterCursor < len(rows) {
			r := rows[a.filterCursor]
			if _, err := a.catalog.ToggleFilter(r.facet, r.option.ID); err != nil {
				a.setError(err)
			}
			a.cursor = 0
		}
	case "c":
		a.catalog.ClearFilters()
		a.cursor = 0
	}
	return a, nil
}

func (a *App) current() (product.DashboardProduct, bool) {
	v := a.catalog.View()
	if a.cursor < 0 || a.cursor >= len(v.Items) {
		return product.DashboardProduct{}, false
	}
	return v.Items[a.cursor], true
}

func (a *App) clampCursor() {
	n := len(a.catalog.View().Items)
	if a.cursor >= n {
		a.cursor = max(0, n-1)
	}
}

func (a *App) renderCatalog() string {
	a.clampCursor()
	s := a.styles
	v := a.catalog.View()

	var b strings.Builder
	b.WriteString(s.Title.Render("budregistry"))
	b.WriteString(s.Dim.Render(fmt.Sprintf("  %d of %d entries", v.Filtered, v.All)))
	if v.Filters.Len() > 0 {
		b.WriteString("  " + s.Badge.Render(v.Filters.String()))
	}
	b.WriteString("\n")
	if a.searching || v.Search != "" {
		b.WriteString(a.searchInput.View() + "\n")
	}
	b.WriteString("\n")

	if len(v.Items) == 0 {
		b.WriteString(s.Dim.Render("Nothing matches. Press f to adjust filters or r to register a product.") + "\n")
	} else if v.Layout == catalog.LayoutList {
		b.WriteString(a.renderList(v.Items))
	} else {
		b.WriteString(a.renderGrid(v.Items))
	}

	sel := len(a.catalog.SelectedIDs())
	footer := fmt.Sprintf("%s · %d per page · %s", v.Label(), v.PageSize, v.Layout)
	if sel > 0 {
		footer += s.Selected.Render(fmt.Sprintf(" · %d selected", sel))
	}
	b.WriteString("\n" + s.Status.Render(footer) + "\n")
	if a.status != "" {
		if a.statusErr {
			b.WriteString(s.Error.Render(a.status) + "\n")
		} else {
			b.WriteString(s.Success.Render(a.status) + "\n")
		}
	}
	b.WriteString(a.help.View(a.keys))
	return b.String()
}

func (a *App) renderGrid(items []product.DashboardProduct) string {
	s := a.styles
	var rows []string
	for start := 0; start < len(items); start += gridColumns {
		end := min(start+gridColumns, len(items))
		cards := make([]string, 0, gridColumns)
		for i := start; i < end; i++ {
			it := items[i]
			style := s.Card
			if i == a.cursor {
				style = s.CardFocus
			}
			cards = append(cards, style.Width(cardWidth).Render(a.cardBody(it)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n"
}

func (a *App) cardBody(it product.DashboardProduct) string {
	s := a.styles
	inner := cardWidth - 2
	head := a.checkbox(it.ID) + " " + s.Header.Render(truncate(it.Name, inner-4))
	brand := truncate(strings.Join(it.Brands, ", "), inner)
	meta := it.Category
	if it.Potency != "" {
		meta += " · " + it.Potency
	}
	status := lipgloss.NewStyle().Foreground(s.Palette.StatusColor(it.EffectiveStatus())).Render(it.EffectiveStatus())
	markets := fmt.Sprintf("%d/%d markets", it.TotalMarkets(), it.MarketCapacity)
	lines := []string{head, s.Text.Render(brand), s.Dim.Render(truncate(meta, inner)), s.Dim.Render(markets) + "  " + status}
	if it.IsBundle() {
		lines = append(lines, s.Badge.Render("Bundle")+" "+s.Dim.Render(fmt.Sprintf("%d items", len(it.SubProducts))))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderList(items []product.DashboardProduct) string {
	s := a.styles
	var b strings.Builder
	b.WriteString(s.Header.Render(fmt.Sprintf("    %-30s %-20s %-12s %-10s %-9s %s", "Name", "Brand", "Category", "Type", "Markets", "Status")) + "\n")
	for i, it := range items {
		row := fmt.Sprintf("%-30s %-20s %-12s %-10s %-9s %s",
			truncate(it.Name, 30), truncate(strings.Join(it.Brands, ", "), 20), truncate(it.Category, 12),
			it.Type, fmt.Sprintf("%d/%d", it.TotalMarkets(), it.MarketCapacity), it.EffectiveStatus())
		if i == a.cursor {
			row = s.Cursor.Render(row)
		} else {
			row = s.Text.Render(row)
		}
		b.WriteString(a.checkbox(it.ID) + " " + row + "\n")
	}
	return b.String()
}

func (a *App) checkbox(id string) string {
	if a.catalog.IsSelected(id) {
		return a.styles.Selected.Render("[x]")
	}
	return a.styles.Dim.Render("[ ]")
}

func (a *App) renderFilters() string {
	s := a.styles
	f := a.catalog.Filters()
	var b strings.Builder
	b.WriteString(s.Title.Render("Filters") + "\n")
	var last catalog.Facet
	for i, r := range a.filterRows() {
		if r.facet != last {
			b.WriteString("\n" + s.Header.Render(strings.ToUpper(string(r.facet))) + "\n")
			last = r.facet
		}
		mark := "[ ]"
		if f.Has(r.facet, r.option.ID) {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s (%d)", mark, r.option.Label, r.option.Count)
		if i == a.filterCursor {
			line = s.Cursor.Render(line)
		} else {
			line = s.Text.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + s.Status.Render("space toggle · c clear all · esc close"))
	return b.String()
}
