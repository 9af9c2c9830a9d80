package assistant

import (
	"fmt"
	"strings"
)

// Markdown renders a reply for a markdown renderer such as glamour.
func (r Reply) Markdown() string {
	var b strings.Builder
	if t := strings.TrimSpace(r.Text); t != "" {
		b.WriteString(t)
		b.WriteString("\n\n")
	}
	for _, blk := range r.Blocks {
		writeBlock(&b, blk)
	}
	if len(r.Suggestions) > 0 {
		b.WriteString("**Try:** ")
		labels := make([]string, len(r.Suggestions))
		for i, a := range r.Suggestions {
			labels[i] = fmt.Sprintf("`%d` %s", i+1, a.Label)
		}
		b.WriteString(strings.Join(labels, " · "))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeBlock(b *strings.Builder, blk Block) {
	switch blk.Kind {
	case KindTable:
		if blk.Table == nil {
			return
		}
		if blk.Table.Title != "" {
			fmt.Fprintf(b, "**%s**\n\n", blk.Table.Title)
		}
		b.WriteString("| " + strings.Join(escapeCells(blk.Table.Columns), " | ") + " |\n")
		seps := make([]string, len(blk.Table.Columns))
		for i := range seps {
			seps[i] = "---"
		}
		b.WriteString("| " + strings.Join(seps, " | ") + " |\n")
		for _, row := range blk.Table.Rows {
			b.WriteString("| " + strings.Join(escapeCells(row), " | ") + " |\n")
		}
		b.WriteString("\n")
	case KindEntity:
		if blk.Entity == nil {
			return
		}
		e := blk.Entity
		fmt.Fprintf(b, "### %s\n", e.Title)
		if e.Subtitle != "" || e.Status != "" {
			parts := []string{}
			if e.Subtitle != "" {
				parts = append(parts, e.Subtitle)
			}
			if e.Status != "" {
				parts = append(parts, "_"+e.Status+"_")
			}
			b.WriteString(strings.Join(parts, " · ") + "\n")
		}
		b.WriteString("\n")
		for _, f := range e.Fields {
			fmt.Fprintf(b, "- **%s:** %s\n", f.Label, f.Value)
		}
		b.WriteString("\n")
	case KindStats:
		for _, s := range blk.Stats {
			if s.Delta != "" {
				fmt.Fprintf(b, "- **%s** %s (%s)\n", s.Value, s.Label, s.Delta)
			} else {
				fmt.Fprintf(b, "- **%s** %s\n", s.Value, s.Label)
			}
		}
		b.WriteString("\n")
	case KindAlert:
		if blk.Alert == nil {
			return
		}
		fmt.Fprintf(b, "> **%s %s**", alertIcon(blk.Alert.Level), blk.Alert.Title)
		if blk.Alert.Message != "" {
			fmt.Fprintf(b, "\n> %s", blk.Alert.Message)
		}
		b.WriteString("\n\n")
	case KindSteps:
		if blk.Steps == nil {
			return
		}
		for i, item := range blk.Steps.Items {
			switch {
			case i < blk.Steps.Current:
				fmt.Fprintf(b, "%d. ~~%s~~\n", i+1, item)
			case i == blk.Steps.Current:
				fmt.Fprintf(b, "%d. **%s**\n", i+1, item)
			default:
				fmt.Fprintf(b, "%d. %s\n", i+1, item)
			}
		}
		b.WriteString("\n")
	}
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return out
}

func alertIcon(l AlertLevel) string {
	switch l {
	case AlertSuccess:
		return "✓"
	case AlertWarning:
		return "!"
	case AlertError:
		return "✗"
	default:
		return "i"
	}
}
