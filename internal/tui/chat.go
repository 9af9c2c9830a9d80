package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jask/budregistry/internal/assistant"
)

// chatPanel is the assistant view: transcript viewport plus an input line.
type chatPanel struct {
	conv     *assistant.Conversation
	input    textinput.Model
	viewport viewport.Model
	pending  string
	seq      uint64
	cancel   context.CancelFunc
	err      string

	renderer    *glamour.TermRenderer
	rendererKey string
}

func newChatPanel(conv *assistant.Conversation) *chatPanel {
	in := textinput.New()
	in.Placeholder = "Ask about your catalog…"
	in.CharLimit = 500
	return &chatPanel{conv: conv, input: in, viewport: viewport.New(80, 20)}
}

func (c *chatPanel) lastReply() *assistant.Reply {
	h := c.conv.History()
	for i := len(h) - 1; i >= 0; i-- {
		if h[i].Reply != nil {
			return h[i].Reply
		}
	}
	return nil
}

func (a *App) openChat() tea.Cmd {
	if a.chat == nil {
		a.setStatus("assistant unavailable")
		return nil
	}
	a.state = viewChat
	a.chat.input.Focus()
	a.refreshChat()
	return textinput.Blink
}

func (a *App) sendChat(text string) tea.Cmd {
	c := a.chat
	text = strings.TrimSpace(text)
	if text == "" || c.pending != "" {
		return nil
	}
	ctx, cancel := context.WithCancel(a.ctx)
	c.seq++
	seq := c.seq
	c.pending = text
	c.cancel = cancel
	c.err = ""
	c.input.SetValue("")
	a.refreshChat()
	conv := c.conv
	return tea.Batch(a.spinner.Tick, func() tea.Msg {
		defer cancel()
		reply, err := conv.Send(ctx, text)
		return chatReplyMsg{seq: seq, input: text, reply: reply, err: err}
	})
}

func (a *App) applyChatReply(m chatReplyMsg) {
	c := a.chat
	// a cancelled request may still report after a resend of the same text
	if c == nil || c.pending == "" || m.seq != c.seq {
		return
	}
	c.pending = ""
	c.cancel = nil
	if m.err != nil && !errors.Is(m.err, context.Canceled) {
		c.err = m.err.Error()
	}
	a.refreshChat()
}

func (a *App) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := a.chat
	switch msg.String() {
	case "esc":
		if c.cancel != nil {
			c.cancel()
			c.pending = ""
			c.cancel = nil
			a.refreshChat()
			return a, nil
		}
		c.input.Blur()
		a.state = viewCatalog
		return a, nil
	case "enter":
		return a, a.sendChat(c.input.Value())
	case "ctrl+l":
		if c.pending == "" {
			c.conv.Reset()
			a.refreshChat()
		}
		return a, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		c.viewport, cmd = c.viewport.Update(msg)
		return a, cmd
	}
	// digits pick a suggestion while the input is empty
	if c.input.Value() == "" && len(msg.Runes) == 1 {
		if n, err := strconv.Atoi(string(msg.Runes)); err == nil {
			if r := c.lastReply(); r != nil && n >= 1 && n <= len(r.Suggestions) {
				return a, a.sendChat(r.Suggestions[n-1].Prompt)
			}
		}
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return a, cmd
}

func (a *App) resizeChat() {
	if a.chat == nil || a.width <= 0 {
		return
	}
	a.chat.viewport.Width = a.width
	a.chat.viewport.Height = max(3, a.height-5)
	a.chat.input.Width = max(10, a.width-4)
	a.refreshChat()
}

// markdown renders through glamour, falling back to the raw text.
func (a *App) markdown(md string) string {
	c := a.chat
	width := max(20, c.viewport.Width-2)
	style := "light"
	if a.dark {
		style = "dark"
	}
	key := style + ":" + strconv.Itoa(width)
	if c.renderer == nil || c.rendererKey != key {
		r, err := glamour.NewTermRenderer(glamour.WithStandardStyle(style), glamour.WithWordWrap(width))
		if err != nil {
			return md
		}
		c.renderer, c.rendererKey = r, key
	}
	out, err := c.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func (a *App) refreshChat() {
	c := a.chat
	if c == nil {
		return
	}
	s := a.styles
	var b strings.Builder
	history := c.conv.History()
	if len(history) == 0 && c.pending == "" {
		b.WriteString(s.Dim.Render("Ask about products, markets or pending approvals. Try “Show my top products”."))
	}
	for _, t := range history {
		if t.Role == assistant.RoleUser {
			b.WriteString(s.Key.Render("you ") + s.Text.Render(t.Text) + "\n")
			continue
		}
		if t.Reply != nil {
			b.WriteString(a.markdown(t.Reply.Markdown()) + "\n")
		} else {
			b.WriteString(s.Text.Render(t.Text) + "\n")
		}
	}
	if c.pending != "" {
		b.WriteString(s.Key.Render("you ") + s.Text.Render(c.pending) + "\n")
		b.WriteString(a.spinner.View() + s.Dim.Render(" thinking…"))
	}
	if c.err != "" {
		b.WriteString("\n" + s.Error.Render(c.err))
	}
	c.viewport.SetContent(b.String())
	c.viewport.GotoBottom()
}

func (a *App) renderChat() string {
	c := a.chat
	s := a.styles
	head := s.Title.Render("Assistant") + s.Dim.Render("  esc back · ctrl+l clear · 1-9 pick a suggestion")
	return head + "\n" + c.viewport.View() + "\n" + s.Panel.Render(c.input.View())
}
