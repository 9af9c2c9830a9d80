package assistant

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jask/budregistry/internal/llm"
)

//go:embed table.yaml
var defaultTable []byte

// Replies maps exact inputs to canned replies.
type Replies struct {
	Default Reply   `yaml:"default"`
	Entries []Entry `yaml:"entries"`
}

type Entry struct {
	Input string `yaml:"input"`
	Reply Reply  `yaml:"reply"`
}

// LoadReplies decodes and validates a reply table.
func LoadReplies(r io.Reader) (Replies, error) {
	var t Replies
	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		return Replies{}, fmt.Errorf("parse reply table: %w", err)
	}
	if strings.TrimSpace(t.Default.Text) == "" {
		return Replies{}, errors.New("reply table: default reply text is required")
	}
	if err := t.Default.Validate(); err != nil {
		return Replies{}, fmt.Errorf("reply table default: %w", err)
	}
	seen := make(map[string]struct{}, len(t.Entries))
	for i, e := range t.Entries {
		if e.Input == "" {
			return Replies{}, fmt.Errorf("reply table entry %d: input is required", i)
		}
		if _, dup := seen[e.Input]; dup {
			return Replies{}, fmt.Errorf("reply table entry %d: duplicate input %q", i, e.Input)
		}
		seen[e.Input] = struct{}{}
		if err := e.Reply.Validate(); err != nil {
			return Replies{}, fmt.Errorf("reply table entry %q: %w", e.Input, err)
		}
	}
	return t, nil
}

// DefaultReplies returns the built-in reply table.
func DefaultReplies() (Replies, error) {
	return LoadReplies(bytes.NewReader(defaultTable))
}

// LoadRepliesFile reads a table from path, or the built-in table when path is empty.
func LoadRepliesFile(path string) (Replies, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultReplies()
	}
	f, err := os.Open(path)
	if err != nil {
		return Replies{}, fmt.Errorf("open reply table: %w", err)
	}
	defer f.Close()
	return LoadReplies(f)
}

// StaticResponder answers from a reply table.
type StaticResponder struct {
	replies map[string]Reply
	def     Reply
}

func NewStaticResponder(t Replies) *StaticResponder {
	s := &StaticResponder{replies: make(map[string]Reply, len(t.Entries)), def: t.Default}
	for _, e := range t.Entries {
		s.replies[e.Input] = e.Reply
	}
	return s
}

// Respond matches the trimmed input exactly; anything else gets the default.
func (s *StaticResponder) Respond(ctx context.Context, req Request) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}
	if r, ok := s.replies[strings.TrimSpace(req.Input)]; ok {
		return r, nil
	}
	return s.def, nil
}

// ModelResponder asks an llm.Provider for a structured reply. Failures fall
// back to Fallback when set.
type ModelResponder struct {
	Provider llm.Provider
	Fallback Responder
	Log      *zap.Logger
}

func (m *ModelResponder) Respond(ctx context.Context, req Request) (Reply, error) {
	reply, err := m.ask(ctx, req)
	if err == nil {
		return reply, nil
	}
	if m.Log != nil {
		m.Log.Warn("assistant model reply failed", zap.Error(err))
	}
	if m.Fallback == nil || ctx.Err() != nil {
		return Reply{}, err
	}
	return m.Fallback.Respond(ctx, req)
}

func (m *ModelResponder) ask(ctx context.Context, req Request) (Reply, error) {
	if m.Provider == nil {
		return Reply{}, llm.ErrNoAPIKey
	}
	history := make([]llm.Message, 0, len(req.History))
	for _, t := range req.History {
		role := llm.RoleUser
		if t.Role == RoleAssistant {
			role = llm.RoleAssistant
		}
		history = append(history, llm.Message{Role: role, Content: t.Text})
	}
	resp, err := m.Provider.Converse(ctx, llm.ConverseRequest{
		System:  SystemPrompt(),
		History: history,
		Input:   req.Input,
		JSON:    true,
	})
	if err != nil {
		return Reply{}, err
	}
	var out Reply
	if err := llm.DecodeJSON(resp.Text, &out); err != nil {
		return Reply{}, fmt.Errorf("assistant: parse reply: %w", err)
	}
	out.Blocks = validBlocks(out.Blocks, m.Log)
	if strings.TrimSpace(out.Text) == "" && len(out.Blocks) == 0 {
		return Reply{}, errors.New("assistant: empty reply")
	}
	return out, nil
}

// validBlocks drops blocks the panel cannot render.
func validBlocks(in []Block, log *zap.Logger) []Block {
	out := in[:0]
	for _, b := range in {
		if err := b.Validate(); err != nil {
			if log != nil {
				log.Debug("dropping assistant block", zap.Error(err))
			}
			continue
		}
		out = append(out, b)
	}
	return out
}

// SystemPrompt describes the reply taxonomy to a model.
func SystemPrompt() string {
	kinds := make([]string, len(Kinds))
	for i, k := range Kinds {
		kinds[i] = string(k)
	}
	var b strings.Builder
	b.WriteString("You are the assistant inside a cannabis product registry. ")
	b.WriteString("Answer questions about the catalog, markets, bundles and product registration. ")
	b.WriteString("Return ONLY valid JSON with keys: text (string, markdown allowed), blocks (array), suggestions (array of {label, prompt}). ")
	b.WriteString("Each block has kind (one of " + strings.Join(kinds, ", ") + ") and the matching payload key: ")
	b.WriteString("table {title, columns, rows}; entity {title, subtitle, status, fields [{label, value}]}; ")
	b.WriteString("stats [{label, value, delta}]; alert {level: info|success|warning|error, title, message}; ")
	b.WriteString("steps {items, current (zero-based)}. Keep suggestions to at most four.")
	return b.String()
}
