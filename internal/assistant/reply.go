// Package assistant serves the chat panel: text replies with typed UI
// blocks and suggested follow-up actions.
package assistant

import (
	"context"
	"errors"
	"fmt"
)

// BlockKind names a renderable payload type.
type BlockKind string

const (
	KindTable  BlockKind = "table"
	KindEntity BlockKind = "entity"
	KindStats  BlockKind = "stats"
	KindAlert  BlockKind = "alert"
	KindSteps  BlockKind = "steps"
)

// Kinds lists every block kind the panel can render.
var Kinds = []BlockKind{KindTable, KindEntity, KindStats, KindAlert, KindSteps}

// ErrInvalidBlock is returned for a block whose payload does not match its kind.
var ErrInvalidBlock = errors.New("assistant: invalid block")

// Block is one typed payload. Exactly the field matching Kind is set.
type Block struct {
	Kind   BlockKind `json:"kind" yaml:"kind"`
	Table  *Table    `json:"table,omitempty" yaml:"table,omitempty"`
	Entity *Entity   `json:"entity,omitempty" yaml:"entity,omitempty"`
	Stats  []Stat    `json:"stats,omitempty" yaml:"stats,omitempty"`
	Alert  *Alert    `json:"alert,omitempty" yaml:"alert,omitempty"`
	Steps  *Steps    `json:"steps,omitempty" yaml:"steps,omitempty"`
}

type Table struct {
	Title   string     `json:"title,omitempty" yaml:"title,omitempty"`
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

type Field struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Entity summarizes one product, brand or license.
type Entity struct {
	Title    string  `json:"title" yaml:"title"`
	Subtitle string  `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Status   string  `json:"status,omitempty" yaml:"status,omitempty"`
	Fields   []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
}

type Stat struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
	Delta string `json:"delta,omitempty" yaml:"delta,omitempty"`
}

// AlertLevel is info, success, warning or error.
type AlertLevel string

const (
	AlertInfo    AlertLevel = "info"
	AlertSuccess AlertLevel = "success"
	AlertWarning AlertLevel = "warning"
	AlertError   AlertLevel = "error"
)

type Alert struct {
	Level   AlertLevel `json:"level" yaml:"level"`
	Title   string     `json:"title" yaml:"title"`
	Message string     `json:"message,omitempty" yaml:"message,omitempty"`
}

// Steps is a progress indicator; Current is zero-based.
type Steps struct {
	Items   []string `json:"items" yaml:"items"`
	Current int      `json:"current" yaml:"current"`
}

// Action is a suggested follow-up; Prompt is sent when it is chosen.
type Action struct {
	Label  string `json:"label" yaml:"label"`
	Prompt string `json:"prompt" yaml:"prompt"`
}

// Reply is one assistant turn.
type Reply struct {
	Text        string   `json:"text" yaml:"text"`
	Blocks      []Block  `json:"blocks,omitempty" yaml:"blocks,omitempty"`
	Suggestions []Action `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// Validate checks that the payload matches the kind.
func (b Block) Validate() error {
	ok := false
	switch b.Kind {
	case KindTable:
		ok = b.Table != nil && len(b.Table.Columns) > 0
		if ok {
			for _, row := range b.Table.Rows {
				if len(row) != len(b.Table.Columns) {
					return fmt.Errorf("%w: table row has %d cells, want %d", ErrInvalidBlock, len(row), len(b.Table.Columns))
				}
			}
		}
	case KindEntity:
		ok = b.Entity != nil && b.Entity.Title != ""
	case KindStats:
		ok = len(b.Stats) > 0
	case KindAlert:
		ok = b.Alert != nil && b.Alert.Title != ""
		if ok {
			switch b.Alert.Level {
			case AlertInfo, AlertSuccess, AlertWarning, AlertError:
			default:
				return fmt.Errorf("%w: alert level %q", ErrInvalidBlock, b.Alert.Level)
			}
		}
	case KindSteps:
		ok = b.Steps != nil && len(b.Steps.Items) > 0 && b.Steps.Current >= 0 && b.Steps.Current < len(b.Steps.Items)
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidBlock, b.Kind)
	}
	if !ok {
		return fmt.Errorf("%w: %s payload missing or empty", ErrInvalidBlock, b.Kind)
	}
	return nil
}

// Validate checks every block and suggestion.
func (r Reply) Validate() error {
	for i, b := range r.Blocks {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
	}
	for i, a := range r.Suggestions {
		if a.Label == "" {
			return fmt.Errorf("suggestion %d: label is required", i)
		}
	}
	return nil
}

// Role of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of the conversation history.
type Turn struct {
	Role  Role
	Text  string
	Reply *Reply
}

// Request is the prior conversation plus the new input.
type Request struct {
	History []Turn
	Input   string
}

// Responder produces a reply. The static table and a live model sit behind
// the same contract.
type Responder interface {
	Respond(ctx context.Context, req Request) (Reply, error)
}
