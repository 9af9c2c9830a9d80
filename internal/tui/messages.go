package tui

import (
	"github.com/jask/budregistry/internal/assistant"
	"github.com/jask/budregistry/internal/product"
	"github.com/jask/budregistry/internal/wizard"
)

type statusMsg string

type errMsg struct{ error }

// lookupMsg carries candidate results back to the wizard.
type lookupMsg struct {
	ticket  wizard.Ticket
	results []product.Product
	err     error
}

// generatedMsg carries an AI draft back to the wizard. product is nil when
// generation produced nothing.
type generatedMsg struct {
	ticket  wizard.Ticket
	product *product.Product
	err     error
}

// chatReplyMsg reports one sent message; seq matches chatPanel.seq while
// that request is the one pending.
type chatReplyMsg struct {
	seq   uint64
	input string
	reply assistant.Reply
	err   error
}
