package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Conversation keeps the chat history and simulates reply latency.
type Conversation struct {
	responder Responder
	delay     time.Duration
	log       *zap.Logger

	mu      sync.Mutex
	history []Turn
}

func NewConversation(r Responder, delay time.Duration, log *zap.Logger) *Conversation {
	if log == nil {
		log = zap.NewNop()
	}
	return &Conversation{responder: r, delay: delay, log: log}
}

// Send waits out the reply delay, asks the responder and records both turns.
// Nothing is recorded when ctx ends first or the responder fails.
func (c *Conversation) Send(ctx context.Context, input string) (Reply, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Reply{}, errors.New("assistant: empty message")
	}
	if c.delay > 0 {
		t := time.NewTimer(c.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Reply{}, ctx.Err()
		case <-t.C:
		}
	}
	req := Request{History: c.History(), Input: input}
	reply, err := c.responder.Respond(ctx, req)
	if err != nil {
		c.log.Warn("assistant reply failed", zap.Error(err))
		return Reply{}, err
	}
	c.mu.Lock()
	r := reply
	c.history = append(c.history,
		Turn{Role: RoleUser, Text: input},
		Turn{Role: RoleAssistant, Text: reply.Text, Reply: &r},
	)
	c.mu.Unlock()
	return reply, nil
}

// History returns a copy of the recorded turns.
func (c *Conversation) History() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Turn(nil), c.history...)
}

// Reset forgets the conversation.
func (c *Conversation) Reset() {
	c.mu.Lock()
	c.history = nil
	c.mu.Unlock()
}
