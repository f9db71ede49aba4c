package assistant

import (
	"context"
	"strings"
	"sync/atomic"
)

var fallbackReplies = []string{
	"That's interesting! Tell me more.",
	"Got it. Anything else on your mind?",
	"Nice! How's the rest of your day going?",
	"I hear you. Campus life keeps everyone busy!",
}

// Scripted is a deterministic offline replier used when no collaborator
// API key is configured.
type Scripted struct {
	n uint64
}

func NewScripted() *Scripted { return &Scripted{} }

func (s *Scripted) Reply(_ context.Context, prompt string) (string, error) {
	p := strings.ToLower(prompt)
	switch {
	case strings.Contains(p, "hello"), strings.Contains(p, "hi"):
		return "Hey there! How can I help you today?", nil
	case strings.Contains(p, "bye"):
		return "See you around campus!", nil
	case strings.Contains(p, "exam"), strings.Contains(p, "study"):
		return "Good luck with your studies! Try the library's quiet floor.", nil
	case strings.Contains(p, "event"):
		return "Check the events board, there's usually something on this week.", nil
	}
	i := atomic.AddUint64(&s.n, 1)
	return fallbackReplies[int(i)%len(fallbackReplies)], nil
}
