package models

import (
	"context"
	"fmt"
	"sync"
)

// ScriptedLLM replays a fixed sequence of completions. It is the offline
// stand-in for a real endpoint: deterministic, no network, and it records
// every request so callers can assert on advertised tools and transcript
// growth. When Repeat is set the final step replays forever instead of
// exhausting.
type ScriptedLLM struct {
	Steps  []Completion
	Repeat bool
	Err    error

	mu       sync.Mutex
	requests []Request
	calls    int
}

// NewScriptedLLM builds a scripted endpoint from the given steps in order.
func NewScriptedLLM(steps ...Completion) *ScriptedLLM {
	return &ScriptedLLM{Steps: steps}
}

func (s *ScriptedLLM) Invoke(_ context.Context, req Request) (*Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	s.calls++

	idx := s.calls - 1
	if idx >= len(s.Steps) {
		if s.Repeat && len(s.Steps) > 0 {
			idx = len(s.Steps) - 1
		} else {
			if s.Err != nil {
				return nil, s.Err
			}
			return nil, fmt.Errorf("%w: script exhausted after %d steps", ErrEndpoint, len(s.Steps))
		}
	}

	step := s.Steps[idx]
	out := step // copy so callers cannot mutate the script
	return &out, nil
}

// Calls reports how many times the endpoint was invoked.
func (s *ScriptedLLM) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Requests returns a snapshot of every request received so far.
func (s *ScriptedLLM) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}
