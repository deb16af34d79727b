package speech

import (
	"context"
	"sync"
)

// StaticSynthesizer is the offline test double: it returns a fixed audio
// reference (or error) and records every request.
type StaticSynthesizer struct {
	Audio *Audio
	Err   error

	mu       sync.Mutex
	requests []Request
}

func (s *StaticSynthesizer) Synthesize(_ context.Context, req Request) (*Audio, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req.Normalize())
	s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	if s.Audio != nil {
		clone := *s.Audio
		return &clone, nil
	}
	return &Audio{FilePath: "static.mp3", Format: "mp3", Voice: DefaultVoiceID}, nil
}

// Requests returns a snapshot of the synthesis requests seen so far.
func (s *StaticSynthesizer) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}
