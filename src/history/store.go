// Package history persists per-session conversation transcripts. The service
// layer loads a session's turns before a run and saves the augmented history
// after a successful one.
package history

import (
	"context"

	assistant "github.com/Protocol-Lattice/go-assistant"
)

// Store is the persistence contract for session transcripts. Load returns an
// empty slice for unknown sessions.
type Store interface {
	Load(ctx context.Context, sessionID string) ([]assistant.ConversationTurn, error)
	Save(ctx context.Context, sessionID string, turns []assistant.ConversationTurn) error
	Close(ctx context.Context) error
}
