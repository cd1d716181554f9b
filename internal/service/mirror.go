package service

import (
	"context"

	"github.com/behuman/cascade/internal/model"
)

// GraphMirror receives finalized sessions for downstream relationship
// modeling (avoids an import cycle with the graph package). Sync is
// best-effort: failures are logged, never surfaced, and never affect
// interview correctness.
type GraphMirror interface {
	SyncAnalyzedSession(ctx context.Context, session *model.Session) error
	RemoveSession(ctx context.Context, sessionID string) error
}
