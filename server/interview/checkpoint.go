package interview

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/interviewforge/interviewforge/store"
)

// CheckpointToken is an opaque snapshot identity for a session's progress.
// Tokens are comparable only for equality: two equal tokens mean the cursors
// and recorded answers were identical when captured.
type CheckpointToken string

// Checkpoint captures a token over the session's cursors and answers at the
// moment a question is posed. Status is deliberately excluded: pausing and
// resuming does not move the cursor, so it must not change the token.
func Checkpoint(session *store.InterviewSession) CheckpointToken {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%d|%d", session.UID, session.CurrentRound, session.CurrentQuestion, len(session.Answers))
	for _, a := range session.Answers {
		fmt.Fprintf(h, "|%d:%d:%s", a.Round, a.Question, a.RawText)
	}
	return CheckpointToken(hex.EncodeToString(h.Sum(nil)))
}

// CheckpointManager restores sessions from their last persisted state.
// Because the machine saves only after an answer is durably recorded,
// restoring after a crash re-asks the question that was in flight: a question
// may be asked more than once, its answer is recorded at most once.
type CheckpointManager struct {
	store SessionStore
}

// NewCheckpointManager creates a manager over the given session store.
func NewCheckpointManager(store SessionStore) *CheckpointManager {
	return &CheckpointManager{store: store}
}

// Restore loads the latest persisted record for uid. Calling it repeatedly
// with no intervening mutation returns identical records.
func (m *CheckpointManager) Restore(ctx context.Context, uid string) (*store.InterviewSession, error) {
	return m.store.GetInterviewSession(ctx, &store.FindInterviewSession{UID: &uid})
}
