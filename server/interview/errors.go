package interview

import "github.com/pkg/errors"

// Protocol errors returned by the state machine. Store-level errors
// (store.ErrNotFound, store.ErrConflict) pass through unchanged, as do
// generation-service failures.
var (
	// ErrInvalidTransition means the operation is illegal for the session's
	// current status.
	ErrInvalidTransition = errors.New("invalid transition for session status")
	// ErrOutOfOrderAnswer means the submitted (round, question) key is not
	// the current cursor.
	ErrOutOfOrderAnswer = errors.New("answer does not match the current question")
	// ErrDuplicateAnswer means an answer was already recorded for the key.
	ErrDuplicateAnswer = errors.New("answer already recorded for this question")
	// ErrAlreadyCompleted means the session is in a terminal status.
	ErrAlreadyCompleted = errors.New("session already completed")
	// ErrOperationInProgress means another operation holds the session,
	// e.g. pausing while an answer submission is awaiting evaluation.
	ErrOperationInProgress = errors.New("another operation is in progress for this session")
)
