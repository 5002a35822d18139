package interview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/interviewforge/interviewforge/store"
)

// SessionStore is the slice of the store the state machine needs.
// *store.Store satisfies it.
type SessionStore interface {
	CreateInterviewSession(ctx context.Context, create *store.InterviewSession) (*store.InterviewSession, error)
	GetInterviewSession(ctx context.Context, find *store.FindInterviewSession) (*store.InterviewSession, error)
	ListInterviewSessions(ctx context.Context, find *store.FindInterviewSession) ([]*store.InterviewSession, error)
	UpdateInterviewSession(ctx context.Context, update *store.UpdateInterviewSession) (*store.InterviewSession, error)
}

// Evaluator scores one answer. It is an external collaborator: the machine
// calls it synchronously, never retries it, and surfaces its errors to the
// caller unchanged.
type Evaluator interface {
	Evaluate(ctx context.Context, question Question, answerText string, profile store.CandidateProfile) (store.RubricScore, string, error)
}

// Machine drives the interview session lifecycle:
//
//	NotStarted -> InProgress <-> Paused -> ... -> Completed
//
// Abandoned is reachable from InProgress or Paused. Completed and Abandoned
// are terminal. All mutation of session records goes through here.
type Machine struct {
	store     SessionStore
	evaluator Evaluator

	// One active operation per session; pause during a pending answer
	// submission must fail rather than interleave.
	inflight sync.Map // session uid -> struct{}
}

// NewMachine creates a state machine over the given store and evaluator.
func NewMachine(store SessionStore, evaluator Evaluator) *Machine {
	return &Machine{store: store, evaluator: evaluator}
}

// Create registers a new session once resume analysis and round generation
// have completed. The profile and rounds are immutable afterwards.
func (m *Machine) Create(ctx context.Context, role string, profile store.CandidateProfile, rounds []store.Round) (*store.InterviewSession, error) {
	session := &store.InterviewSession{
		UID:     shortuuid.New(),
		Role:    role,
		Profile: profile,
		Rounds:  rounds,
		Status:  store.SessionNotStarted,
	}
	created, err := m.store.CreateInterviewSession(ctx, session)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create interview session")
	}
	slog.Info("interview session created",
		slog.String("uid", created.UID),
		slog.String("role", role),
		slog.Int("rounds", len(rounds)),
		slog.Int("questions", created.TotalQuestions()))
	return created, nil
}

// Start transitions NotStarted -> InProgress and returns the first question.
// A session with no questions at all completes immediately.
func (m *Machine) Start(ctx context.Context, uid string) (*Question, error) {
	session, err := m.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	if session.Status != store.SessionNotStarted {
		return nil, errors.Wrapf(ErrInvalidTransition, "cannot start session in status %s", session.Status)
	}

	status := store.SessionInProgress
	question, ok := CurrentQuestion(session)
	if !ok {
		status = store.SessionCompleted
	}

	if _, err := m.store.UpdateInterviewSession(ctx, &store.UpdateInterviewSession{
		UID:               uid,
		ExpectedUpdatedTs: session.UpdatedTs,
		Status:            &status,
	}); err != nil {
		return nil, err
	}
	slog.Info("interview started", slog.String("uid", uid))
	return question, nil
}

// SubmitAnswer records the answer for exactly the current cursor position,
// has it evaluated, and advances the cursor. The answer record and the
// cursor advance persist in a single save: a failed evaluation or a storage
// conflict leaves no partial answer behind, so retrying with the same
// arguments is safe. Returns the next question, or nil at end of interview.
func (m *Machine) SubmitAnswer(ctx context.Context, uid string, round, question int, text string) (*Question, error) {
	if !m.begin(uid) {
		return nil, errors.Wrapf(ErrOperationInProgress, "session %s", uid)
	}
	defer m.end(uid)

	session, err := m.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	if session.Status.IsTerminal() {
		return nil, errors.Wrapf(ErrAlreadyCompleted, "session %s", uid)
	}
	if session.Status != store.SessionInProgress {
		return nil, errors.Wrapf(ErrInvalidTransition, "cannot submit answer in status %s", session.Status)
	}
	if session.AnswerAt(round, question) != nil {
		return nil, errors.Wrapf(ErrDuplicateAnswer, "round %d question %d", round, question)
	}
	current, ok := CurrentQuestion(session)
	if !ok {
		return nil, errors.Wrapf(ErrAlreadyCompleted, "session %s", uid)
	}
	if current.Round != round || current.Question != question {
		return nil, errors.Wrapf(ErrOutOfOrderAnswer,
			"submitted (%d, %d) but cursor is at (%d, %d)", round, question, current.Round, current.Question)
	}

	// Blocking collaborator call. Failures propagate unchanged; the caller
	// decides whether to retry the submission.
	score, feedback, err := m.evaluator.Evaluate(ctx, *current, text, session.Profile)
	if err != nil {
		return nil, err
	}

	answers := append(append([]store.Answer(nil), session.Answers...), store.Answer{
		Round:     round,
		Question:  question,
		RawText:   text,
		Score:     score,
		Feedback:  feedback,
		CreatedTs: time.Now().UnixMilli(),
	})

	if err := Advance(session); err != nil {
		return nil, err
	}

	updated, err := m.store.UpdateInterviewSession(ctx, &store.UpdateInterviewSession{
		UID:               uid,
		ExpectedUpdatedTs: session.UpdatedTs,
		Status:            &session.Status,
		CurrentRound:      &session.CurrentRound,
		CurrentQuestion:   &session.CurrentQuestion,
		Answers:           answers,
	})
	if err != nil {
		return nil, err
	}

	next, ok := CurrentQuestion(updated)
	if !ok {
		slog.Info("interview completed",
			slog.String("uid", uid),
			slog.Int("answers", len(updated.Answers)))
		return nil, nil
	}
	return next, nil
}

// Pause transitions InProgress -> Paused and persists immediately. It fails
// with ErrOperationInProgress while an answer submission is pending.
func (m *Machine) Pause(ctx context.Context, uid string) error {
	if !m.begin(uid) {
		return errors.Wrapf(ErrOperationInProgress, "session %s", uid)
	}
	defer m.end(uid)

	session, err := m.load(ctx, uid)
	if err != nil {
		return err
	}
	if session.Status != store.SessionInProgress {
		return errors.Wrapf(ErrInvalidTransition, "cannot pause session in status %s", session.Status)
	}

	status := store.SessionPaused
	if _, err := m.store.UpdateInterviewSession(ctx, &store.UpdateInterviewSession{
		UID:               uid,
		ExpectedUpdatedTs: session.UpdatedTs,
		Status:            &status,
	}); err != nil {
		return err
	}
	slog.Info("interview paused", slog.String("uid", uid))
	return nil
}

// Resume transitions Paused -> InProgress and returns the current question,
// recomputed from the persisted cursors so it survives process restarts.
func (m *Machine) Resume(ctx context.Context, uid string) (*Question, error) {
	session, err := m.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	if session.Status != store.SessionPaused {
		return nil, errors.Wrapf(ErrInvalidTransition, "cannot resume session in status %s", session.Status)
	}

	status := store.SessionInProgress
	updated, err := m.store.UpdateInterviewSession(ctx, &store.UpdateInterviewSession{
		UID:               uid,
		ExpectedUpdatedTs: session.UpdatedTs,
		Status:            &status,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("interview resumed", slog.String("uid", uid))
	question, _ := CurrentQuestion(updated)
	return question, nil
}

// Abandon marks an InProgress or Paused session as terminally abandoned.
// Explicit operator action; there is no automatic abandonment.
func (m *Machine) Abandon(ctx context.Context, uid string) error {
	if !m.begin(uid) {
		return errors.Wrapf(ErrOperationInProgress, "session %s", uid)
	}
	defer m.end(uid)

	session, err := m.load(ctx, uid)
	if err != nil {
		return err
	}
	if session.Status != store.SessionInProgress && session.Status != store.SessionPaused {
		return errors.Wrapf(ErrInvalidTransition, "cannot abandon session in status %s", session.Status)
	}

	status := store.SessionAbandoned
	if _, err := m.store.UpdateInterviewSession(ctx, &store.UpdateInterviewSession{
		UID:               uid,
		ExpectedUpdatedTs: session.UpdatedTs,
		Status:            &status,
	}); err != nil {
		return err
	}
	slog.Info("interview abandoned", slog.String("uid", uid))
	return nil
}

// Finalize returns the full record of a Completed session for downstream
// artifact generation. Idempotent: it performs no mutation.
func (m *Machine) Finalize(ctx context.Context, uid string) (*store.InterviewSession, error) {
	session, err := m.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	if session.Status != store.SessionCompleted {
		return nil, errors.Wrapf(ErrInvalidTransition, "cannot finalize session in status %s", session.Status)
	}
	return session, nil
}

func (m *Machine) load(ctx context.Context, uid string) (*store.InterviewSession, error) {
	return m.store.GetInterviewSession(ctx, &store.FindInterviewSession{UID: &uid})
}

func (m *Machine) begin(uid string) bool {
	_, loaded := m.inflight.LoadOrStore(uid, struct{}{})
	return !loaded
}

func (m *Machine) end(uid string) {
	m.inflight.Delete(uid)
}
