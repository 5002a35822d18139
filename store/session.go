package store

import (
	"context"

	"github.com/pkg/errors"
)

// SessionStatus is the lifecycle status of an interview session.
type SessionStatus string

const (
	SessionNotStarted SessionStatus = "NOT_STARTED"
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionPaused     SessionStatus = "PAUSED"
	SessionCompleted  SessionStatus = "COMPLETED"
	SessionAbandoned  SessionStatus = "ABANDONED"
)

// IsTerminal returns true for statuses that permit no further mutation.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionAbandoned
}

// RoundType is the themed category of an interview round.
type RoundType string

const (
	RoundBehavioral   RoundType = "BEHAVIORAL"
	RoundTechnical    RoundType = "TECHNICAL"
	RoundSystemDesign RoundType = "SYSTEM_DESIGN"
)

// CandidateProfile is the structured resume analysis for one candidate.
// Set once at session creation and read-only afterwards.
type CandidateProfile struct {
	Name            string   `json:"name"`
	YearsExperience int      `json:"years_experience,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	Strengths       []string `json:"strengths,omitempty"`
	Weaknesses      []string `json:"weaknesses,omitempty"`
	// Raw holds the unparsed analyzer output when it was not valid JSON.
	Raw string `json:"raw,omitempty"`
}

// Round is one themed group of interview questions. Questions are generated
// once and immutable thereafter.
type Round struct {
	Type      RoundType `json:"type"`
	Focus     string    `json:"focus,omitempty"`
	Questions []string  `json:"questions"`
}

// RubricScore is the per-dimension evaluation of one answer, each 0-10.
type RubricScore struct {
	Structure int `json:"structure"`
	Depth     int `json:"depth"`
	Examples  int `json:"examples"`
}

// Answer is the candidate's response to one question plus its evaluation.
// RawText is immutable once stored; Score and Feedback are written together
// with it, exactly once.
type Answer struct {
	Round     int         `json:"round"`
	Question  int         `json:"question"`
	RawText   string      `json:"raw_text"`
	Score     RubricScore `json:"score"`
	Feedback  string      `json:"feedback"`
	CreatedTs int64       `json:"created_ts"`
}

// InterviewSession is the record of one candidate interview run.
// Timestamps are Unix milliseconds; UpdatedTs doubles as the optimistic
// concurrency token checked on every save.
type InterviewSession struct {
	ID              int32
	UID             string
	Role            string
	Profile         CandidateProfile
	Rounds          []Round
	CurrentRound    int
	CurrentQuestion int
	Answers         []Answer
	Status          SessionStatus
	CreatedTs       int64
	UpdatedTs       int64
}

// AnswerAt returns the recorded answer for (round, question), or nil.
func (s *InterviewSession) AnswerAt(round, question int) *Answer {
	for i := range s.Answers {
		if s.Answers[i].Round == round && s.Answers[i].Question == question {
			return &s.Answers[i]
		}
	}
	return nil
}

// TotalQuestions returns the number of questions across all rounds.
func (s *InterviewSession) TotalQuestions() int {
	total := 0
	for _, r := range s.Rounds {
		total += len(r.Questions)
	}
	return total
}

// Clone returns a deep copy so cached records are never aliased by callers.
func (s *InterviewSession) Clone() *InterviewSession {
	clone := *s
	clone.Rounds = make([]Round, len(s.Rounds))
	for i, r := range s.Rounds {
		clone.Rounds[i] = r
		clone.Rounds[i].Questions = append([]string(nil), r.Questions...)
	}
	clone.Answers = append([]Answer(nil), s.Answers...)
	clone.Profile.Skills = append([]string(nil), s.Profile.Skills...)
	clone.Profile.Strengths = append([]string(nil), s.Profile.Strengths...)
	clone.Profile.Weaknesses = append([]string(nil), s.Profile.Weaknesses...)
	return &clone
}

// FindInterviewSession is the find condition for interview sessions.
type FindInterviewSession struct {
	ID     *int32
	UID    *string
	Status *SessionStatus
	Role   *string

	// Pagination
	Limit  *int
	Offset *int
}

// UpdateInterviewSession is the update request for an interview session.
// ExpectedUpdatedTs must carry the UpdatedTs the caller loaded; the save
// fails with ErrConflict when the stored record has advanced past it.
type UpdateInterviewSession struct {
	UID               string
	ExpectedUpdatedTs int64

	Status          *SessionStatus
	CurrentRound    *int
	CurrentQuestion *int
	// Answers replaces the whole answer list; append-only discipline is
	// enforced by the state machine, never here.
	Answers []Answer
}

// DeleteInterviewSession is the delete request for an interview session.
// Deletion is an explicit operator action; nothing deletes sessions
// automatically.
type DeleteInterviewSession struct {
	UID string
}

var (
	// ErrNotFound is returned when no session exists for the given identifier.
	ErrNotFound = errors.New("session not found")
	// ErrConflict is returned when a save races a concurrent update.
	// Recoverable: reload the session and reapply the change.
	ErrConflict = errors.New("session was updated concurrently")
)

// CreateInterviewSession creates a new session record.
func (s *Store) CreateInterviewSession(ctx context.Context, create *InterviewSession) (*InterviewSession, error) {
	session, err := s.driver.CreateInterviewSession(ctx, create)
	if err != nil {
		return nil, err
	}
	s.sessionCache.Set(session.UID, session.Clone())
	return session, nil
}

// GetInterviewSession returns one session or ErrNotFound.
func (s *Store) GetInterviewSession(ctx context.Context, find *FindInterviewSession) (*InterviewSession, error) {
	if find.UID != nil && find.ID == nil && find.Status == nil && find.Role == nil {
		if cached, ok := s.sessionCache.Get(*find.UID); ok {
			return cached.(*InterviewSession).Clone(), nil
		}
	}

	list, err := s.driver.ListInterviewSessions(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	session := list[0]
	s.sessionCache.Set(session.UID, session.Clone())
	return session, nil
}

// ListInterviewSessions lists sessions with filter.
func (s *Store) ListInterviewSessions(ctx context.Context, find *FindInterviewSession) ([]*InterviewSession, error) {
	return s.driver.ListInterviewSessions(ctx, find)
}

// UpdateInterviewSession saves session changes with optimistic concurrency.
func (s *Store) UpdateInterviewSession(ctx context.Context, update *UpdateInterviewSession) (*InterviewSession, error) {
	session, err := s.driver.UpdateInterviewSession(ctx, update)
	if err != nil {
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound) {
			// The cached view is stale either way.
			s.sessionCache.Delete(update.UID)
		}
		return nil, err
	}
	s.sessionCache.Set(session.UID, session.Clone())
	return session, nil
}

// DeleteInterviewSession removes a session record.
func (s *Store) DeleteInterviewSession(ctx context.Context, delete *DeleteInterviewSession) error {
	if err := s.driver.DeleteInterviewSession(ctx, delete); err != nil {
		return err
	}
	s.sessionCache.Delete(delete.UID)
	return nil
}
