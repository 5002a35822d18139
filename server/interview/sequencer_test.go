package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interviewforge/interviewforge/store"
)

func threeRoundSession() *store.InterviewSession {
	return &store.InterviewSession{
		UID:    "seq-test",
		Status: store.SessionInProgress,
		Rounds: []store.Round{
			{Type: store.RoundBehavioral, Questions: []string{"b0", "b1"}},
			{Type: store.RoundTechnical, Questions: []string{"t0", "t1"}},
			{Type: store.RoundSystemDesign, Questions: []string{"s0"}},
		},
	}
}

func TestCurrentQuestion(t *testing.T) {
	session := threeRoundSession()

	q, ok := CurrentQuestion(session)
	require.True(t, ok)
	assert.Equal(t, 0, q.Round)
	assert.Equal(t, 0, q.Question)
	assert.Equal(t, store.RoundBehavioral, q.RoundType)
	assert.Equal(t, "b0", q.Text)

	session.CurrentRound = 1
	session.CurrentQuestion = 1
	q, ok = CurrentQuestion(session)
	require.True(t, ok)
	assert.Equal(t, "t1", q.Text)

	session.CurrentRound = 3
	session.CurrentQuestion = 0
	_, ok = CurrentQuestion(session)
	assert.False(t, ok)
}

func TestCurrentQuestionSkipsEmptyRound(t *testing.T) {
	session := &store.InterviewSession{
		Status: store.SessionInProgress,
		Rounds: []store.Round{
			{Type: store.RoundBehavioral, Questions: nil},
			{Type: store.RoundTechnical, Questions: []string{"t0"}},
		},
	}

	q, ok := CurrentQuestion(session)
	require.True(t, ok)
	assert.Equal(t, 1, q.Round)
	assert.Equal(t, "t0", q.Text)
}

func TestAdvanceWalksAllQuestionsInOrder(t *testing.T) {
	session := threeRoundSession()

	var asked []string
	for {
		q, ok := CurrentQuestion(session)
		if !ok {
			break
		}
		asked = append(asked, q.Text)
		require.NoError(t, Advance(session))
	}

	assert.Equal(t, []string{"b0", "b1", "t0", "t1", "s0"}, asked)
	assert.Equal(t, store.SessionCompleted, session.Status)
	assert.Equal(t, len(session.Rounds), session.CurrentRound)
	assert.Equal(t, 0, session.CurrentQuestion)
}

func TestAdvanceIsDeterministic(t *testing.T) {
	a := threeRoundSession()
	b := threeRoundSession()
	a.CurrentRound, a.CurrentQuestion = 0, 1
	b.CurrentRound, b.CurrentQuestion = 0, 1

	require.NoError(t, Advance(a))
	require.NoError(t, Advance(b))

	assert.Equal(t, a.CurrentRound, b.CurrentRound)
	assert.Equal(t, a.CurrentQuestion, b.CurrentQuestion)
	assert.Equal(t, 1, a.CurrentRound)
	assert.Equal(t, 0, a.CurrentQuestion)
}

func TestAdvanceRejectsTerminalSessions(t *testing.T) {
	session := threeRoundSession()
	session.Status = store.SessionCompleted
	assert.ErrorIs(t, Advance(session), ErrAlreadyCompleted)

	session.Status = store.SessionAbandoned
	assert.ErrorIs(t, Advance(session), ErrAlreadyCompleted)
}

func TestAdvanceSkipsEmptyRounds(t *testing.T) {
	session := &store.InterviewSession{
		Status: store.SessionInProgress,
		Rounds: []store.Round{
			{Type: store.RoundBehavioral, Questions: []string{"b0"}},
			{Type: store.RoundTechnical, Questions: nil},
			{Type: store.RoundSystemDesign, Questions: []string{"s0"}},
		},
	}

	require.NoError(t, Advance(session))
	q, ok := CurrentQuestion(session)
	require.True(t, ok)
	assert.Equal(t, "s0", q.Text)
}

func TestAdvanceFromCursorOnEmptyRound(t *testing.T) {
	// The stored cursor can lag behind the effective question when it sits on
	// an empty round. Advancing must step past the effective question, never
	// back onto it.
	session := &store.InterviewSession{
		Status: store.SessionInProgress,
		Rounds: []store.Round{
			{Type: store.RoundBehavioral, Questions: nil},
			{Type: store.RoundTechnical, Questions: []string{"t0", "t1"}},
		},
	}

	q, ok := CurrentQuestion(session)
	require.True(t, ok)
	assert.Equal(t, 1, q.Round)
	assert.Equal(t, 0, q.Question)

	require.NoError(t, Advance(session))
	assert.Equal(t, 1, session.CurrentRound)
	assert.Equal(t, 1, session.CurrentQuestion)

	require.NoError(t, Advance(session))
	_, ok = CurrentQuestion(session)
	assert.False(t, ok)
	assert.Equal(t, store.SessionCompleted, session.Status)
}
