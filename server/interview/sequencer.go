package interview

import "github.com/interviewforge/interviewforge/store"

// Question identifies one interview question by cursor position.
type Question struct {
	Round     int             `json:"round"`
	Question  int             `json:"question"`
	RoundType store.RoundType `json:"round_type"`
	Focus     string          `json:"focus,omitempty"`
	Text      string          `json:"text"`
}

// CurrentQuestion returns the question at the session's cursor. It is a pure
// function of the cursors and rounds; ok is false once the interview has
// ended. Empty rounds are skipped without mutating the record.
func CurrentQuestion(session *store.InterviewSession) (*Question, bool) {
	round := session.CurrentRound
	question := session.CurrentQuestion
	for round < len(session.Rounds) {
		r := session.Rounds[round]
		if question < len(r.Questions) {
			return &Question{
				Round:     round,
				Question:  question,
				RoundType: r.Type,
				Focus:     r.Focus,
				Text:      r.Questions[question],
			}, true
		}
		round++
		question = 0
	}
	return nil, false
}

// Advance moves the cursor to the next question, rolling over to the next
// round when the current one is exhausted. When the cursor passes the last
// round the status becomes Completed. Cursors never move backwards.
func Advance(session *store.InterviewSession) error {
	if session.Status.IsTerminal() {
		return ErrAlreadyCompleted
	}

	// The stored cursor may sit on an empty round that CurrentQuestion skipped
	// over; normalize to the effective position before stepping, otherwise the
	// increment would land back on the question just answered.
	for session.CurrentRound < len(session.Rounds) &&
		session.CurrentQuestion >= len(session.Rounds[session.CurrentRound].Questions) {
		session.CurrentRound++
		session.CurrentQuestion = 0
	}

	session.CurrentQuestion++
	for session.CurrentRound < len(session.Rounds) &&
		session.CurrentQuestion >= len(session.Rounds[session.CurrentRound].Questions) {
		session.CurrentRound++
		session.CurrentQuestion = 0
	}

	if session.CurrentRound >= len(session.Rounds) {
		session.CurrentRound = len(session.Rounds)
		session.CurrentQuestion = 0
		session.Status = store.SessionCompleted
	}
	return nil
}
