package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/interviewforge/interviewforge/plugin/ai"
	"github.com/interviewforge/interviewforge/plugin/ai/agent"
	"github.com/interviewforge/interviewforge/server/interview"
	"github.com/interviewforge/interviewforge/store"
)

type StatusResponse struct {
	Version   string `json:"version"`
	Mode      string `json:"mode"`
	AIEnabled bool   `json:"ai_enabled"`
}

type CreateSessionRequest struct {
	Role       string `json:"role"`
	ResumeText string `json:"resume_text"`
}

type QuestionResponse struct {
	Round     int             `json:"round"`
	Question  int             `json:"question"`
	RoundType store.RoundType `json:"round_type"`
	Focus     string          `json:"focus,omitempty"`
	Text      string          `json:"text"`
}

type SessionResponse struct {
	UID             string                 `json:"uid"`
	Role            string                 `json:"role"`
	Status          store.SessionStatus    `json:"status"`
	Profile         store.CandidateProfile `json:"profile"`
	Rounds          []store.Round          `json:"rounds"`
	CurrentRound    int                    `json:"current_round"`
	CurrentQuestion int                    `json:"current_question"`
	TotalQuestions  int                    `json:"total_questions"`
	Answered        int                    `json:"answered"`
	Checkpoint      string                 `json:"checkpoint"`
	CreatedTs       int64                  `json:"created_ts"`
	UpdatedTs       int64                  `json:"updated_ts"`
}

type SubmitAnswerRequest struct {
	Round    int    `json:"round"`
	Question int    `json:"question"`
	Text     string `json:"text"`
}

type SubmitAnswerResponse struct {
	Done bool              `json:"done"`
	Next *QuestionResponse `json:"next,omitempty"`
}

type ArtifactsResponse struct {
	StudyPlan     string            `json:"study_plan"`
	Flashcards    []agent.Flashcard `json:"flashcards"`
	FollowUpEmail string            `json:"followup_email"`
}

// GetStatus returns server identity.
// GET /api/v1/status
func (s *APIV1Service) GetStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{
		Version:   s.Profile.Version,
		Mode:      s.Profile.Mode,
		AIEnabled: s.Profile.IsAIEnabled(),
	})
}

// CreateSession analyzes the resume, generates the rounds and registers a
// NotStarted session.
// POST /api/v1/sessions
func (s *APIV1Service) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("malformed request body"))
	}
	if req.Role == "" || req.ResumeText == "" {
		return c.JSON(http.StatusBadRequest, errorBody("role and resume_text are required"))
	}

	profile, err := s.Analyzer.Analyze(ctx, req.ResumeText, req.Role)
	if err != nil {
		return errToHTTP(c, err)
	}
	rounds, err := s.Rounds.Generate(ctx, profile, req.Role)
	if err != nil {
		return errToHTTP(c, err)
	}
	session, err := s.Machine.Create(ctx, req.Role, profile, rounds)
	if err != nil {
		return errToHTTP(c, err)
	}
	return c.JSON(http.StatusCreated, toSessionResponse(session))
}

// ListSessions lists sessions, optionally filtered by status or role.
// GET /api/v1/sessions
func (s *APIV1Service) ListSessions(c echo.Context) error {
	ctx := c.Request().Context()

	find := &store.FindInterviewSession{}
	if v := c.QueryParam("status"); v != "" {
		status := store.SessionStatus(v)
		find.Status = &status
	}
	if v := c.QueryParam("role"); v != "" {
		find.Role = &v
	}

	sessions, err := s.Store.ListInterviewSessions(ctx, find)
	if err != nil {
		return errToHTTP(c, err)
	}
	resp := make([]*SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		resp = append(resp, toSessionResponse(session))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetSession returns one session with its checkpoint token.
// GET /api/v1/sessions/:uid
func (s *APIV1Service) GetSession(c echo.Context) error {
	ctx := c.Request().Context()
	uid := c.Param("uid")

	session, err := s.Store.GetInterviewSession(ctx, &store.FindInterviewSession{UID: &uid})
	if err != nil {
		return errToHTTP(c, err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(session))
}

// StartSession starts a NotStarted session and returns the first question.
// POST /api/v1/sessions/:uid/start
func (s *APIV1Service) StartSession(c echo.Context) error {
	ctx := c.Request().Context()

	question, err := s.Machine.Start(ctx, c.Param("uid"))
	if err != nil {
		return errToHTTP(c, err)
	}
	return c.JSON(http.StatusOK, SubmitAnswerResponse{
		Done: question == nil,
		Next: toQuestionResponse(question),
	})
}

// SubmitAnswer records the answer for the current cursor position and returns
// the next question, or done when the interview is complete.
// POST /api/v1/sessions/:uid/answers
func (s *APIV1Service) SubmitAnswer(c echo.Context) error {
	ctx := c.Request().Context()

	var req SubmitAnswerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("malformed request body"))
	}
	if req.Text == "" {
		return c.JSON(http.StatusBadRequest, errorBody("text is required"))
	}

	next, err := s.Machine.SubmitAnswer(ctx, c.Param("uid"), req.Round, req.Question, req.Text)
	if err != nil {
		return errToHTTP(c, err)
	}
	return c.JSON(http.StatusOK, SubmitAnswerResponse{
		Done: next == nil,
		Next: toQuestionResponse(next),
	})
}

// PauseSession pauses an InProgress session.
// POST /api/v1/sessions/:uid/pause
func (s *APIV1Service) PauseSession(c echo.Context) error {
	ctx := c.Request().Context()

	if err := s.Machine.Pause(ctx, c.Param("uid")); err != nil {
		return errToHTTP(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ResumeSession resumes a Paused session and returns the current question.
// POST /api/v1/sessions/:uid/resume
func (s *APIV1Service) ResumeSession(c echo.Context) error {
	ctx := c.Request().Context()

	question, err := s.Machine.Resume(ctx, c.Param("uid"))
	if err != nil {
		return errToHTTP(c, err)
	}
	return c.JSON(http.StatusOK, SubmitAnswerResponse{
		Done: question == nil,
		Next: toQuestionResponse(question),
	})
}

// AbandonSession terminally abandons an InProgress or Paused session.
// POST /api/v1/sessions/:uid/abandon
func (s *APIV1Service) AbandonSession(c echo.Context) error {
	ctx := c.Request().Context()

	if err := s.Machine.Abandon(ctx, c.Param("uid")); err != nil {
		return errToHTTP(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// FinalizeSession returns the full record of a Completed session.
// POST /api/v1/sessions/:uid/finalize
func (s *APIV1Service) FinalizeSession(c echo.Context) error {
	ctx := c.Request().Context()

	session, err := s.Machine.Finalize(ctx, c.Param("uid"))
	if err != nil {
		return errToHTTP(c, err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(session))
}

// GetSessionArtifacts drafts the study artifacts for a Completed session.
// POST-interview only; the drafting is re-run per request.
// GET /api/v1/sessions/:uid/artifacts
func (s *APIV1Service) GetSessionArtifacts(c echo.Context) error {
	ctx := c.Request().Context()

	session, err := s.Machine.Finalize(ctx, c.Param("uid"))
	if err != nil {
		return errToHTTP(c, err)
	}

	plan, err := s.Drafter.StudyPlan(ctx, session)
	if err != nil {
		return errToHTTP(c, err)
	}
	cards, err := s.Drafter.Flashcards(ctx, session)
	if err != nil {
		return errToHTTP(c, err)
	}
	email, err := s.Drafter.FollowUpEmail(ctx, session)
	if err != nil {
		return errToHTTP(c, err)
	}
	return c.JSON(http.StatusOK, ArtifactsResponse{
		StudyPlan:     plan,
		Flashcards:    cards,
		FollowUpEmail: email,
	})
}

func toSessionResponse(session *store.InterviewSession) *SessionResponse {
	return &SessionResponse{
		UID:             session.UID,
		Role:            session.Role,
		Status:          session.Status,
		Profile:         session.Profile,
		Rounds:          session.Rounds,
		CurrentRound:    session.CurrentRound,
		CurrentQuestion: session.CurrentQuestion,
		TotalQuestions:  session.TotalQuestions(),
		Answered:        len(session.Answers),
		Checkpoint:      string(interview.Checkpoint(session)),
		CreatedTs:       session.CreatedTs,
		UpdatedTs:       session.UpdatedTs,
	}
}

func toQuestionResponse(question *interview.Question) *QuestionResponse {
	if question == nil {
		return nil
	}
	return &QuestionResponse{
		Round:     question.Round,
		Question:  question.Question,
		RoundType: question.RoundType,
		Focus:     question.Focus,
		Text:      question.Text,
	}
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

// errToHTTP maps domain errors onto HTTP statuses. Conflict-shaped errors
// (wrong state, duplicate, concurrent writer) all map to 409 so clients can
// reload and retry.
func errToHTTP(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, interview.ErrOutOfOrderAnswer):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrConflict),
		errors.Is(err, interview.ErrInvalidTransition),
		errors.Is(err, interview.ErrDuplicateAnswer),
		errors.Is(err, interview.ErrAlreadyCompleted),
		errors.Is(err, interview.ErrOperationInProgress):
		status = http.StatusConflict
	case errors.Is(err, ai.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, ai.ErrGenerationUnavailable):
		status = http.StatusBadGateway
	}
	return c.JSON(status, errorBody(err.Error()))
}
