package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interviewforge/interviewforge/internal/profile"
	"github.com/interviewforge/interviewforge/plugin/ai"
	"github.com/interviewforge/interviewforge/plugin/ai/agent"
	"github.com/interviewforge/interviewforge/server/interview"
	"github.com/interviewforge/interviewforge/store"
	"github.com/interviewforge/interviewforge/store/teststore"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	llm := ai.NewMockGenerationService()
	st := store.New(teststore.New(), &profile.Profile{Mode: "demo", Version: "0.1.0"})
	t.Cleanup(func() { st.Close() })
	machine := interview.NewMachine(st, agent.NewEvaluator(llm))
	svc := NewAPIV1Service(
		&profile.Profile{Mode: "demo", Version: "0.1.0"},
		st,
		machine,
		agent.NewResumeAnalyzer(llm),
		agent.NewRoundGenerator(llm),
		agent.NewArtifactDrafter(llm),
	)

	e := echo.New()
	svc.Register(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	}
	return rec, decoded
}

func createTestSession(t *testing.T, e *echo.Echo) string {
	t.Helper()
	rec, body := doJSON(t, e, http.MethodPost, "/api/v1/sessions",
		`{"role": "Data Engineer", "resume_text": "3 years of Python and SQL."}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	uid, _ := body["uid"].(string)
	require.NotEmpty(t, uid)
	return uid
}

func TestGetStatus(t *testing.T) {
	e := newTestServer(t)
	rec, body := doJSON(t, e, http.MethodGet, "/api/v1/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0.1.0", body["version"])
	assert.Equal(t, "demo", body["mode"])
	assert.Equal(t, false, body["ai_enabled"])
}

func TestCreateSession(t *testing.T) {
	e := newTestServer(t)

	t.Run("creates a NotStarted session with generated rounds", func(t *testing.T) {
		rec, body := doJSON(t, e, http.MethodPost, "/api/v1/sessions",
			`{"role": "Data Engineer", "resume_text": "3 years of Python and SQL."}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, string(store.SessionNotStarted), body["status"])
		assert.Equal(t, float64(5), body["total_questions"])
		assert.NotEmpty(t, body["checkpoint"])
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		rec, _ := doJSON(t, e, http.MethodPost, "/api/v1/sessions", `{"role": "Data Engineer"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSessionLifecycle(t *testing.T) {
	e := newTestServer(t)
	uid := createTestSession(t, e)

	rec, body := doJSON(t, e, http.MethodPost, "/api/v1/sessions/"+uid+"/start", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, false, body["done"])
	next := body["next"].(map[string]any)
	assert.Equal(t, float64(0), next["round"])
	assert.Equal(t, float64(0), next["question"])

	// Answer every question until done.
	for i := 0; i < 10; i++ {
		round := int(next["round"].(float64))
		question := int(next["question"].(float64))
		rec, body = doJSON(t, e, http.MethodPost, "/api/v1/sessions/"+uid+"/answers",
			fmt.Sprintf(`{"round": %d, "question": %d, "text": "my answer"}`, round, question))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		if body["done"] == true {
			break
		}
		next = body["next"].(map[string]any)
	}
	require.Equal(t, true, body["done"])

	rec, body = doJSON(t, e, http.MethodPost, "/api/v1/sessions/"+uid+"/finalize", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(store.SessionCompleted), body["status"])
	assert.Equal(t, body["total_questions"], body["answered"])

	rec, body = doJSON(t, e, http.MethodGet, "/api/v1/sessions/"+uid+"/artifacts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["study_plan"])
	assert.NotEmpty(t, body["flashcards"])
	assert.NotEmpty(t, body["followup_email"])
}

func TestPauseResume(t *testing.T) {
	e := newTestServer(t)
	uid := createTestSession(t, e)

	rec, _ := doJSON(t, e, http.MethodPost, "/api/v1/sessions/"+uid+"/start", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, e, http.MethodPost, "/api/v1/sessions/"+uid+"/pause", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Submitting while paused is a state conflict.
	rec, _ = doJSON(t, e, http.MethodPost, "/api/v1/sessions/"+uid+"/answers",
		`{"round": 0, "question": 0, "text": "x"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, body := doJSON(t, e, http.MethodPost, "/api/v1/sessions/"+uid+"/resume", "")
	require.Equal(t, http.StatusOK, rec.Code)
	next := body["next"].(map[string]any)
	assert.Equal(t, float64(0), next["round"])
	assert.Equal(t, float64(0), next["question"])
}

func TestErrorMapping(t *testing.T) {
	e := newTestServer(t)
	uid := createTestSession(t, e)

	t.Run("unknown session is 404", func(t *testing.T) {
		rec, _ := doJSON(t, e, http.MethodGet, "/api/v1/sessions/does-not-exist", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("answer before start is 409", func(t *testing.T) {
		rec, _ := doJSON(t, e, http.MethodPost, "/api/v1/sessions/"+uid+"/answers",
			`{"round": 0, "question": 0, "text": "x"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("out-of-order answer is 400", func(t *testing.T) {
		rec, _ := doJSON(t, e, http.MethodPost, "/api/v1/sessions/"+uid+"/start", "")
		require.Equal(t, http.StatusOK, rec.Code)
		rec, _ = doJSON(t, e, http.MethodPost, "/api/v1/sessions/"+uid+"/answers",
			`{"round": 2, "question": 0, "text": "x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("finalize before completion is 409", func(t *testing.T) {
		rec, _ := doJSON(t, e, http.MethodPost, "/api/v1/sessions/"+uid+"/finalize", "")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestAbandon(t *testing.T) {
	e := newTestServer(t)
	uid := createTestSession(t, e)

	rec, _ := doJSON(t, e, http.MethodPost, "/api/v1/sessions/"+uid+"/start", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, e, http.MethodPost, "/api/v1/sessions/"+uid+"/abandon", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Terminal; every further mutation conflicts.
	rec, _ = doJSON(t, e, http.MethodPost, "/api/v1/sessions/"+uid+"/answers",
		`{"round": 0, "question": 0, "text": "x"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = doJSON(t, e, http.MethodGet, "/api/v1/sessions?status=ABANDONED", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, uid, list[0]["uid"])
}
