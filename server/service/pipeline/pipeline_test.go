package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interviewforge/interviewforge/internal/profile"
	"github.com/interviewforge/interviewforge/plugin/ai"
	"github.com/interviewforge/interviewforge/plugin/ai/agent"
	"github.com/interviewforge/interviewforge/server/interview"
	"github.com/interviewforge/interviewforge/store"
	"github.com/interviewforge/interviewforge/store/teststore"
)

func newTestPipeline(t *testing.T) (*Pipeline, string) {
	t.Helper()
	dataDir := t.TempDir()
	llm := ai.NewMockGenerationService()
	st := store.New(teststore.New(), &profile.Profile{Mode: "demo"})
	t.Cleanup(func() { st.Close() })
	machine := interview.NewMachine(st, agent.NewEvaluator(llm))
	p := New(machine,
		agent.NewResumeAnalyzer(llm),
		agent.NewRoundGenerator(llm),
		agent.NewArtifactDrafter(llm),
		dataDir)
	return p, dataDir
}

const demoResume = "Jane Doe. 3 years of data engineering. Python, SQL, Go. Built ETL pipelines, reduced latency by 30%."

func TestPipelineRun(t *testing.T) {
	ctx := context.Background()
	p, dataDir := newTestPipeline(t)

	result, err := p.Run(ctx, demoResume, "Data Engineer", DemoAnswerSource{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.RunID)

	assert.Equal(t, store.SessionCompleted, result.Session.Status)
	assert.Len(t, result.Session.Rounds, 3)
	assert.Equal(t, result.Session.TotalQuestions(), len(result.Session.Answers))

	assert.Equal(t, filepath.Join(dataDir, "runs", result.RunID), result.OutputDir)
	for _, name := range result.Files {
		info, err := os.Stat(filepath.Join(result.OutputDir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}

	data, err := os.ReadFile(filepath.Join(result.OutputDir, "interview_results.json"))
	require.NoError(t, err)
	var results struct {
		SessionUID   string         `json:"session_uid"`
		Role         string         `json:"role"`
		Answers      []store.Answer `json:"answers"`
		AverageScore float64        `json:"average_score"`
	}
	require.NoError(t, json.Unmarshal(data, &results))
	assert.Equal(t, result.Session.UID, results.SessionUID)
	assert.Equal(t, "Data Engineer", results.Role)
	assert.Len(t, results.Answers, len(result.Session.Answers))
	assert.InDelta(t, 5.0, results.AverageScore, 0.01) // mock scores 6/5/4 per answer

	data, err = os.ReadFile(filepath.Join(result.OutputDir, "critiques.json"))
	require.NoError(t, err)
	var critiques []struct {
		Question string `json:"question"`
		Feedback string `json:"feedback"`
	}
	require.NoError(t, json.Unmarshal(data, &critiques))
	require.Len(t, critiques, len(result.Session.Answers))
	assert.NotEmpty(t, critiques[0].Question)
	assert.NotEmpty(t, critiques[0].Feedback)
}

func TestPipelineRunGenerationFailure(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	llm := ai.NewMockGenerationService()
	llm.FailWith = ai.ErrGenerationUnavailable
	st := store.New(teststore.New(), &profile.Profile{Mode: "demo"})
	t.Cleanup(func() { st.Close() })
	machine := interview.NewMachine(st, agent.NewEvaluator(llm))
	p := New(machine,
		agent.NewResumeAnalyzer(llm),
		agent.NewRoundGenerator(llm),
		agent.NewArtifactDrafter(llm),
		dataDir)

	_, err := p.Run(ctx, demoResume, "Data Engineer", DemoAnswerSource{})
	require.ErrorIs(t, err, ai.ErrGenerationUnavailable)

	// Nothing was written.
	entries, err := os.ReadDir(dataDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPipelineSessionSurvivesMidRunFailure(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	llm := ai.NewMockGenerationService()
	st := store.New(teststore.New(), &profile.Profile{Mode: "demo"})
	t.Cleanup(func() { st.Close() })
	machine := interview.NewMachine(st, agent.NewEvaluator(llm))
	p := New(machine,
		agent.NewResumeAnalyzer(llm),
		agent.NewRoundGenerator(llm),
		agent.NewArtifactDrafter(llm),
		dataDir)

	// The answer source fails on the second question.
	calls := 0
	source := answerFunc(func(_ context.Context, q interview.Question) (string, error) {
		calls++
		if calls > 1 {
			return "", assert.AnError
		}
		return "a reasonable answer", nil
	})

	_, err := p.Run(ctx, demoResume, "Data Engineer", source)
	require.Error(t, err)

	// The partially answered session is still in the store and resumable.
	sessions, err := st.ListInterviewSessions(ctx, &store.FindInterviewSession{})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, store.SessionInProgress, sessions[0].Status)
	assert.Len(t, sessions[0].Answers, 1)
}

type answerFunc func(ctx context.Context, question interview.Question) (string, error)

func (f answerFunc) Answer(ctx context.Context, question interview.Question) (string, error) {
	return f(ctx, question)
}
