package agent

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interviewforge/interviewforge/plugin/ai"
	"github.com/interviewforge/interviewforge/server/interview"
	"github.com/interviewforge/interviewforge/store"
)

// fixedService returns the same payload for every call.
type fixedService struct {
	response string
	err      error
}

func (s *fixedService) Complete(_ context.Context, _, _ string) (string, error) {
	return s.response, s.err
}

func TestResumeAnalyzer(t *testing.T) {
	ctx := context.Background()

	t.Run("parses structured profile", func(t *testing.T) {
		analyzer := NewResumeAnalyzer(ai.NewMockGenerationService())
		profile, err := analyzer.Analyze(ctx, "3 years building ETL pipelines in Python.", "Data Engineer")
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", profile.Name)
		assert.Equal(t, 3, profile.YearsExperience)
		assert.Contains(t, profile.Skills, "python")
	})

	t.Run("keeps raw text on malformed output", func(t *testing.T) {
		analyzer := NewResumeAnalyzer(&fixedService{response: "not json at all"})
		profile, err := analyzer.Analyze(ctx, "resume", "Data Engineer")
		require.NoError(t, err)
		assert.Equal(t, "Candidate", profile.Name)
		assert.Equal(t, "not json at all", profile.Raw)
	})

	t.Run("propagates service failure", func(t *testing.T) {
		mock := ai.NewMockGenerationService()
		mock.FailWith = ai.ErrGenerationUnavailable
		analyzer := NewResumeAnalyzer(mock)
		_, err := analyzer.Analyze(ctx, "resume", "Data Engineer")
		require.ErrorIs(t, err, ai.ErrGenerationUnavailable)
	})
}

func TestRoundGenerator(t *testing.T) {
	ctx := context.Background()
	profile := store.CandidateProfile{Name: "Jane Doe", Skills: []string{"python"}}

	t.Run("generates default plan in order", func(t *testing.T) {
		gen := NewRoundGenerator(ai.NewMockGenerationService())
		rounds, err := gen.Generate(ctx, profile, "Data Engineer")
		require.NoError(t, err)
		require.Len(t, rounds, 3)
		assert.Equal(t, store.RoundBehavioral, rounds[0].Type)
		assert.Equal(t, store.RoundTechnical, rounds[1].Type)
		assert.Equal(t, store.RoundSystemDesign, rounds[2].Type)
		assert.Len(t, rounds[0].Questions, 2)
		assert.Len(t, rounds[2].Questions, 1)
		for _, r := range rounds {
			assert.NotEmpty(t, r.Focus)
			assert.NotEmpty(t, r.Questions)
		}
	})

	t.Run("falls back on malformed output", func(t *testing.T) {
		gen := NewRoundGenerator(&fixedService{response: "no questions here"})
		rounds, err := gen.Generate(ctx, profile, "Data Engineer")
		require.NoError(t, err)
		require.Len(t, rounds, 3)
		for _, r := range rounds {
			assert.NotEmpty(t, r.Questions)
		}
	})

	t.Run("propagates service failure", func(t *testing.T) {
		gen := NewRoundGenerator(&fixedService{err: errors.New("boom")})
		_, err := gen.Generate(ctx, profile, "Data Engineer")
		require.Error(t, err)
	})

	t.Run("honors a custom plan", func(t *testing.T) {
		gen := NewRoundGeneratorWithPlan(ai.NewMockGenerationService(), []RoundPlan{
			{Type: store.RoundTechnical, Questions: 1},
		})
		rounds, err := gen.Generate(ctx, profile, "Data Engineer")
		require.NoError(t, err)
		require.Len(t, rounds, 1)
		assert.Equal(t, store.RoundTechnical, rounds[0].Type)
	})
}

func TestEvaluator(t *testing.T) {
	ctx := context.Background()
	question := interview.Question{Round: 0, Question: 0, RoundType: store.RoundBehavioral, Text: "Tell me about a conflict."}
	profile := store.CandidateProfile{Name: "Jane Doe"}

	t.Run("parses rubric score", func(t *testing.T) {
		eval := NewEvaluator(ai.NewMockGenerationService())
		score, feedback, err := eval.Evaluate(ctx, question, "I talked it through with my teammate.", profile)
		require.NoError(t, err)
		assert.Equal(t, store.RubricScore{Structure: 6, Depth: 5, Examples: 4}, score)
		assert.NotEmpty(t, feedback)
	})

	t.Run("scrapes scores from free text", func(t *testing.T) {
		eval := NewEvaluator(&fixedService{response: "Structure: 8. Depth was 3. Examples score 9. Decent overall."})
		score, feedback, err := eval.Evaluate(ctx, question, "answer", profile)
		require.NoError(t, err)
		assert.Equal(t, store.RubricScore{Structure: 8, Depth: 3, Examples: 9}, score)
		assert.NotEmpty(t, feedback)
	})

	t.Run("clamps out-of-range scores", func(t *testing.T) {
		eval := NewEvaluator(&fixedService{response: `{"structure": 14, "depth": -2, "examples": 10, "feedback": "x"}`})
		score, _, err := eval.Evaluate(ctx, question, "answer", profile)
		require.NoError(t, err)
		assert.Equal(t, store.RubricScore{Structure: 10, Depth: 0, Examples: 10}, score)
	})

	t.Run("propagates service failure without a score", func(t *testing.T) {
		mock := ai.NewMockGenerationService()
		mock.FailWith = ai.ErrRateLimited
		eval := NewEvaluator(mock)
		_, _, err := eval.Evaluate(ctx, question, "answer", profile)
		require.ErrorIs(t, err, ai.ErrRateLimited)
	})
}

func TestArtifactDrafter(t *testing.T) {
	ctx := context.Background()
	session := &store.InterviewSession{
		UID:    "abc",
		Role:   "Data Engineer",
		Status: store.SessionCompleted,
		Profile: store.CandidateProfile{
			Name: "Jane Doe",
		},
		Rounds: []store.Round{
			{Type: store.RoundBehavioral, Questions: []string{"Tell me about a conflict."}},
		},
		Answers: []store.Answer{
			{Round: 0, Question: 0, RawText: "I talked it through.", Score: store.RubricScore{Structure: 6, Depth: 5, Examples: 4}, Feedback: "Add metrics."},
		},
	}

	t.Run("study plan", func(t *testing.T) {
		drafter := NewArtifactDrafter(ai.NewMockGenerationService())
		plan, err := drafter.StudyPlan(ctx, session)
		require.NoError(t, err)
		assert.Contains(t, plan, "Week 1")
	})

	t.Run("flashcards", func(t *testing.T) {
		drafter := NewArtifactDrafter(ai.NewMockGenerationService())
		cards, err := drafter.Flashcards(ctx, session)
		require.NoError(t, err)
		require.NotEmpty(t, cards)
		assert.NotEmpty(t, cards[0].Q)
		assert.NotEmpty(t, cards[0].A)
	})

	t.Run("flashcards fallback on malformed output", func(t *testing.T) {
		drafter := NewArtifactDrafter(&fixedService{response: "plain text cards"})
		cards, err := drafter.Flashcards(ctx, session)
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, "plain text cards", cards[0].A)
	})

	t.Run("follow-up email", func(t *testing.T) {
		drafter := NewArtifactDrafter(ai.NewMockGenerationService())
		email, err := drafter.FollowUpEmail(ctx, session)
		require.NoError(t, err)
		assert.Contains(t, email, "Thanks")
	})

	t.Run("service failure surfaces", func(t *testing.T) {
		mock := ai.NewMockGenerationService()
		mock.FailWith = ai.ErrGenerationUnavailable
		drafter := NewArtifactDrafter(mock)
		_, err := drafter.StudyPlan(ctx, session)
		require.ErrorIs(t, err, ai.ErrGenerationUnavailable)
	})
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `[1,2]`, extractJSON("Here you go: [1,2]"))
	assert.Equal(t, "plain", extractJSON("plain"))
}
