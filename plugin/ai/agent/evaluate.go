package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/interviewforge/interviewforge/plugin/ai"
	"github.com/interviewforge/interviewforge/server/interview"
	"github.com/interviewforge/interviewforge/store"
)

// Evaluator scores candidate answers against the rubric. It satisfies
// interview.Evaluator.
type Evaluator struct {
	llm ai.GenerationService
}

// NewEvaluator creates an answer evaluator.
func NewEvaluator(llm ai.GenerationService) *Evaluator {
	return &Evaluator{llm: llm}
}

type critiquePayload struct {
	Structure int    `json:"structure"`
	Depth     int    `json:"depth"`
	Examples  int    `json:"examples"`
	Feedback  string `json:"feedback"`
}

// Evaluate critiques one answer and returns a rubric score plus feedback.
// A service failure is returned as-is so the caller can retry the whole
// submission; an unparseable response degrades to a neutral score with the
// raw output as feedback.
func (e *Evaluator) Evaluate(ctx context.Context, question interview.Question, answerText string, profile store.CandidateProfile) (store.RubricScore, string, error) {
	resp, err := e.llm.Complete(ctx, evaluateSystemPrompt, evaluatePrompt(question.Text, answerText, profile))
	if err != nil {
		return store.RubricScore{}, "", err
	}

	var payload critiquePayload
	if err := json.Unmarshal([]byte(extractJSON(resp)), &payload); err != nil {
		slog.Warn("answer critique returned non-JSON output, using fallback scoring",
			slog.String("error", err.Error()))
		payload = fallbackCritique(resp)
	}

	score := store.RubricScore{
		Structure: clampScore(payload.Structure),
		Depth:     clampScore(payload.Depth),
		Examples:  clampScore(payload.Examples),
	}
	return score, payload.Feedback, nil
}

var scoreRe = regexp.MustCompile(`(?i)(structure|depth|examples)\D{0,10}(\d{1,2})`)

// fallbackCritique scrapes "structure: 7" style fragments out of free text.
// Dimensions it cannot find default to the middle of the scale.
func fallbackCritique(resp string) critiquePayload {
	payload := critiquePayload{Structure: 5, Depth: 5, Examples: 5, Feedback: resp}
	for _, m := range scoreRe.FindAllStringSubmatch(resp, -1) {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		switch m[1][0] {
		case 's', 'S':
			payload.Structure = n
		case 'd', 'D':
			payload.Depth = n
		case 'e', 'E':
			payload.Examples = n
		}
	}
	return payload
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 10 {
		return 10
	}
	return n
}
