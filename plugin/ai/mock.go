package ai

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// MockGenerationService is a deterministic offline stand-in for the real
// generation API, used for demo runs and tests. Responses are keyed on
// prompt content.
type MockGenerationService struct {
	mu    sync.Mutex
	calls []string

	// FailWith, when set, is returned for every call.
	FailWith error
}

// NewMockGenerationService creates the offline stub.
func NewMockGenerationService() *MockGenerationService {
	return &MockGenerationService{}
}

// Calls returns the prompts seen so far.
func (m *MockGenerationService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockGenerationService) Complete(_ context.Context, system, prompt string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, prompt)
	failWith := m.FailWith
	m.mu.Unlock()

	if failWith != nil {
		return "", failWith
	}

	lower := strings.ToLower(system + "\n" + prompt)
	switch {
	case strings.Contains(lower, "resume") && strings.Contains(lower, "extract"):
		return mustJSON(map[string]any{
			"name":             "Jane Doe",
			"years_experience": 3,
			"skills":           []string{"python", "sql", "go"},
			"strengths":        []string{"shipping ETL pipelines", "reduced latency by 30%"},
			"weaknesses":       []string{"limited system design exposure"},
		}), nil
	case strings.Contains(lower, "behavioral") && strings.Contains(lower, "questions"):
		return mustJSON(map[string]any{
			"focus": "culture fit, teamwork",
			"questions": []string{
				"Tell me about a time you disagreed with a teammate.",
				"Describe a high-pressure situation and how you handled it.",
			},
		}), nil
	case strings.Contains(lower, "technical") && strings.Contains(lower, "questions"):
		return mustJSON(map[string]any{
			"focus": "algorithms, data handling",
			"questions": []string{
				"Write a function to find two numbers that sum to a target.",
				"Explain a time-complexity trade-off you considered.",
			},
		}), nil
	case strings.Contains(lower, "system design") && strings.Contains(lower, "questions"):
		return mustJSON(map[string]any{
			"focus": "design principles",
			"questions": []string{
				"Design a URL shortening service.",
			},
		}), nil
	case strings.Contains(lower, "critique") || strings.Contains(lower, "evaluate"):
		return mustJSON(map[string]any{
			"structure": 6,
			"depth":     5,
			"examples":  4,
			"feedback":  "Good structure; add metrics and edge-case discussion.",
		}), nil
	case strings.Contains(lower, "study plan"):
		return "- Week 1: arrays & hashing practice\n- Week 2: system design basics\n- Week 3: behavioral STAR practice\n", nil
	case strings.Contains(lower, "flashcard"):
		return mustJSON([]map[string]string{
			{"q": "What is idempotency?", "a": "An operation that can be applied repeatedly without changing the result beyond the first application."},
			{"q": "Average time complexity of quicksort?", "a": "O(n log n)"},
		}), nil
	case strings.Contains(lower, "follow-up") || strings.Contains(lower, "email"):
		return "Hi,\n\nThanks for the mock interview. I appreciated the feedback and will follow up on the study plan.\n\nBest,\nJane", nil
	}
	return "placeholder response", nil
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
