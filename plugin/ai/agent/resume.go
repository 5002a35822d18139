// Package agent implements the InterviewForge collaborators: thin prompt
// builders over one shared generation service. Each agent sends structured
// text and parses the response; none of them keeps state.
package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/interviewforge/interviewforge/plugin/ai"
	"github.com/interviewforge/interviewforge/store"
)

// ResumeAnalyzer extracts a structured candidate profile from resume text.
type ResumeAnalyzer struct {
	llm ai.GenerationService
}

// NewResumeAnalyzer creates a resume analyzer.
func NewResumeAnalyzer(llm ai.GenerationService) *ResumeAnalyzer {
	return &ResumeAnalyzer{llm: llm}
}

// Analyze parses resume text into a candidate profile. When the model does
// not return valid JSON the raw output is kept on the profile instead of
// failing the run.
func (a *ResumeAnalyzer) Analyze(ctx context.Context, resumeText, role string) (store.CandidateProfile, error) {
	resp, err := a.llm.Complete(ctx, resumeSystemPrompt, resumePrompt(resumeText, role))
	if err != nil {
		return store.CandidateProfile{}, err
	}

	var profile store.CandidateProfile
	if err := json.Unmarshal([]byte(extractJSON(resp)), &profile); err != nil {
		slog.Warn("resume analysis returned non-JSON output, keeping raw text",
			slog.String("error", err.Error()))
		profile = store.CandidateProfile{Raw: resp}
	}
	if profile.Name == "" {
		profile.Name = "Candidate"
	}
	return profile, nil
}

// extractJSON trims model chatter around a JSON payload, e.g. markdown code
// fences or a leading sentence before the object.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if start := strings.IndexAny(s, "{["); start >= 0 {
		var end int
		if s[start] == '{' {
			end = strings.LastIndex(s, "}")
		} else {
			end = strings.LastIndex(s, "]")
		}
		if end > start {
			return s[start : end+1]
		}
	}
	return s
}
