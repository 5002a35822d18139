package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/interviewforge/interviewforge/plugin/ai/agent"
	"github.com/interviewforge/interviewforge/store"
)

const (
	resultsFile    = "interview_results.json"
	critiquesFile  = "critiques.json"
	studyPlanFile  = "study_plan.md"
	flashcardsFile = "flashcards.json"
	emailFile      = "followup_email.txt"
)

type resultsPayload struct {
	SessionUID   string                 `json:"session_uid"`
	Role         string                 `json:"role"`
	Status       store.SessionStatus    `json:"status"`
	Profile      store.CandidateProfile `json:"profile"`
	Rounds       []store.Round          `json:"rounds"`
	Answers      []store.Answer         `json:"answers"`
	AverageScore float64                `json:"average_score"`
}

type critiquePayload struct {
	Round    int               `json:"round"`
	Question string            `json:"question"`
	Answer   string            `json:"answer"`
	Score    store.RubricScore `json:"score"`
	Feedback string            `json:"feedback"`
}

// writeArtifacts lays the run outputs down under dir and returns the file
// names written.
func writeArtifacts(dir string, session *store.InterviewSession, plan string, cards []agent.Flashcard, email string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %s", dir)
	}

	critiques := make([]critiquePayload, 0, len(session.Answers))
	for _, a := range session.Answers {
		question := ""
		if a.Round < len(session.Rounds) && a.Question < len(session.Rounds[a.Round].Questions) {
			question = session.Rounds[a.Round].Questions[a.Question]
		}
		critiques = append(critiques, critiquePayload{
			Round:    a.Round,
			Question: question,
			Answer:   a.RawText,
			Score:    a.Score,
			Feedback: a.Feedback,
		})
	}

	results := resultsPayload{
		SessionUID:   session.UID,
		Role:         session.Role,
		Status:       session.Status,
		Profile:      session.Profile,
		Rounds:       session.Rounds,
		Answers:      session.Answers,
		AverageScore: averageScore(session.Answers),
	}

	files := []string{resultsFile, critiquesFile, studyPlanFile, flashcardsFile, emailFile}
	if err := writeJSON(filepath.Join(dir, resultsFile), results); err != nil {
		return nil, err
	}
	if err := writeJSON(filepath.Join(dir, critiquesFile), critiques); err != nil {
		return nil, err
	}
	if err := writeText(filepath.Join(dir, studyPlanFile), plan); err != nil {
		return nil, err
	}
	if err := writeJSON(filepath.Join(dir, flashcardsFile), cards); err != nil {
		return nil, err
	}
	if err := writeText(filepath.Join(dir, emailFile), email); err != nil {
		return nil, err
	}
	return files, nil
}

func averageScore(answers []store.Answer) float64 {
	if len(answers) == 0 {
		return 0
	}
	total := 0
	for _, a := range answers {
		total += a.Score.Structure + a.Score.Depth + a.Score.Examples
	}
	return float64(total) / float64(len(answers)*3)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %s", filepath.Base(path))
	}
	return writeText(path, string(data))
}

func writeText(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", filepath.Base(path))
	}
	return nil
}
