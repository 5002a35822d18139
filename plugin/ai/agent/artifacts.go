package agent

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/interviewforge/interviewforge/plugin/ai"
	"github.com/interviewforge/interviewforge/store"
)

// Flashcard is one question/answer study card.
type Flashcard struct {
	Q string `json:"q"`
	A string `json:"a"`
}

// ArtifactDrafter produces the post-interview study artifacts from a
// completed session.
type ArtifactDrafter struct {
	llm ai.GenerationService
}

// NewArtifactDrafter creates an artifact drafter.
func NewArtifactDrafter(llm ai.GenerationService) *ArtifactDrafter {
	return &ArtifactDrafter{llm: llm}
}

// StudyPlan drafts a markdown study plan from the session critiques.
func (d *ArtifactDrafter) StudyPlan(ctx context.Context, session *store.InterviewSession) (string, error) {
	resp, err := d.llm.Complete(ctx, studyPlanSystemPrompt, studyPlanPrompt(session))
	if err != nil {
		return "", errors.WithMessage(err, "draft study plan")
	}
	return resp, nil
}

// Flashcards drafts study flashcards from the session critiques. An
// unparseable response yields a single card holding the raw output rather
// than dropping the artifact.
func (d *ArtifactDrafter) Flashcards(ctx context.Context, session *store.InterviewSession) ([]Flashcard, error) {
	resp, err := d.llm.Complete(ctx, flashcardsSystemPrompt, flashcardsPrompt(session))
	if err != nil {
		return nil, errors.WithMessage(err, "draft flashcards")
	}

	var cards []Flashcard
	if err := json.Unmarshal([]byte(extractJSON(resp)), &cards); err != nil || len(cards) == 0 {
		slog.Warn("flashcard drafting returned unusable output, keeping raw text")
		cards = []Flashcard{{Q: "Review notes", A: resp}}
	}
	return cards, nil
}

// FollowUpEmail drafts a plain-text follow-up email for the candidate.
func (d *ArtifactDrafter) FollowUpEmail(ctx context.Context, session *store.InterviewSession) (string, error) {
	resp, err := d.llm.Complete(ctx, emailSystemPrompt, emailPrompt(session))
	if err != nil {
		return "", errors.WithMessage(err, "draft follow-up email")
	}
	return resp, nil
}
