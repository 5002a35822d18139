// Package pipeline runs a complete mock interview end to end: resume
// analysis, round generation, the question/answer loop, and the study
// artifacts written to disk.
package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/interviewforge/interviewforge/plugin/ai/agent"
	"github.com/interviewforge/interviewforge/server/interview"
	"github.com/interviewforge/interviewforge/store"
)

// AnswerSource supplies the candidate's answer for each posed question.
// Implementations may block, e.g. on terminal input.
type AnswerSource interface {
	Answer(ctx context.Context, question interview.Question) (string, error)
}

// Pipeline wires the collaborator agents and the state machine into one
// runnable flow.
type Pipeline struct {
	machine  *interview.Machine
	analyzer *agent.ResumeAnalyzer
	rounds   *agent.RoundGenerator
	drafter  *agent.ArtifactDrafter
	dataDir  string
}

// New creates a pipeline writing its artifacts under dataDir.
func New(machine *interview.Machine, analyzer *agent.ResumeAnalyzer, rounds *agent.RoundGenerator, drafter *agent.ArtifactDrafter, dataDir string) *Pipeline {
	return &Pipeline{
		machine:  machine,
		analyzer: analyzer,
		rounds:   rounds,
		drafter:  drafter,
		dataDir:  dataDir,
	}
}

// Result records where a finished run left its outputs.
type Result struct {
	RunID     string
	Session   *store.InterviewSession
	OutputDir string
	Files     []string
}

// Run executes a full interview for one candidate. The session survives the
// run in the store regardless of outcome, so a run that fails mid-interview
// can be resumed through the state machine instead of starting over.
func (p *Pipeline) Run(ctx context.Context, resumeText, role string, source AnswerSource) (*Result, error) {
	profile, err := p.analyzer.Analyze(ctx, resumeText, role)
	if err != nil {
		return nil, errors.WithMessage(err, "analyze resume")
	}
	slog.Info("resume analyzed",
		slog.String("candidate", profile.Name),
		slog.Int("skills", len(profile.Skills)))

	rounds, err := p.rounds.Generate(ctx, profile, role)
	if err != nil {
		return nil, errors.WithMessage(err, "generate rounds")
	}

	session, err := p.machine.Create(ctx, role, profile, rounds)
	if err != nil {
		return nil, err
	}

	question, err := p.machine.Start(ctx, session.UID)
	if err != nil {
		return nil, err
	}

	for question != nil {
		text, err := source.Answer(ctx, *question)
		if err != nil {
			return nil, errors.WithMessagef(err, "collect answer for session %s", session.UID)
		}

		next, err := p.machine.SubmitAnswer(ctx, session.UID, question.Round, question.Question, text)
		if err != nil {
			return nil, errors.WithMessagef(err, "submit answer for session %s", session.UID)
		}
		question = next
	}

	final, err := p.machine.Finalize(ctx, session.UID)
	if err != nil {
		return nil, err
	}

	plan, err := p.drafter.StudyPlan(ctx, final)
	if err != nil {
		return nil, err
	}
	cards, err := p.drafter.Flashcards(ctx, final)
	if err != nil {
		return nil, err
	}
	email, err := p.drafter.FollowUpEmail(ctx, final)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	outputDir := filepath.Join(p.dataDir, "runs", runID)
	files, err := writeArtifacts(outputDir, final, plan, cards, email)
	if err != nil {
		return nil, err
	}
	slog.Info("interview run finished",
		slog.String("run_id", runID),
		slog.String("session", final.UID),
		slog.String("output_dir", outputDir))

	return &Result{
		RunID:     runID,
		Session:   final,
		OutputDir: outputDir,
		Files:     files,
	}, nil
}

// DemoAnswerSource produces canned answers, keeping demo runs fully offline.
type DemoAnswerSource struct{}

func (DemoAnswerSource) Answer(_ context.Context, question interview.Question) (string, error) {
	switch question.RoundType {
	case store.RoundBehavioral:
		return "In my last role I disagreed with a teammate about schema design. I set up a short review, we compared trade-offs with real query samples, and we shipped a hybrid that cut migration risk.", nil
	case store.RoundTechnical:
		return "I would use a hash map keyed by the complement of each value, giving a single pass at O(n) time and O(n) space. I would also discuss the sorted two-pointer alternative when memory is tight.", nil
	case store.RoundSystemDesign:
		return "I would start with requirements and scale estimates, use a base62 key service backed by a counter range per node, cache hot redirects, and add analytics via an async event stream.", nil
	}
	return "I would approach this step by step, starting from the requirements.", nil
}
