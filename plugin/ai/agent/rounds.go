package agent

import (
	"context"
	"encoding/json"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/interviewforge/interviewforge/plugin/ai"
	"github.com/interviewforge/interviewforge/store"
)

// RoundPlan describes one round to generate.
type RoundPlan struct {
	Type      store.RoundType
	Questions int
}

// DefaultRoundPlan is the standard three-round interview.
var DefaultRoundPlan = []RoundPlan{
	{Type: store.RoundBehavioral, Questions: 2},
	{Type: store.RoundTechnical, Questions: 2},
	{Type: store.RoundSystemDesign, Questions: 1},
}

// RoundGenerator produces the ordered interview rounds for a candidate.
type RoundGenerator struct {
	llm  ai.GenerationService
	plan []RoundPlan
}

// NewRoundGenerator creates a round generator with the default plan.
func NewRoundGenerator(llm ai.GenerationService) *RoundGenerator {
	return &RoundGenerator{llm: llm, plan: DefaultRoundPlan}
}

// NewRoundGeneratorWithPlan creates a round generator with a custom plan.
func NewRoundGeneratorWithPlan(llm ai.GenerationService, plan []RoundPlan) *RoundGenerator {
	return &RoundGenerator{llm: llm, plan: plan}
}

type roundPayload struct {
	Focus     string   `json:"focus"`
	Questions []string `json:"questions"`
}

// Generate produces one round per plan entry, generating them concurrently
// and preserving the plan order. The result is fixed for the lifetime of a
// session.
func (g *RoundGenerator) Generate(ctx context.Context, profile store.CandidateProfile, role string) ([]store.Round, error) {
	rounds := make([]store.Round, len(g.plan))

	eg, ctx := errgroup.WithContext(ctx)
	for i, plan := range g.plan {
		i, plan := i, plan
		eg.Go(func() error {
			resp, err := g.llm.Complete(ctx, roundsSystemPrompt, roundPrompt(plan.Type, plan.Questions, profile, role))
			if err != nil {
				return err
			}

			var payload roundPayload
			if err := json.Unmarshal([]byte(extractJSON(resp)), &payload); err != nil || len(payload.Questions) == 0 {
				slog.Warn("round generation returned unusable output, using fallback questions",
					slog.String("round_type", string(plan.Type)))
				payload = fallbackRound(plan.Type)
			}

			rounds[i] = store.Round{
				Type:      plan.Type,
				Focus:     payload.Focus,
				Questions: payload.Questions,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return rounds, nil
}

func fallbackRound(kind store.RoundType) roundPayload {
	switch kind {
	case store.RoundBehavioral:
		return roundPayload{
			Focus:     "teamwork",
			Questions: []string{"Tell me about a time you led a project.", "Describe a time you handled conflict."},
		}
	case store.RoundTechnical:
		return roundPayload{
			Focus:     "fundamentals",
			Questions: []string{"Describe a project you are proud of and its hardest technical problem."},
		}
	case store.RoundSystemDesign:
		return roundPayload{
			Focus:     "design principles",
			Questions: []string{"Design a URL shortening service."},
		}
	}
	return roundPayload{Questions: []string{"Walk me through your background."}}
}
