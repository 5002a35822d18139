// Package v1 exposes the interview session lifecycle over HTTP.
package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/interviewforge/interviewforge/internal/profile"
	"github.com/interviewforge/interviewforge/plugin/ai/agent"
	"github.com/interviewforge/interviewforge/server/interview"
	"github.com/interviewforge/interviewforge/store"
)

type APIV1Service struct {
	Profile  *profile.Profile
	Store    *store.Store
	Machine  *interview.Machine
	Analyzer *agent.ResumeAnalyzer
	Rounds   *agent.RoundGenerator
	Drafter  *agent.ArtifactDrafter
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, machine *interview.Machine, analyzer *agent.ResumeAnalyzer, rounds *agent.RoundGenerator, drafter *agent.ArtifactDrafter) *APIV1Service {
	return &APIV1Service{
		Profile:  profile,
		Store:    store,
		Machine:  machine,
		Analyzer: analyzer,
		Rounds:   rounds,
		Drafter:  drafter,
	}
}

// Register attaches all v1 routes to the given Echo instance.
func (s *APIV1Service) Register(e *echo.Echo) {
	g := e.Group("/api/v1")

	g.GET("/status", s.GetStatus)

	g.POST("/sessions", s.CreateSession)
	g.GET("/sessions", s.ListSessions)
	g.GET("/sessions/:uid", s.GetSession)
	g.POST("/sessions/:uid/start", s.StartSession)
	g.POST("/sessions/:uid/answers", s.SubmitAnswer)
	g.POST("/sessions/:uid/pause", s.PauseSession)
	g.POST("/sessions/:uid/resume", s.ResumeSession)
	g.POST("/sessions/:uid/abandon", s.AbandonSession)
	g.POST("/sessions/:uid/finalize", s.FinalizeSession)
	g.GET("/sessions/:uid/artifacts", s.GetSessionArtifacts)
}
