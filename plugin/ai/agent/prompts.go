package agent

import (
	"fmt"
	"strings"

	"github.com/interviewforge/interviewforge/store"
)

const (
	resumeSystemPrompt = "You are a resume analyst. Extract structured fields from resume text. " +
		"Respond with a single JSON object: {\"name\", \"years_experience\", \"skills\", \"strengths\", \"weaknesses\"}."

	roundsSystemPrompt = "You are an interview designer. Generate interview questions tailored to a candidate. " +
		"Respond with a single JSON object: {\"focus\": string, \"questions\": [string]}."

	evaluateSystemPrompt = "You are an interview coach. Critique the candidate's answer. " +
		"Respond with a single JSON object: {\"structure\": 0-10, \"depth\": 0-10, \"examples\": 0-10, \"feedback\": string}."

	studyPlanSystemPrompt = "You are a career coach. Produce a prioritized weekly study plan in markdown."

	flashcardsSystemPrompt = "You are a tutor. Produce flashcards as a JSON array of {\"q\", \"a\"} objects."

	emailSystemPrompt = "You draft professional follow-up emails after mock interviews."
)

func resumePrompt(resumeText, role string) string {
	return fmt.Sprintf("Extract structured fields from this resume for the role %q:\n\n%s", role, resumeText)
}

func roundPrompt(kind store.RoundType, count int, profile store.CandidateProfile, role string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d %s interview questions for the role %q.\n", count, roundKindLabel(kind), role)
	fmt.Fprintf(&b, "Candidate: %s", profileSummary(profile))
	return b.String()
}

func evaluatePrompt(question, answer string, profile store.CandidateProfile) string {
	var b strings.Builder
	b.WriteString("Critique this answer and score it.\n")
	fmt.Fprintf(&b, "Question: %s\n", question)
	fmt.Fprintf(&b, "Answer: %s\n", answer)
	fmt.Fprintf(&b, "Candidate: %s", profileSummary(profile))
	return b.String()
}

func studyPlanPrompt(session *store.InterviewSession) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a 3-week study plan for a %s candidate from these interview critiques:\n", session.Role)
	writeCritiques(&b, session)
	return b.String()
}

func flashcardsPrompt(session *store.InterviewSession) string {
	var b strings.Builder
	b.WriteString("Generate up to 10 flashcards covering the gaps shown by these interview critiques:\n")
	writeCritiques(&b, session)
	return b.String()
}

func emailPrompt(session *store.InterviewSession) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Draft a follow-up email for %s after a mock interview for the role %q.\n",
		candidateName(session.Profile), session.Role)
	b.WriteString("Summary of critiques:\n")
	writeCritiques(&b, session)
	return b.String()
}

func roundKindLabel(kind store.RoundType) string {
	switch kind {
	case store.RoundBehavioral:
		return "behavioral"
	case store.RoundTechnical:
		return "technical"
	case store.RoundSystemDesign:
		return "system design"
	}
	return strings.ToLower(string(kind))
}

func profileSummary(profile store.CandidateProfile) string {
	var parts []string
	if profile.Name != "" {
		parts = append(parts, "name: "+profile.Name)
	}
	if profile.YearsExperience > 0 {
		parts = append(parts, fmt.Sprintf("experience: %d years", profile.YearsExperience))
	}
	if len(profile.Skills) > 0 {
		parts = append(parts, "skills: "+strings.Join(profile.Skills, ", "))
	}
	if len(profile.Strengths) > 0 {
		parts = append(parts, "strengths: "+strings.Join(profile.Strengths, ", "))
	}
	if len(profile.Weaknesses) > 0 {
		parts = append(parts, "weaknesses: "+strings.Join(profile.Weaknesses, ", "))
	}
	if len(parts) == 0 {
		return "(no structured profile)"
	}
	return strings.Join(parts, "; ")
}

func candidateName(profile store.CandidateProfile) string {
	if profile.Name != "" {
		return profile.Name
	}
	return "the candidate"
}

func writeCritiques(b *strings.Builder, session *store.InterviewSession) {
	for _, a := range session.Answers {
		question := ""
		if a.Round < len(session.Rounds) && a.Question < len(session.Rounds[a.Round].Questions) {
			question = session.Rounds[a.Round].Questions[a.Question]
		}
		fmt.Fprintf(b, "- Q: %s\n  A: %s\n  Score: structure %d, depth %d, examples %d\n  Feedback: %s\n",
			question, a.RawText, a.Score.Structure, a.Score.Depth, a.Score.Examples, a.Feedback)
	}
}
