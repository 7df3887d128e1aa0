package agents

import (
	"strings"

	"github.com/ternarybob/concord/internal/models"
)

// ParseResponse extracts the structured answer for a stage. Final-decision
// replies are parsed as a bare verdict token; earlier stages get the
// detailed answer-plus-explanation split.
func (a *CulturalAgent) ParseResponse(raw string, stage string) *models.ParsedResponse {
	if stage == StageFinalDecision {
		return parseFinalAnswer(raw)
	}
	return parseDetailedResponse(raw)
}

// parseFinalAnswer reads a strict yes|no|neither verdict by substring search
// in priority order. Absence of any recognized token defaults to neither.
func parseFinalAnswer(raw string) *models.ParsedResponse {
	lowered := strings.ToLower(strings.TrimSpace(raw))

	return &models.ParsedResponse{
		Answer:      matchAnswer(lowered),
		RawResponse: raw,
		Confidence:  calculateConfidence(raw),
	}
}

// parseDetailedResponse splits a reply into the answer line and the
// remaining explanation. The answer line is the first line containing a
// recognized token; without one, the whole reply is explanation and the
// answer defaults to neither.
func parseDetailedResponse(raw string) *models.ParsedResponse {
	trimmed := strings.TrimSpace(raw)
	lines := strings.Split(trimmed, "\n")

	var answerLine string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		lowered := strings.ToLower(line)
		if strings.Contains(lowered, "yes") || strings.Contains(lowered, "no") || strings.Contains(lowered, "neither") {
			answerLine = line
			break
		}
	}

	explanation := trimmed
	answer := models.AnswerNeither
	if answerLine != "" {
		explanation = strings.TrimSpace(strings.Replace(trimmed, answerLine, "", 1))
		answer = matchAnswer(strings.ToLower(answerLine))
	}

	return &models.ParsedResponse{
		Answer:      answer,
		Explanation: explanation,
		RawResponse: raw,
		Confidence:  calculateConfidence(raw),
	}
}

// matchAnswer applies the canonical yes, no, neither priority; first match
// wins, no match defaults to neither.
func matchAnswer(lowered string) models.Answer {
	switch {
	case strings.Contains(lowered, "yes"):
		return models.AnswerYes
	case strings.Contains(lowered, "no"):
		return models.AnswerNo
	case strings.Contains(lowered, "neither"):
		return models.AnswerNeither
	default:
		return models.AnswerNeither
	}
}
