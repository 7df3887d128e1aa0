package debate

import (
	"github.com/ternarybob/concord/internal/models"
)

// aggregate reduces the final per-agent responses to a deterministic
// verdict. Majority wins; ties break toward the earliest tied token in
// canonical answer order. Confidence is the mean over counted votes.
func aggregate(finalResponses map[string]*models.PhaseResponse) *models.Verdict {
	votes := make(map[models.Answer]int)
	byAgent := make(map[string]models.Answer)
	var confidenceSum float64
	counted := 0

	for agentID, resp := range finalResponses {
		if resp == nil || resp.Parsed == nil {
			continue
		}
		votes[resp.Parsed.Answer]++
		byAgent[agentID] = resp.Parsed.Answer
		confidenceSum += resp.Parsed.Confidence
		counted++
	}

	winner := models.AnswerNeither
	best := -1
	for _, answer := range models.CanonicalAnswers() {
		if votes[answer] > best {
			best = votes[answer]
			winner = answer
		}
	}

	confidence := 0.0
	if counted > 0 {
		confidence = confidenceSum / float64(counted)
	}

	return &models.Verdict{
		Answer:     winner,
		Votes:      votes,
		Confidence: confidence,
		ByAgent:    byAgent,
	}
}
