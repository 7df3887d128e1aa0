package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/concord/internal/models"
)

func completedResult() *models.DebateResult {
	started := time.Now().Add(-time.Minute)
	return &models.DebateResult{
		ConversationID: "debate_report_test",
		Scenario: models.Scenario{
			Country:     "Japan",
			Story:       "A guest wore shoes inside the house.",
			RuleOfThumb: "Shoes are removed at the entrance.",
		},
		Phase: models.PhaseCompleted,
		InitialResponses: map[string]*models.PhaseResponse{
			"cultural_christian_instance": {
				RawResponse: "No, visitors should follow the host's customs.",
				Parsed:      &models.ParsedResponse{Answer: models.AnswerNo, Confidence: 0.4},
			},
		},
		FinalResponses: map[string]*models.PhaseResponse{
			"cultural_christian_instance": {
				RawResponse: "No",
				Parsed:      &models.ParsedResponse{Answer: models.AnswerNo, Confidence: 0.1},
			},
		},
		Verdict: &models.Verdict{
			Answer:     models.AnswerNo,
			Votes:      map[models.Answer]int{models.AnswerNo: 1},
			Confidence: 0.1,
			ByAgent:    map[string]models.Answer{"cultural_christian_instance": models.AnswerNo},
		},
		StartedAt:   started,
		CompletedAt: started.Add(30 * time.Second),
		Duration:    30 * time.Second,
	}
}

func TestMarkdownTranscript(t *testing.T) {
	s := NewService(arbor.NewLogger())

	md := s.Markdown(completedResult())

	assert.Contains(t, md, "# Debate debate_report_test")
	assert.Contains(t, md, "**Country:** Japan")
	assert.Contains(t, md, "## Verdict")
	assert.Contains(t, md, "## Initial decisions")
	assert.Contains(t, md, "## Final decisions")
	assert.Contains(t, md, "visitors should follow the host's customs")
	// The feedback phase is empty and omitted entirely.
	assert.NotContains(t, md, "## Feedback")
}

func TestHTMLTranscript(t *testing.T) {
	s := NewService(arbor.NewLogger())

	html, err := s.HTML(completedResult())
	require.NoError(t, err)

	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "Japan")
	// The verdict table renders through the table extension.
	assert.Contains(t, html, "<table>")
}
