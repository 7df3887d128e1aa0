package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/concord/internal/models"
)

func newParserAgent(t *testing.T) *CulturalAgent {
	t.Helper()
	persona := BuiltinPersonas()[models.AgentTypeChristian]
	return New("cultural_christian_instance", models.AgentTypeChristian, persona, &stubGenerator{}, Options{}, arbor.NewLogger())
}

func TestParseFinalAnswer(t *testing.T) {
	a := newParserAgent(t)

	cases := []struct {
		name string
		raw  string
		want models.Answer
	}{
		{"plain yes", "Yes", models.AnswerYes},
		{"plain no", "No", models.AnswerNo},
		{"plain neither", "Neither", models.AnswerNeither},
		{"yes in sentence", "I would say yes, this is acceptable in that country.", models.AnswerYes},
		{"yes wins over no", "Yes, although some would say no.", models.AnswerYes},
		{"no wins over neither", "No, it is neither polite nor acceptable.", models.AnswerNo},
		{"unrecognized defaults to neither", "It depends entirely on the situation.", models.AnswerNeither},
		{"empty defaults to neither", "", models.AnswerNeither},
		{"case insensitive", "YES, absolutely.", models.AnswerYes},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed := a.ParseResponse(tc.raw, StageFinalDecision)
			assert.Equal(t, tc.want, parsed.Answer)
			assert.Equal(t, tc.raw, parsed.RawResponse)
		})
	}
}

func TestParseDetailedResponse(t *testing.T) {
	a := newParserAgent(t)

	raw := "Yes, this is acceptable.\nIn my culture hospitality toward guests is a duty.\nRefusing would be seen as rude."
	parsed := a.ParseResponse(raw, StageInitialDecision)

	assert.Equal(t, models.AnswerYes, parsed.Answer)
	assert.Contains(t, parsed.Explanation, "hospitality toward guests")
	assert.NotContains(t, parsed.Explanation, "Yes, this is acceptable.")
}

func TestParseDetailedResponseWithoutAnswerLine(t *testing.T) {
	a := newParserAgent(t)

	raw := "This situation is hard to judge from my cultural standpoint."
	parsed := a.ParseResponse(raw, StageInitialDecision)

	assert.Equal(t, models.AnswerNeither, parsed.Answer)
	assert.Equal(t, raw, parsed.Explanation)
}

func TestCalculateConfidence(t *testing.T) {
	assert.Equal(t, 0.1, calculateConfidence("short"))
	assert.Equal(t, 0.1, calculateConfidence("   padded  "))

	fifty := make([]byte, 50)
	for i := range fifty {
		fifty[i] = 'a'
	}
	assert.InDelta(t, 0.5, calculateConfidence(string(fifty)), 0.001)

	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	assert.Equal(t, 0.9, calculateConfidence(string(long)))
}
