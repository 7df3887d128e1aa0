// Package report renders debate results as markdown transcripts and HTML.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/concord/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Service builds human-readable transcripts from debate results.
type Service struct {
	logger arbor.ILogger
	md     goldmark.Markdown
}

// NewService creates a new report service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Strikethrough),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
	}
}

// Markdown renders the full debate transcript as markdown.
func (s *Service) Markdown(result *models.DebateResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Debate %s\n\n", result.ConversationID)
	fmt.Fprintf(&b, "**Country:** %s\n\n", result.Scenario.Country)
	fmt.Fprintf(&b, "**Rule of thumb:** %s\n\n", result.Scenario.RuleOfThumb)
	fmt.Fprintf(&b, "**Scenario:** %s\n\n", result.Scenario.Story)
	fmt.Fprintf(&b, "**Status:** %s\n\n", result.Phase)

	if result.Verdict != nil {
		fmt.Fprintf(&b, "## Verdict\n\n")
		fmt.Fprintf(&b, "**Answer:** %s (confidence %.2f)\n\n", result.Verdict.Answer, result.Verdict.Confidence)

		if len(result.Verdict.ByAgent) > 0 {
			b.WriteString("| Participant | Final answer |\n|---|---|\n")
			for _, agentID := range sortedKeys(result.Verdict.ByAgent) {
				fmt.Fprintf(&b, "| %s | %s |\n", agentID, result.Verdict.ByAgent[agentID])
			}
			b.WriteString("\n")
		}
	}

	writePhase(&b, "Initial decisions", result.InitialResponses)
	writePhase(&b, "Feedback", result.FeedbackResponses)
	writePhase(&b, "Final decisions", result.FinalResponses)

	if !result.CompletedAt.IsZero() {
		fmt.Fprintf(&b, "---\n\nCompleted in %s.\n", result.Duration.Round(time.Millisecond))
	}

	return b.String()
}

// HTML renders the transcript as an HTML fragment.
func (s *Service) HTML(result *models.DebateResult) (string, error) {
	var out bytes.Buffer
	if err := s.md.Convert([]byte(s.Markdown(result)), &out); err != nil {
		return "", fmt.Errorf("failed to render transcript: %w", err)
	}
	return out.String(), nil
}

// writePhase appends one phase's responses in stable participant order.
func writePhase(b *strings.Builder, title string, responses map[string]*models.PhaseResponse) {
	if len(responses) == 0 {
		return
	}

	fmt.Fprintf(b, "## %s\n\n", title)

	ids := make([]string, 0, len(responses))
	for id := range responses {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		resp := responses[id]
		fmt.Fprintf(b, "### %s\n\n", id)
		fmt.Fprintf(b, "%s\n\n", strings.TrimSpace(resp.RawResponse))
		if resp.Parsed != nil && resp.Parsed.Answer != "" {
			fmt.Fprintf(b, "*Parsed answer: %s (confidence %.2f)*\n\n", resp.Parsed.Answer, resp.Parsed.Confidence)
		}
	}
}

func sortedKeys(m map[string]models.Answer) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
