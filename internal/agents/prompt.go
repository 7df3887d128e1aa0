package agents

import (
	"strings"
)

// Built-in stage templates. Personas may override any of these through
// their prompt_templates map; placeholders use {name} substitution.
const (
	defaultInitialDecisionTemplate = `As a representative of {cultural_background} culture, evaluate whether the following behavior is socially acceptable in {country}.

Cultural background: {cultural_context}

Rule of thumb: {rule_of_thumb}
Scenario: {story}

Based on your cultural values and your understanding of the culture of {country}, answer whether this behavior is acceptable.
Answer format: Yes/No/Neither, followed by at most three sentences explaining your reasoning.

Answer:`

	defaultFeedbackTemplate = `As a representative of {cultural_background} culture, you are discussing the social acceptability of the following scenario in {country} with a participant from another cultural background.

Cultural background: {cultural_context}
Rule of thumb: {rule_of_thumb}
Scenario: {story}

Your view: {your_response}
The other participant's view: {other_response}

Based on your cultural values, give feedback on the other participant's view in at most three sentences.

Feedback:`

	defaultFinalDecisionTemplate = `As a representative of {cultural_background} culture, make a final decision based on the full discussion below.

Cultural background: {cultural_context}
Rule of thumb: {rule_of_thumb}
Scenario: {story}

Discussion:
Your initial view: {your_response}
The other participant's initial view: {other_response}
Your feedback: {your_feedback}
The other participant's feedback: {other_feedback}

Weigh the discussion against your cultural values and give a final judgment.
Answer with exactly one of: Yes, No or Neither.

Final answer:`
)

// buildPrompt selects the stage template and fills it from the persona and
// the request context. Unknown stages fall back to wrapping the raw prompt
// in the persona's cultural framing.
func (a *CulturalAgent) buildPrompt(prompt string, context map[string]interface{}) string {
	stage := stringValue(context, "stage")

	vars := map[string]string{
		"cultural_background": a.persona.Name,
		"cultural_context":    a.persona.Context,
		"country":             stringValue(context, "country"),
		"story":               stringValue(context, "story"),
		"rule_of_thumb":       stringValue(context, "rule_of_thumb"),
		"your_response":       stringValue(context, "your_response"),
		"other_response":      stringValue(context, "other_response"),
		"your_feedback":       stringValue(context, "your_feedback"),
		"other_feedback":      stringValue(context, "other_feedback"),
	}

	switch stage {
	case StageInitialDecision:
		return renderTemplate(a.template(StageInitialDecision, defaultInitialDecisionTemplate), vars)
	case StageFeedback:
		return renderTemplate(a.template(StageFeedback, defaultFeedbackTemplate), vars)
	case StageFinalDecision:
		return renderTemplate(a.template(StageFinalDecision, defaultFinalDecisionTemplate), vars)
	default:
		return "As a representative of " + a.persona.Name + " culture:\n\nCultural background: " + a.persona.Context + "\n\n" + prompt
	}
}

// template returns the persona's override for the stage, or the default.
func (a *CulturalAgent) template(stage, fallback string) string {
	if a.persona.PromptTemplates != nil {
		if t, ok := a.persona.PromptTemplates[stage]; ok && t != "" {
			return t
		}
	}
	return fallback
}

// renderTemplate substitutes {name} placeholders. Placeholders without a
// value are replaced with the empty string.
func renderTemplate(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{"+key+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
