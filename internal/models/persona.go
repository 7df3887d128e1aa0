package models

// Persona holds the static cultural profile that parameterizes an agent's
// prompt construction. One record per cultural AgentType; behavior is shared,
// only this data differs between kinds.
type Persona struct {
	Type AgentType `yaml:"type" json:"type"`

	// Name is the short display name used in prompts (e.g. "Christian")
	Name string `yaml:"name" json:"name"`

	// Context is the background paragraph injected into every prompt
	Context string `yaml:"context" json:"context"`

	CulturalValues     []string          `yaml:"cultural_values" json:"cultural_values"`
	SocialNorms        map[string]string `yaml:"social_norms" json:"social_norms"`
	CommunicationStyle map[string]string `yaml:"communication_style" json:"communication_style"`
	DecisionFactors    []string          `yaml:"decision_factors" json:"decision_factors"`

	// PromptTemplates optionally overrides the built-in stage templates,
	// keyed by stage name (initial_decision, feedback, final_decision).
	PromptTemplates map[string]string `yaml:"prompt_templates" json:"prompt_templates"`
}

// similarityMatrix records pairwise affinity between cultural kinds.
// Descriptive metadata only; the coordinator's control flow does not
// consult it.
var similarityMatrix = map[[2]AgentType]float64{
	{AgentTypeChristian, AgentTypeBuddhist}:    0.3,
	{AgentTypeChristian, AgentTypeHindu}:       0.2,
	{AgentTypeChristian, AgentTypeIslamic}:     0.4,
	{AgentTypeChristian, AgentTypeTraditional}: 0.1,
	{AgentTypeIslamic, AgentTypeHindu}:         0.3,
	{AgentTypeIslamic, AgentTypeBuddhist}:      0.2,
	{AgentTypeIslamic, AgentTypeTraditional}:   0.2,
	{AgentTypeBuddhist, AgentTypeHindu}:        0.6,
	{AgentTypeBuddhist, AgentTypeTraditional}:  0.4,
	{AgentTypeHindu, AgentTypeTraditional}:     0.3,
}

// CulturalSimilarity returns the affinity score between two cultural kinds.
// Unknown pairs default to 0.1; a kind compared with itself is 1.0.
func CulturalSimilarity(a, b AgentType) float64 {
	if a == b {
		return 1.0
	}
	if v, ok := similarityMatrix[[2]AgentType{a, b}]; ok {
		return v
	}
	if v, ok := similarityMatrix[[2]AgentType{b, a}]; ok {
		return v
	}
	return 0.1
}
