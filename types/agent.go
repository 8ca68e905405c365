package types

import "strings"

// AgentConfig is the typed definition of one LLM agent: which model it runs
// on and the instruction set that becomes its system prompt. Instructions
// are an ordered list so the rendered prompt is stable.
type AgentConfig struct {
	Name         string
	Model        string
	Temperature  float32
	Description  string
	Instructions []string
}

// SystemPrompt renders the description and instructions into the system
// message sent with every request for this agent.
func (c AgentConfig) SystemPrompt() string {
	var b strings.Builder
	b.WriteString(c.Description)
	for _, inst := range c.Instructions {
		b.WriteString("\n")
		b.WriteString(inst)
	}
	return b.String()
}
