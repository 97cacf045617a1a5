package agent

import "strings"

// Prompt assembles a system prompt from labeled sections in insertion order.
// Empty sections are skipped so callers can add context unconditionally.
type Prompt struct {
	sections []section
}

type section struct {
	label string
	body  string
}

// NewPrompt starts a prompt with an unlabeled instruction block.
func NewPrompt(instructions string) *Prompt {
	p := &Prompt{}
	if s := strings.TrimSpace(instructions); s != "" {
		p.sections = append(p.sections, section{body: s})
	}
	return p
}

// Add appends a labeled section. Whitespace-only bodies are dropped.
func (p *Prompt) Add(label, body string) *Prompt {
	body = strings.TrimSpace(body)
	if body == "" {
		return p
	}
	p.sections = append(p.sections, section{label: label, body: body})
	return p
}

// String renders the sections separated by blank lines.
func (p *Prompt) String() string {
	parts := make([]string, 0, len(p.sections))
	for _, s := range p.sections {
		if s.label == "" {
			parts = append(parts, s.body)
			continue
		}
		parts = append(parts, s.label+":\n"+s.body)
	}
	return strings.Join(parts, "\n\n")
}
