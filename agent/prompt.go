package agent

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/kadirpekel/troupe/config"
)

// systemPromptTemplate renders a persona plus the concatenated faculty
// definition/constraint fragments into one system message, matching the
// teacher's PromptSlots composition generalized from five fixed slots to
// one persona template plus per-faculty injected fragments.
var systemPromptTemplate = template.Must(template.New("system").Funcs(template.FuncMap{
	"join": func(items []string) string { return strings.Join(items, ", ") },
}).Parse(strings.TrimLeft(`
You are {{.Persona.Name}}{{if .Persona.Age}}, a {{.Persona.Age}}-year-old{{end}}{{if .Persona.Nationality}} {{.Persona.Nationality}}{{end}}{{if .Persona.Occupation}} {{.Persona.Occupation}}{{end}}.

{{if .Persona.Routines}}Your routines: {{join .Persona.Routines}}.
{{end -}}
{{if .Persona.Traits}}Your traits: {{join .Persona.Traits}}.
{{end -}}
{{if .Persona.Interests}}Your interests: {{join .Persona.Interests}}.
{{end -}}
{{if .Persona.Skills}}Your skills: {{join .Persona.Skills}}.
{{end -}}
{{if .Persona.Relationships}}Your relationships:
{{range .Persona.Relationships}}- {{.Name}}: {{.Description}}
{{end}}{{end -}}

Current location: {{.Persona.CurrentLocation}}
Current datetime: {{.Persona.CurrentDatetime}}
{{if .Persona.CurrentContext}}Current context: {{join .Persona.CurrentContext}}
{{end -}}
{{if .Persona.CurrentAttention}}Current attention: {{.Persona.CurrentAttention}}
{{end -}}
{{if .Persona.CurrentGoals}}Current goals: {{join .Persona.CurrentGoals}}
{{end -}}
{{if .Persona.CurrentEmotions}}Current emotions: {{.Persona.CurrentEmotions}}
{{end -}}
{{if .Persona.CurrentlyAccessibleAgents}}Agents you can currently talk to: {{join .Persona.CurrentlyAccessibleAgents}}
{{end -}}

You must always respond with a single JSON object of the exact shape:
{"action": {"type": "<ACTION_KIND>", "content": "<string|object>", "target": "<agent name|empty>"}, "cognitive_state": {"goals": [...], "attention": "...", "emotions": "...", "context": [...]}}

{{if .FacultyDefinitions}}Additional action kinds available to you:
{{.FacultyDefinitions}}
{{end -}}
{{if .FacultyConstraints}}Constraints on your actions:
{{.FacultyConstraints}}
{{end -}}
`, "\n")))

// promptData is the template root passed to systemPromptTemplate.
type promptData struct {
	Persona            *config.PersonaConfig
	FacultyDefinitions string
	FacultyConstraints string
}

// renderSystemMessage re-renders the system prompt from the current
// persona configuration and faculty fragments. Callers must hold a.mu.
func (a *Agent) renderSystemMessage() (string, error) {
	var defs, constraints []string
	for _, f := range a.faculties {
		if d := strings.TrimSpace(f.ActionsDefinitionsPrompt()); d != "" {
			defs = append(defs, d)
		}
		if c := strings.TrimSpace(f.ActionsConstraintsPrompt()); c != "" {
			constraints = append(constraints, c)
		}
	}

	data := promptData{
		Persona:            a.persona,
		FacultyDefinitions: strings.Join(defs, "\n"),
		FacultyConstraints: strings.Join(constraints, "\n"),
	}

	var buf bytes.Buffer
	if err := systemPromptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("agent: rendering system prompt: %w", err)
	}
	return buf.String(), nil
}

// ensureSystemMessage returns the current system message, re-rendering it
// first if the persona or faculty set changed since the last render.
// Callers must hold a.mu.
func (a *Agent) ensureSystemMessage() (string, error) {
	if !a.promptDirty && a.systemMessage != "" {
		return a.systemMessage, nil
	}
	msg, err := a.renderSystemMessage()
	if err != nil {
		return "", err
	}
	a.systemMessage = msg
	a.promptDirty = false
	return msg, nil
}
