package agent

import (
	"fmt"
	"sort"

	"github.com/kadirpekel/troupe/config"
)

// Define sets a single persona field. When group is empty, key names the
// field directly (age, nationality, occupation, current_datetime,
// current_location, current_attention, current_emotions, or one of the
// list fields routines/traits/interests/skills/current_context/
// current_goals, to which value is appended). When group is non-empty,
// key/value are combined into one "key: value" entry appended to the
// named list field — mirroring define_several's grouped-record shape for
// a single record.
func (a *Agent) Define(key string, value any, group string) error {
	_, err := a.transact("Define", map[string]any{"key": key, "value": value, "group": group}, func() (any, error) {
		a.mu.Lock()
		defer a.mu.Unlock()
		if err := applyPersonaField(a.persona, key, value, group); err != nil {
			return nil, err
		}
		a.resetPrompt()
		return nil, nil
	})
	return err
}

// DefineSeveral defines multiple grouped records at once, e.g. a list of
// routine descriptions or trait descriptions, each appended to group.
func (a *Agent) DefineSeveral(group string, records []map[string]any) error {
	_, err := a.transact("DefineSeveral", map[string]any{"group": group, "records": records}, func() (any, error) {
		a.mu.Lock()
		defer a.mu.Unlock()
		for _, record := range records {
			if err := appendRecordToGroup(a.persona, group, record); err != nil {
				return nil, err
			}
		}
		a.resetPrompt()
		return nil, nil
	})
	return err
}

// DefineRelationships appends relationship entries to the agent's social
// graph, rendered into the persona's "relationships" prompt section.
func (a *Agent) DefineRelationships(relationships []config.Relationship) error {
	_, err := a.transact("DefineRelationships", relationships, func() (any, error) {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.persona.Relationships = append(a.persona.Relationships, relationships...)
		a.resetPrompt()
		return nil, nil
	})
	return err
}

// ClearRelationships discards every relationship entry.
func (a *Agent) ClearRelationships() error {
	_, err := a.transact("ClearRelationships", nil, func() (any, error) {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.persona.Relationships = nil
		a.resetPrompt()
		return nil, nil
	})
	return err
}

// RelatedTo reports the description of the relationship with the named
// agent, if one has been defined.
func (a *Agent) RelatedTo(name string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range a.persona.Relationships {
		if r.Name == name {
			return r.Description, true
		}
	}
	return "", false
}

func applyPersonaField(p *config.PersonaConfig, key string, value any, group string) error {
	if group != "" {
		return appendRecordToGroup(p, group, map[string]any{key: value})
	}
	switch key {
	case "name":
		p.Name = stringify(value)
	case "age":
		p.Age = toInt(value)
	case "nationality":
		p.Nationality = stringify(value)
	case "occupation":
		p.Occupation = stringify(value)
	case "current_datetime":
		p.CurrentDatetime = stringify(value)
	case "current_location":
		p.CurrentLocation = stringify(value)
	case "current_attention":
		p.CurrentAttention = stringify(value)
	case "current_emotions":
		p.CurrentEmotions = stringify(value)
	case "routines":
		p.Routines = append(p.Routines, stringify(value))
	case "traits":
		p.Traits = append(p.Traits, stringify(value))
	case "interests":
		p.Interests = append(p.Interests, stringify(value))
	case "skills":
		p.Skills = append(p.Skills, stringify(value))
	case "current_context":
		p.CurrentContext = append(p.CurrentContext, stringify(value))
	case "current_goals":
		p.CurrentGoals = append(p.CurrentGoals, stringify(value))
	default:
		return fmt.Errorf("agent: unknown persona field %q", key)
	}
	return nil
}

func appendRecordToGroup(p *config.PersonaConfig, group string, record map[string]any) error {
	entry := stringifyRecord(record)
	switch group {
	case "routines":
		p.Routines = append(p.Routines, entry)
	case "traits":
		p.Traits = append(p.Traits, entry)
	case "interests":
		p.Interests = append(p.Interests, entry)
	case "skills":
		p.Skills = append(p.Skills, entry)
	case "current_context":
		p.CurrentContext = append(p.CurrentContext, entry)
	case "current_goals":
		p.CurrentGoals = append(p.CurrentGoals, entry)
	default:
		return fmt.Errorf("agent: unknown persona group %q", group)
	}
	return nil
}

func stringifyRecord(record map[string]any) string {
	if v, ok := record["value"]; ok && len(record) == 1 {
		return stringify(v)
	}
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := ""
	for _, k := range keys {
		if s != "" {
			s += "; "
		}
		s += fmt.Sprintf("%s: %s", k, stringify(record[k]))
	}
	return s
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toInt(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		var i int
		fmt.Sscanf(stringify(v), "%d", &i)
		return i
	}
}
