package tools

import "fmt"

// Set is an ordered collection of Tools, the shape the Tool Use faculty
// iterates over. Order matters: the first tool to Claim an action kind
// wins.
type Set struct {
	tools []Tool
}

// NewSet constructs a Set from tools, in the given order.
func NewSet(tools ...Tool) *Set {
	return &Set{tools: tools}
}

// Add appends a tool to the end of the set.
func (s *Set) Add(t Tool) {
	s.tools = append(s.tools, t)
}

// All returns the tools in registration order.
func (s *Set) All() []Tool {
	return s.tools
}

// Get finds a tool by name.
func (s *Set) Get(name string) (Tool, bool) {
	for _, t := range s.tools {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

func (s *Set) String() string {
	return fmt.Sprintf("tools.Set(%d tools)", len(s.tools))
}
