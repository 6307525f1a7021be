package simulation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/kadirpekel/troupe/agent"
	"github.com/kadirpekel/troupe/world"
)

// EncodedValue is the wire shape spec.md §4.7's "Determinism requirements"
// describes for trace-node output and state fields: a scalar/list/dict
// passes through verbatim under Type "JSON"; an embedded agent or world
// reference is recorded by name instead of serialized structurally, so
// identity is restored from the live registries on decode.
type EncodedValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
	Name  string          `json:"name,omitempty"`
}

const (
	encodedKindJSON     = "JSON"
	encodedKindAgentRef = "AgentRef"
	encodedKindWorldRef = "WorldRef"
)

// EncodeValue wraps an arbitrary call output per the envelope above. The
// core's transactional methods never return an *agent.Agent or
// *world.World directly today, but the envelope is type-complete per
// spec.md so a future operation that does can be decoded without a
// format change.
func EncodeValue(v any) EncodedValue {
	switch t := v.(type) {
	case *agent.Agent:
		return EncodedValue{Type: encodedKindAgentRef, Name: t.Name()}
	case *world.World:
		return EncodedValue{Type: encodedKindWorldRef, Name: t.Name()}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		raw = []byte("null")
	}
	return EncodedValue{Type: encodedKindJSON, Value: raw}
}

// TraceNode is one entry in the simulation's trace chain: the prior
// node's content hash, this call's event hash, and its encoded output and
// post-call state. It marshals as the 4-element tuple spec.md's glossary
// names: (prev_node_hash, event_hash, encoded_output, encoded_state).
type TraceNode struct {
	PrevNodeHash  string
	EventHash     string
	EncodedOutput EncodedValue
	EncodedState  json.RawMessage
}

func (n TraceNode) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]any{n.PrevNodeHash, n.EventHash, n.EncodedOutput, n.EncodedState})
}

func (n *TraceNode) UnmarshalJSON(data []byte) error {
	var tuple [4]json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("simulation: decoding trace node: %w", err)
	}
	if err := json.Unmarshal(tuple[0], &n.PrevNodeHash); err != nil {
		return fmt.Errorf("simulation: decoding trace node prev_node_hash: %w", err)
	}
	if err := json.Unmarshal(tuple[1], &n.EventHash); err != nil {
		return fmt.Errorf("simulation: decoding trace node event_hash: %w", err)
	}
	if err := json.Unmarshal(tuple[2], &n.EncodedOutput); err != nil {
		return fmt.Errorf("simulation: decoding trace node encoded_output: %w", err)
	}
	n.EncodedState = tuple[3]
	return nil
}

// nodeDigest computes the content hash of a node, used as the next
// node's prev_node_hash to form the content-addressed chain.
func nodeDigest(n TraceNode) string {
	data, err := json.Marshal(n)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// stableDigest computes event_hash = stable_digest(function_name, args,
// kwargs) per spec.md §4.7. Go has no kwargs; owner+funcName+args is the
// full call identity.
func stableDigest(parts ...any) string {
	h := sha256.New()
	for _, p := range parts {
		data, err := json.Marshal(p)
		if err != nil {
			data = []byte(fmt.Sprintf("%v", p))
		}
		h.Write(data)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
