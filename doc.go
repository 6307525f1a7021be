// Package troupe implements the core of a multi-agent simulation engine
// driven by a large language model.
//
// An Agent carries a persona, a cognitive state, episodic and semantic
// memory, and an ordered list of faculties. It perceives stimuli,
// converts them plus its persona into a prompt, calls an LLM, and parses
// the response into an action and an updated cognitive state. A World
// advances a simulated clock and polls its agents once per step,
// dispatching their actions (TALK, REACH_OUT) to the right recipients
// and maintaining the accessibility graph between them. A Simulation
// wraps every state-mutating call from agents and worlds in a
// Transaction: calls are memoized into a content-addressed trace chain
// so that re-running an identical program against the same cache file
// replays deterministically without any further LLM calls.
//
// # Package layout
//
//	config/     - YAML configuration: LLM/database/embedder/agent/simulation settings
//	registry/   - generic thread-safe name-keyed registry
//	llms/       - LLM provider interface, OpenAI/Anthropic bindings, retry policy, response cache
//	embedder/   - text-embedding provider interface
//	databases/  - vector database provider interface (Chromem, Qdrant)
//	memory/     - episodic (windowed log) and semantic (vector-indexed) memory
//	faculty/    - Recall, Files-and-Web-Grounding, and Tool Use capability plug-ins
//	tools/      - tool plugins the Tool Use faculty delegates to
//	agent/      - persona-bearing Agent and its act loop
//	world/      - World environment, step scheduler, and action dispatch
//	simulation/ - Simulation lifecycle, Transaction wrapper, and trace chain
//	runtime/    - explicit registries replacing process-wide globals
//
// # Determinism
//
// Begin a simulation against a cache file, drive agents and worlds
// through their public methods, and checkpoint periodically. Re-running
// the same program against the same cache file restores identical state
// at every step by replaying cached trace nodes instead of re-invoking
// the LLM, per the Transaction protocol in package simulation.
package troupe
