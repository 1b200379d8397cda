// Package core provides the foundational domain types and interfaces shared by
// the learnmesh packages. It defines the abstractions for:
//
//   - Sessions (per-conversation key/value state threaded by the orchestrator)
//   - Artifacts (named, versioned binary payloads)
//   - ToolContext (the scoped surface a tool sees during one invocation)
//   - Pluggable stores for session state and artifacts
//
// Implementation concerns (persistence backends, transports, concrete tools)
// live in sibling packages so stores can be swapped without touching callers.
package core
