// Package events defines the typed session event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - session.*: orchestrator state transitions.
//   - user_answer.*: answer transcripts.
//
// Semantics used across the package:
//
//   - Partial: provisional text, superseded by later events for the same
//     question.
//   - Committed: terminal text for one listening turn, at most once per turn.
package events
