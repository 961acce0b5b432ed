// Package chat provides the conversation orchestrator for answering
// questions about a single ingested document.
//
// Each turn follows a bounded two-phase protocol: the user message is
// persisted first, context is retrieved by vector similarity, and the
// completion service is called with two local tools available. If the model
// requests tool calls they are executed locally and a second completion call
// produces the final answer; no further tool rounds are permitted. Exactly
// one assistant message is persisted per successful turn.
package chat
