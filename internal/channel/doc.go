// Package channel maintains the two persistent WebSocket connections to the
// code backend: reload (server-pushed notifications) and message
// (bidirectional instruction envelopes).
//
// Each connection reconnects autonomously with capped exponential backoff
// plus jitter, retrying forever. The Client layered on top owns the
// cross-connection rules the transport cannot: deferring a reload that lands
// while an instruction is in flight, failing sends fast with a synthetic
// error response while disconnected, and resolving batch acknowledgments
// exactly once.
//
// Pending batch resolvers have no expiry; a permanent disconnect leaks them.
// The count is exposed so operators can see it rather than the engine
// guessing at a timeout the protocol does not define.
package channel
