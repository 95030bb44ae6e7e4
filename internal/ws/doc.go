// Package ws serves the bridge WebSocket: inbound pointer, keyboard, and
// snapshot frames become session events, and session events flow back out as
// overlay and status frames.
package ws
