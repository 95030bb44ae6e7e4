// Package session ties the editing engines together for one connected
// bridge. All state lives behind a single dispatch goroutine fed by an event
// channel; the bridge handler and the command channel only ever enqueue.
package session
