// Package logging provides structured logging built on zap.
package logging
