// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different
// environments (development vs production) and integrates with the
// Fiber web framework used by the merge API.
//
// # Context Awareness
//
// The WithRayID helper extracts the RayID (request ID) from a Fiber
// context and attaches it to the log entry, so all logs belonging to
// one merge session request can be correlated.
package logger
