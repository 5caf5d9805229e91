// Package logging provides concrete implementations of the reviewbench.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: Writes prefixed lines to stderr (or any io.Writer)
//   - NullLogger: Discards all messages (useful for testing)
//
// Results meant for the user (elapsed times) are printed to stdout by the
// caller and never go through a Logger.
package logging
