// Package memory provides in-memory implementations of the driven ports.
// They back tests and runs where no state directory is available.
package memory
