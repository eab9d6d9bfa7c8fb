// Package idgen centralises task and message identifier generation so that
// tests can substitute a deterministic source.
package idgen
