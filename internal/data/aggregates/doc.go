// Package aggregates contains infrastructure implementations of domain aggregate contracts.
//
// Implementations in this package read and write typed documents through
// internal/data/documents and own the optimistic transaction boundary for every
// invariant-critical write.
package aggregates
