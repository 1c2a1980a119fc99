// Package aggregates contains infrastructure implementations of domain aggregate contracts.
//
// Implementations in this package compose the cascade engine and table-level
// repos from internal/data, map infrastructure failures into aggregate error
// codes and report every operation through Hooks.
package aggregates
