// Package cascade removes an aggregate root together with every row that
// references it, child-first, against a relational store.
//
// A Plan is the dependency graph: an ordered list of discover and delete
// steps over named collections. The Orchestrator executes a plan for one
// root id and records a StepOutcome per step; BuildReport reduces the
// resulting Result into a caller-facing verdict and audit trail.
//
// There is no wrapping transaction. Steps that completed before an abort stay
// applied and are reported as such.
package cascade
