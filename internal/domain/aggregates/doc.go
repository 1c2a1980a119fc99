// Package aggregates defines domain-facing aggregate contracts.
//
// Contracts here avoid persistence and transport details. Implementations live
// in internal/data/aggregates and decide how each write boundary is enforced.
package aggregates
