package aggregates

// WriteTxOwnership defines who owns write transaction boundaries.
type WriteTxOwnership string

const (
	// WriteTxOwnedByAggregate means aggregate write methods open and commit their own transaction.
	WriteTxOwnedByAggregate WriteTxOwnership = "aggregate_owned"
	// WriteTxNone means the aggregate issues one statement per step with no wrapping
	// transaction; partially applied writes are reported, never rolled back.
	WriteTxNone WriteTxOwnership = "none"
)

// Contract describes aggregate-level policy expectations.
type Contract struct {
	Name             string
	WriteTxOwnership WriteTxOwnership
	Notes            string
}

// Aggregate is the common marker for all aggregate contracts.
type Aggregate interface {
	Contract() Contract
}

// RollsBackOnFailure reports whether a failed write leaves no partial state behind.
func (c Contract) RollsBackOnFailure() bool {
	return c.WriteTxOwnership == WriteTxOwnedByAggregate
}
