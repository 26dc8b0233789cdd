package core

import "errors"

// Engine error taxonomy. All of these mark bad input rather than transient
// faults: the engine performs no I/O and never retries. Callers should treat
// them as 4xx-equivalent.
var (
	// ErrInvalidInterval marks a query whose lower bound is after its upper bound.
	ErrInvalidInterval = errors.New("invalid interval: from is after to")

	// ErrUnboundedQuery marks an expansion with neither a series end nor a
	// query upper bound, under a policy that rejects such queries.
	ErrUnboundedQuery = errors.New("unbounded recurring query: no series end and no query upper bound")

	// ErrRuleInvariant marks a recurrence rule that violates its own
	// invariants (for example a series start after its series end). The
	// aggregator records it per rule instead of aborting the whole query.
	ErrRuleInvariant = errors.New("recurrence rule invariant violated")

	// ErrClockNotProvided marks a truncating query that was given no "today".
	// The engine never reads the wall clock itself.
	ErrClockNotProvided = errors.New("truncation policy requires an injected today")

	// ErrInvalidDate marks a value that does not name a real calendar day.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidAmount marks a monetary amount that failed parsing or
	// validation.
	ErrInvalidAmount = errors.New("invalid amount")

	ErrInvalidKind    = errors.New("invalid entry kind")
	ErrEmptyCategory  = errors.New("empty category")
	ErrDivisionByZero = errors.New("division by zero")

	// ErrNotFound marks a rule or entry ID that no store record matches.
	ErrNotFound = errors.New("not found")
)
