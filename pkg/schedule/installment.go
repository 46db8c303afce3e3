// Package schedule generates, splices, summarizes, and validates loan
// installment schedules. All functions are pure computation over supplied
// values: nothing here reads the clock or touches storage, and callers are
// responsible for serializing schedule replacements per loan.
package schedule

import "time"

// Method selects how interest is computed across the loan term.
type Method string

const (
	// MethodReducingBalance charges each period's interest on the outstanding
	// principal, which shrinks over time.
	MethodReducingBalance Method = "REDUCING_BALANCE"

	// MethodFlat charges interest on the original principal and spreads it
	// evenly across all periods.
	MethodFlat Method = "FLAT"
)

// Status is the lifecycle state of an installment. Transitions beyond
// ESTIMATED are driven by an external payment-recording collaborator; this
// package only reads them.
type Status string

const (
	StatusEstimated Status = "ESTIMATED"
	StatusDue       Status = "DUE"
	StatusPaid      Status = "PAID"
	StatusOverdue   Status = "OVERDUE"
	StatusWaived    Status = "WAIVED"
)

// LoanConfig holds the immutable parameters a schedule is generated from.
type LoanConfig struct {
	LoanID     string
	Principal  float64
	StartDate  time.Time
	TermMonths int
	Method     Method

	// DueDay optionally fixes the day of month for due dates; 0 uses
	// StartDate's day. Days past the end of a month are clamped.
	DueDay int
}

// Installment is one scheduled payment with its principal and interest
// split. Monetary fields are rounded to the cent when the installment is
// finalized; OpeningBalance of installment n equals ClosingBalance of
// installment n-1 exactly within a contiguous schedule.
type Installment struct {
	ID             string
	LoanID         string
	Sequence       int // 1-based, contiguous, unique per loan
	DueDate        time.Time
	OpeningBalance float64
	Principal      float64
	Interest       float64
	Total          float64 // Principal + Interest
	ClosingBalance float64 // OpeningBalance - Principal, floored at 0
	Status         Status

	PaidDate         *time.Time
	PaidAmount       float64
	PrepaymentAmount float64
	LateFee          float64
	Notes            string
}
