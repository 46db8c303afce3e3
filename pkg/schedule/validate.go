package schedule

import (
	"fmt"

	"github.com/duyet/finance-hub-sub000/pkg/constants"
	"github.com/duyet/finance-hub-sub000/pkg/mathutil"
)

// Report is the outcome of a schedule integrity check.
type Report struct {
	Valid  bool
	Errors []string
}

// Validate checks every installment's internal arithmetic and the terminal
// balance closure: principal + interest must reconcile to the total and
// opening - closing to the principal component, each within one cent, and
// the last installment's closing balance must reach zero. Findings are
// reported as diagnostic strings, never raised as errors; the caller
// decides whether to reject the schedule. Validate never mutates its input.
func Validate(schedule []Installment) Report {
	var violations []string
	for _, installment := range schedule {
		if !mathutil.WithinTolerance(installment.Principal+installment.Interest, installment.Total, constants.CurrencyTolerance) {
			violations = append(violations, fmt.Sprintf(
				"installment %d: principal %.2f + interest %.2f does not reconcile to total %.2f",
				installment.Sequence, installment.Principal, installment.Interest, installment.Total))
		}
		if !mathutil.WithinTolerance(installment.OpeningBalance-installment.ClosingBalance, installment.Principal, constants.CurrencyTolerance) {
			violations = append(violations, fmt.Sprintf(
				"installment %d: opening %.2f - closing %.2f does not reconcile to principal %.2f",
				installment.Sequence, installment.OpeningBalance, installment.ClosingBalance, installment.Principal))
		}
	}
	if len(schedule) > 0 {
		last := schedule[len(schedule)-1]
		if !mathutil.IsZero(last.ClosingBalance) {
			violations = append(violations, fmt.Sprintf(
				"final installment %d: closing balance %.2f does not reach zero",
				last.Sequence, last.ClosingBalance))
		}
	}
	return Report{Valid: len(violations) == 0, Errors: violations}
}
