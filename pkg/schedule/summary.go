package schedule

import (
	"time"

	"github.com/duyet/finance-hub-sub000/pkg/mathutil"
)

// LoanSummary is a derived, ephemeral aggregate over one loan's schedule.
// Projected figures cover the full lifetime of the loan, including what has
// already been paid.
type LoanSummary struct {
	OriginalPrincipal     float64
	PrincipalPaid         float64
	InterestPaid          float64
	TotalPaid             float64
	RemainingPrincipal    float64
	RemainingInstallments int
	NextDueDate           *time.Time
	NextDueAmount         float64
	ProjectedInterest     float64
	ProjectedTotal        float64
}

// Summarize reduces a schedule into paid and projected totals. Remaining
// principal is the opening balance of the first non-paid installment, zero
// when the loan is fully paid. The next installment is the first one in
// schedule order with status DUE or ESTIMATED; an OVERDUE installment is
// passed over in favor of the next normal payment.
func Summarize(schedule []Installment, originalPrincipal float64) LoanSummary {
	summary := LoanSummary{OriginalPrincipal: originalPrincipal}
	if len(schedule) == 0 {
		summary.RemainingPrincipal = originalPrincipal
		return summary
	}

	foundRemaining := false
	for _, installment := range schedule {
		summary.ProjectedInterest += installment.Interest
		summary.ProjectedTotal += installment.Total

		if installment.Status == StatusPaid {
			summary.PrincipalPaid += installment.Principal
			summary.InterestPaid += installment.Interest
			summary.TotalPaid += installment.Total
			continue
		}

		summary.RemainingInstallments++
		if !foundRemaining {
			summary.RemainingPrincipal = installment.OpeningBalance
			foundRemaining = true
		}
		if summary.NextDueDate == nil &&
			(installment.Status == StatusDue || installment.Status == StatusEstimated) {
			dueDate := installment.DueDate
			summary.NextDueDate = &dueDate
			summary.NextDueAmount = installment.Total
		}
	}

	summary.PrincipalPaid = mathutil.Round(summary.PrincipalPaid)
	summary.InterestPaid = mathutil.Round(summary.InterestPaid)
	summary.TotalPaid = mathutil.Round(summary.TotalPaid)
	summary.ProjectedInterest = mathutil.Round(summary.ProjectedInterest)
	summary.ProjectedTotal = mathutil.Round(summary.ProjectedTotal)
	return summary
}
