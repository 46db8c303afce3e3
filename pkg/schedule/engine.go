package schedule

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/duyet/finance-hub-sub000/pkg/constants"
	"github.com/duyet/finance-hub-sub000/pkg/datetime"
	"github.com/duyet/finance-hub-sub000/pkg/mathutil"
	"github.com/duyet/finance-hub-sub000/pkg/rates"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrInvalidParameters indicates a non-positive principal or term, or an
	// empty rate history.
	ErrInvalidParameters = errors.New("invalid loan parameters")

	// ErrNoApplicableRate indicates the rate history does not cover one of
	// the schedule's due dates.
	ErrNoApplicableRate = errors.New("no applicable rate")
)

// IDGenerator produces identifiers for newly created installments.
type IDGenerator func() string

// Engine generates and splices installment schedules.
type Engine struct {
	logger *zap.Logger
	newID  IDGenerator
}

// NewEngine creates an Engine. A nil logger falls back to a no-op logger; a
// nil idGen falls back to random UUIDs. Tests inject a counter for
// deterministic identifiers.
func NewEngine(logger *zap.Logger, idGen IDGenerator) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if idGen == nil {
		idGen = uuid.NewString
	}
	return &Engine{logger: logger, newID: idGen}
}

// Generate produces the full installment schedule for a loan from its rate
// history. Under the reducing-balance method the earliest event's rate
// fixes the EMI for the whole term; the interest of each period still
// follows whichever rate is in force at its due date. The final period's
// principal component absorbs all rounding residue so the balance closes at
// exactly zero.
func (e *Engine) Generate(loan LoanConfig, events []rates.Event) ([]Installment, error) {
	if loan.Principal <= 0 {
		return nil, fmt.Errorf("%w: principal must be positive, got %.2f", ErrInvalidParameters, loan.Principal)
	}
	if loan.TermMonths <= 0 {
		return nil, fmt.Errorf("%w: term must be positive, got %d", ErrInvalidParameters, loan.TermMonths)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: at least one rate event is required", ErrInvalidParameters)
	}

	sorted := rates.Sorted(events)
	initialEMI := EMI(loan.Principal, sorted[0].AnnualRatePercent, loan.TermMonths)

	flatTotalInterest := FlatInterestTotal(loan.Principal, sorted[0].AnnualRatePercent, loan.TermMonths)
	flatPayment := (loan.Principal + flatTotalInterest) / float64(loan.TermMonths)
	flatInterest := flatTotalInterest / float64(loan.TermMonths)

	e.logger.Debug("generating schedule",
		zap.String("op", "schedule.Generate"),
		zap.String("loan", loan.LoanID),
		zap.String("method", string(loan.Method)),
		zap.Int("term", loan.TermMonths),
		zap.Float64("emi", initialEMI),
	)

	installments := make([]Installment, 0, loan.TermMonths)
	opening := loan.Principal
	for period := 1; period <= loan.TermMonths; period++ {
		dueDate := datetime.DueDate(loan.StartDate, period-1, loan.DueDay)
		event := rates.ApplicableRate(sorted, dueDate)
		if event == nil {
			return nil, fmt.Errorf("%w: rate history does not cover %s",
				ErrNoApplicableRate, dueDate.Format(constants.DateTimeLayout))
		}

		var interest, principal float64
		switch loan.Method {
		case MethodFlat:
			interest = flatInterest
			principal = flatPayment - flatInterest
		default:
			interest = PeriodInterest(opening, event.AnnualRatePercent)
			principal = initialEMI - interest
			if principal > opening {
				principal = opening
			}
		}
		if period == loan.TermMonths {
			principal = opening
		}

		installment := e.finalize(loan.LoanID, period, dueDate, opening, principal, interest)
		installments = append(installments, installment)
		opening = installment.ClosingBalance
	}
	return installments, nil
}

// Splice applies a new rate from effectiveDate onward without disturbing
// the historical record. Installments due before the effective month, or
// due within it and already paid, are preserved verbatim; the remaining
// term is regenerated from outstanding with a fresh EMI under the
// reducing-balance method, sequence numbers continuing from the frozen
// prefix. Identity and payment fields are carried over from any original
// installment holding the same sequence number. Flat-rate loans are not
// supported here; callers apply rate changes to reducing-balance loans only.
//
// A non-positive outstanding balance or remaining term is not an error: the
// loan is fully scheduled to be paid off before the change takes effect,
// and only the frozen prefix is returned.
func (e *Engine) Splice(loanID string, effectiveDate time.Time, newRatePercent, outstanding float64,
	existing []Installment, remainingTerm int) []Installment {

	var frozen []Installment
	for _, installment := range existing {
		if datetime.BeforeMonth(installment.DueDate, effectiveDate) ||
			(datetime.SameMonth(installment.DueDate, effectiveDate) && installment.Status == StatusPaid) {
			frozen = append(frozen, installment)
		}
	}
	sort.Slice(frozen, func(i, j int) bool { return frozen[i].Sequence < frozen[j].Sequence })

	if outstanding <= 0 || remainingTerm <= 0 {
		e.logger.Debug("rate change takes effect after final payment, keeping frozen prefix only",
			zap.String("op", "schedule.Splice"),
			zap.String("loan", loanID),
			zap.Float64("outstanding", outstanding),
			zap.Int("remaining_term", remainingTerm),
		)
		return frozen
	}

	lastFrozenSequence := 0
	for _, installment := range frozen {
		if installment.Sequence > lastFrozenSequence {
			lastFrozenSequence = installment.Sequence
		}
	}

	original := make(map[int]Installment, len(existing))
	for _, installment := range existing {
		original[installment.Sequence] = installment
	}

	newEMI := EMI(outstanding, newRatePercent, remainingTerm)
	e.logger.Debug("splicing schedule",
		zap.String("op", "schedule.Splice"),
		zap.String("loan", loanID),
		zap.Float64("rate", newRatePercent),
		zap.Float64("emi", newEMI),
		zap.Int("remaining_term", remainingTerm),
	)

	merged := make([]Installment, 0, len(frozen)+remainingTerm)
	merged = append(merged, frozen...)

	opening := outstanding
	for period := 1; period <= remainingTerm; period++ {
		sequence := lastFrozenSequence + period
		dueDate := datetime.DueDate(effectiveDate, period-1, effectiveDate.Day())
		interest := PeriodInterest(opening, newRatePercent)
		principal := newEMI - interest
		if principal > opening {
			principal = opening
		}
		if period == remainingTerm {
			principal = opening
		}

		installment := e.finalize(loanID, sequence, dueDate, opening, principal, interest)
		if prior, ok := original[sequence]; ok {
			// Reattach the recalculated split to the installment's existing
			// identity and payment record.
			installment.ID = prior.ID
			installment.Status = prior.Status
			installment.PaidDate = prior.PaidDate
			installment.PaidAmount = prior.PaidAmount
		}
		merged = append(merged, installment)
		opening = installment.ClosingBalance
	}
	return merged
}

// finalize rounds the money fields to the cent and emits the installment.
// Principal and interest are rounded first and the total and closing
// balance derived from the rounded values, so component sums reconcile
// exactly rather than merely within tolerance.
func (e *Engine) finalize(loanID string, sequence int, dueDate time.Time, opening, principal, interest float64) Installment {
	roundedPrincipal := mathutil.Round(principal)
	roundedInterest := mathutil.Round(interest)
	closing := mathutil.Round(opening - roundedPrincipal)
	if closing < 0 {
		closing = 0
	}
	return Installment{
		ID:             e.newID(),
		LoanID:         loanID,
		Sequence:       sequence,
		DueDate:        dueDate,
		OpeningBalance: mathutil.Round(opening),
		Principal:      roundedPrincipal,
		Interest:       roundedInterest,
		Total:          mathutil.Round(roundedPrincipal + roundedInterest),
		ClosingBalance: closing,
		Status:         StatusEstimated,
	}
}
