package schedule

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/duyet/finance-hub-sub000/pkg/constants"
	"github.com/duyet/finance-hub-sub000/pkg/datetime"
	"github.com/duyet/finance-hub-sub000/pkg/rates"
	"go.uber.org/zap"
)

// sequentialIDs returns a deterministic IDGenerator for tests.
func sequentialIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("inst-%d", n)
	}
}

func newTestEngine() *Engine {
	return NewEngine(zap.NewNop(), sequentialIDs())
}

func testDate(s string) time.Time {
	return datetime.MustParseTime(constants.DateTimeLayout, s)
}

func testLoan() LoanConfig {
	return LoanConfig{
		LoanID:     "loan-1",
		Principal:  12_000_000,
		StartDate:  testDate("2025-01-10"),
		TermMonths: 12,
		Method:     MethodReducingBalance,
	}
}

func singleEvent(effective string, rate float64) []rates.Event {
	return []rates.Event{
		{EffectiveDate: testDate(effective), AnnualRatePercent: rate, Kind: rates.KindFixed},
	}
}

func TestGenerateReducingBalance(t *testing.T) {
	engine := newTestEngine()

	installments, err := engine.Generate(testLoan(), singleEvent("2025-01-10", 12.0))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(installments) != 12 {
		t.Fatalf("Generate() produced %d installments, expected 12", len(installments))
	}

	first := installments[0]
	if math.Abs(first.Interest-120_000.00) > 0.01 {
		t.Errorf("First installment interest = %.2f, expected 120000.00", first.Interest)
	}
	if first.Principal < 946_180 || first.Principal > 946_190 {
		t.Errorf("First installment principal = %.2f, expected around 946185", first.Principal)
	}
	if first.OpeningBalance != 12_000_000.00 {
		t.Errorf("First installment opening = %.2f, expected 12000000.00", first.OpeningBalance)
	}

	last := installments[11]
	if last.Principal != last.OpeningBalance {
		t.Errorf("Final installment principal = %.2f, expected to equal its opening balance %.2f",
			last.Principal, last.OpeningBalance)
	}
	if last.ClosingBalance != 0.00 {
		t.Errorf("Final installment closing = %.2f, expected exactly 0.00", last.ClosingBalance)
	}

	for i, installment := range installments {
		if installment.Sequence != i+1 {
			t.Errorf("Installment %d has sequence %d, expected %d", i, installment.Sequence, i+1)
		}
		if installment.Status != StatusEstimated {
			t.Errorf("Installment %d status = %s, expected %s", i+1, installment.Status, StatusEstimated)
		}
		expectedDue := datetime.DueDate(testLoan().StartDate, i, 0)
		if !installment.DueDate.Equal(expectedDue) {
			t.Errorf("Installment %d due date = %s, expected %s",
				i+1, installment.DueDate.Format(constants.DateTimeLayout), expectedDue.Format(constants.DateTimeLayout))
		}
	}

	report := Validate(installments)
	if !report.Valid {
		t.Errorf("Validate() reported errors on a generated schedule: %v", report.Errors)
	}
}

func TestGenerateContiguity(t *testing.T) {
	engine := newTestEngine()

	installments, err := engine.Generate(testLoan(), singleEvent("2025-01-10", 12.0))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	for i := 1; i < len(installments); i++ {
		// Copied, not recomputed: exact equality, no tolerance.
		if installments[i].OpeningBalance != installments[i-1].ClosingBalance {
			t.Errorf("Installment %d opening %.2f != installment %d closing %.2f",
				i+1, installments[i].OpeningBalance, i, installments[i-1].ClosingBalance)
		}
	}
}

func TestGenerateFlat(t *testing.T) {
	engine := newTestEngine()
	loan := LoanConfig{
		LoanID:     "flat-1",
		Principal:  1_200_000,
		StartDate:  testDate("2025-01-10"),
		TermMonths: 12,
		Method:     MethodFlat,
	}

	installments, err := engine.Generate(loan, singleEvent("2025-01-10", 10.0))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(installments) != 12 {
		t.Fatalf("Generate() produced %d installments, expected 12", len(installments))
	}

	for i, installment := range installments[:11] {
		if math.Abs(installment.Total-110_000.00) > 0.01 {
			t.Errorf("Installment %d total = %.2f, expected 110000.00", i+1, installment.Total)
		}
		if math.Abs(installment.Interest-10_000.00) > 0.01 {
			t.Errorf("Installment %d interest = %.2f, expected 10000.00", i+1, installment.Interest)
		}
	}

	last := installments[11]
	if last.Principal != last.OpeningBalance {
		t.Errorf("Final installment principal = %.2f, expected to absorb the opening balance %.2f",
			last.Principal, last.OpeningBalance)
	}
	if last.ClosingBalance != 0.00 {
		t.Errorf("Final installment closing = %.2f, expected 0.00", last.ClosingBalance)
	}

	report := Validate(installments)
	if !report.Valid {
		t.Errorf("Validate() reported errors on a flat schedule: %v", report.Errors)
	}
}

func TestGenerateInvalidParameters(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name   string
		loan   LoanConfig
		events []rates.Event
	}{
		{
			name:   "Zero principal",
			loan:   LoanConfig{Principal: 0, StartDate: testDate("2025-01-10"), TermMonths: 12},
			events: singleEvent("2025-01-10", 5.0),
		},
		{
			name:   "Negative principal",
			loan:   LoanConfig{Principal: -100, StartDate: testDate("2025-01-10"), TermMonths: 12},
			events: singleEvent("2025-01-10", 5.0),
		},
		{
			name:   "Zero term",
			loan:   LoanConfig{Principal: 10_000, StartDate: testDate("2025-01-10"), TermMonths: 0},
			events: singleEvent("2025-01-10", 5.0),
		},
		{
			name:   "No rate events",
			loan:   LoanConfig{Principal: 10_000, StartDate: testDate("2025-01-10"), TermMonths: 12},
			events: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Generate(tt.loan, tt.events)

			if !errors.Is(err, ErrInvalidParameters) {
				t.Errorf("Generate() error = %v, expected ErrInvalidParameters", err)
			}
		})
	}
}

func TestGenerateNoApplicableRate(t *testing.T) {
	engine := newTestEngine()

	// Rate history starts one month after the loan does.
	_, err := engine.Generate(testLoan(), singleEvent("2025-02-10", 12.0))

	if !errors.Is(err, ErrNoApplicableRate) {
		t.Errorf("Generate() error = %v, expected ErrNoApplicableRate", err)
	}
}

func TestGenerateRateChangeInHistory(t *testing.T) {
	engine := newTestEngine()
	events := []rates.Event{
		{EffectiveDate: testDate("2025-01-10"), AnnualRatePercent: 12.0, Kind: rates.KindFixed},
		{EffectiveDate: testDate("2025-04-10"), AnnualRatePercent: 6.0, Kind: rates.KindFloating},
	}

	installments, err := engine.Generate(testLoan(), events)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// Period 3 is still under the initial rate, period 4 under the new one;
	// the EMI stays fixed from the initial event either way.
	third := installments[2]
	if math.Abs(third.Interest-third.OpeningBalance*0.01) > 0.01 {
		t.Errorf("Installment 3 interest = %.2f, expected %.2f at 12%%",
			third.Interest, third.OpeningBalance*0.01)
	}
	fourth := installments[3]
	if math.Abs(fourth.Interest-fourth.OpeningBalance*0.005) > 0.01 {
		t.Errorf("Installment 4 interest = %.2f, expected %.2f at 6%%",
			fourth.Interest, fourth.OpeningBalance*0.005)
	}

	last := installments[11]
	if last.ClosingBalance != 0.00 {
		t.Errorf("Final installment closing = %.2f, expected 0.00", last.ClosingBalance)
	}

	report := Validate(installments)
	if !report.Valid {
		t.Errorf("Validate() reported errors: %v", report.Errors)
	}
}

func TestGenerateDueDayClamping(t *testing.T) {
	engine := newTestEngine()
	loan := LoanConfig{
		LoanID:     "eom-1",
		Principal:  10_000,
		StartDate:  testDate("2025-01-31"),
		TermMonths: 4,
		Method:     MethodReducingBalance,
	}

	installments, err := engine.Generate(loan, singleEvent("2025-01-31", 6.0))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	expectedDates := []string{"2025-01-31", "2025-02-28", "2025-03-31", "2025-04-30"}
	for i, expected := range expectedDates {
		if got := installments[i].DueDate.Format(constants.DateTimeLayout); got != expected {
			t.Errorf("Installment %d due date = %s, expected %s", i+1, got, expected)
		}
	}
}

// markPaid stamps a paid status and payment record onto an installment copy.
func markPaid(installment Installment) Installment {
	paidDate := installment.DueDate
	installment.Status = StatusPaid
	installment.PaidDate = &paidDate
	installment.PaidAmount = installment.Total
	return installment
}

func TestSpliceMidLoan(t *testing.T) {
	engine := newTestEngine()

	original, err := engine.Generate(testLoan(), singleEvent("2025-01-10", 12.0))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	existing := make([]Installment, len(original))
	copy(existing, original)
	for i := 0; i < 6; i++ {
		existing[i] = markPaid(existing[i])
	}

	effective := existing[6].DueDate // period 7
	outstanding := existing[6].OpeningBalance
	spliced := engine.Splice("loan-1", effective, 9.0, outstanding, existing, 6)

	if len(spliced) != 12 {
		t.Fatalf("Splice() produced %d installments, expected 12", len(spliced))
	}

	// History is preserved byte for byte.
	for i := 0; i < 6; i++ {
		if !reflect.DeepEqual(spliced[i], existing[i]) {
			t.Errorf("Installment %d was modified by the splice:\n got %+v\nwant %+v",
				i+1, spliced[i], existing[i])
		}
	}

	// The open portion is recomputed under the new rate.
	seventh := spliced[6]
	if seventh.Sequence != 7 {
		t.Errorf("First regenerated installment sequence = %d, expected 7", seventh.Sequence)
	}
	if seventh.OpeningBalance != outstanding {
		t.Errorf("First regenerated opening = %.2f, expected %.2f", seventh.OpeningBalance, outstanding)
	}
	expectedInterest := outstanding * 9.0 / (100.0 * 12.0)
	if math.Abs(seventh.Interest-expectedInterest) > 0.01 {
		t.Errorf("First regenerated interest = %.2f, expected %.2f at 9%%", seventh.Interest, expectedInterest)
	}

	for i := 6; i < 12; i++ {
		if spliced[i].Sequence != i+1 {
			t.Errorf("Regenerated installment at index %d has sequence %d, expected %d",
				i, spliced[i].Sequence, i+1)
		}
	}

	last := spliced[11]
	if last.ClosingBalance != 0.00 {
		t.Errorf("Final spliced closing = %.2f, expected 0.00", last.ClosingBalance)
	}

	report := Validate(spliced)
	if !report.Valid {
		t.Errorf("Validate() reported errors on a spliced schedule: %v", report.Errors)
	}
}

func TestSpliceCarriesOverPaymentIdentity(t *testing.T) {
	engine := newTestEngine()

	original, err := engine.Generate(testLoan(), singleEvent("2025-01-10", 12.0))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	existing := make([]Installment, len(original))
	copy(existing, original)
	for i := 0; i < 6; i++ {
		existing[i] = markPaid(existing[i])
	}
	// Period 8 was already settled ahead of schedule for a different reason;
	// the splice reattaches the new split to its identity.
	existing[7] = markPaid(existing[7])

	effective := existing[6].DueDate
	outstanding := existing[6].OpeningBalance
	spliced := engine.Splice("loan-1", effective, 9.0, outstanding, existing, 6)

	eighth := spliced[7]
	if eighth.ID != existing[7].ID {
		t.Errorf("Carried-over installment ID = %s, expected %s", eighth.ID, existing[7].ID)
	}
	if eighth.Status != StatusPaid {
		t.Errorf("Carried-over installment status = %s, expected %s", eighth.Status, StatusPaid)
	}
	if eighth.PaidDate == nil || !eighth.PaidDate.Equal(*existing[7].PaidDate) {
		t.Errorf("Carried-over installment paid date = %v, expected %v", eighth.PaidDate, existing[7].PaidDate)
	}
	if eighth.PaidAmount != existing[7].PaidAmount {
		t.Errorf("Carried-over installment paid amount = %.2f, expected %.2f",
			eighth.PaidAmount, existing[7].PaidAmount)
	}
	if eighth.Principal == existing[7].Principal {
		t.Errorf("Carried-over installment principal was not recomputed under the new rate")
	}
}

func TestSplicePreservesSameMonthPaid(t *testing.T) {
	engine := newTestEngine()

	original, err := engine.Generate(testLoan(), singleEvent("2025-01-10", 12.0))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	existing := make([]Installment, len(original))
	copy(existing, original)
	for i := 0; i < 7; i++ {
		existing[i] = markPaid(existing[i])
	}

	// Rate change lands later in the same month period 7 was paid.
	effective := testDate("2025-07-20")
	outstanding := existing[7].OpeningBalance
	spliced := engine.Splice("loan-1", effective, 9.0, outstanding, existing, 5)

	if len(spliced) != 12 {
		t.Fatalf("Splice() produced %d installments, expected 12", len(spliced))
	}
	if !reflect.DeepEqual(spliced[6], existing[6]) {
		t.Errorf("Paid same-month installment was not preserved verbatim")
	}
	if spliced[7].Sequence != 8 {
		t.Errorf("First regenerated sequence = %d, expected 8", spliced[7].Sequence)
	}
}

func TestSpliceDiscardsSameMonthUnpaid(t *testing.T) {
	engine := newTestEngine()

	original, err := engine.Generate(testLoan(), singleEvent("2025-01-10", 12.0))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	existing := make([]Installment, len(original))
	copy(existing, original)
	for i := 0; i < 6; i++ {
		existing[i] = markPaid(existing[i])
	}

	// Period 7 is due this month but not yet paid: it is rebuilt, due on the
	// effective date's day.
	effective := testDate("2025-07-20")
	outstanding := existing[6].OpeningBalance
	spliced := engine.Splice("loan-1", effective, 9.0, outstanding, existing, 6)

	if len(spliced) != 12 {
		t.Fatalf("Splice() produced %d installments, expected 12", len(spliced))
	}
	seventh := spliced[6]
	if seventh.Sequence != 7 {
		t.Errorf("Rebuilt installment sequence = %d, expected 7", seventh.Sequence)
	}
	if got := seventh.DueDate.Format(constants.DateTimeLayout); got != "2025-07-20" {
		t.Errorf("Rebuilt installment due date = %s, expected 2025-07-20", got)
	}
	if seventh.Status != StatusEstimated {
		t.Errorf("Rebuilt installment status = %s, expected %s", seventh.Status, StatusEstimated)
	}
}

func TestSpliceDegenerateInputs(t *testing.T) {
	engine := newTestEngine()

	original, err := engine.Generate(testLoan(), singleEvent("2025-01-10", 12.0))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	tests := []struct {
		name          string
		outstanding   float64
		remainingTerm int
	}{
		{
			name:          "Zero outstanding balance",
			outstanding:   0,
			remainingTerm: 6,
		},
		{
			name:          "Negative outstanding balance",
			outstanding:   -100,
			remainingTerm: 6,
		},
		{
			name:          "Zero remaining term",
			outstanding:   1_000_000,
			remainingTerm: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effective := original[6].DueDate
			spliced := engine.Splice("loan-1", effective, 9.0, tt.outstanding, original, tt.remainingTerm)

			// Degenerates to the frozen prefix, not an error.
			if len(spliced) != 6 {
				t.Errorf("Splice() produced %d installments, expected the 6 frozen ones", len(spliced))
			}
			for i, installment := range spliced {
				if !reflect.DeepEqual(installment, original[i]) {
					t.Errorf("Frozen installment %d was modified", i+1)
				}
			}
		})
	}
}

func TestNewEngineDefaults(t *testing.T) {
	engine := NewEngine(nil, nil)

	if engine == nil {
		t.Fatal("NewEngine() returned nil")
	}
	if engine.logger == nil {
		t.Error("NewEngine() logger not defaulted")
	}
	if engine.newID == nil {
		t.Error("NewEngine() id generator not defaulted")
	}
	if id := engine.newID(); id == "" {
		t.Error("Default id generator returned an empty id")
	}
}
