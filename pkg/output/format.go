// Package output provides utilities for formatting and displaying loan
// schedules and summaries.
package output

import (
	"fmt"

	"github.com/duyet/finance-hub-sub000/pkg/constants"
	"github.com/duyet/finance-hub-sub000/pkg/schedule"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable table
// of the schedule, followed by the loan summary.
func PrettyFormat(name string, installments []schedule.Installment, summary schedule.LoanSummary) {
	p := message.NewPrinter(language.English)
	fmt.Printf("--- Schedule for loan %s ---\n", name)
	fmt.Printf("  # | Due date   | Opening         | Principal       | Interest        | Total           | Closing         | Status\n")
	fmt.Printf("___ | ________   | _______         | _________       | ________        | _____           | _______         | ______\n")
	for _, installment := range installments {
		_, _ = p.Printf("%3d | %s | %15.2f | %15.2f | %15.2f | %15.2f | %15.2f | %s\n",
			installment.Sequence,
			installment.DueDate.Format(constants.DateTimeLayout),
			installment.OpeningBalance,
			installment.Principal,
			installment.Interest,
			installment.Total,
			installment.ClosingBalance,
			installment.Status,
		)
	}
	_, _ = p.Printf("Paid to date: %.2f (principal %.2f, interest %.2f)\n",
		summary.TotalPaid, summary.PrincipalPaid, summary.InterestPaid)
	_, _ = p.Printf("Remaining principal: %.2f across %d installments\n",
		summary.RemainingPrincipal, summary.RemainingInstallments)
	if summary.NextDueDate != nil {
		_, _ = p.Printf("Next payment: %.2f due %s\n",
			summary.NextDueAmount, summary.NextDueDate.Format(constants.DateTimeLayout))
	}
	_, _ = p.Printf("Projected lifetime cost: %.2f (interest %.2f)\n\n",
		summary.ProjectedTotal, summary.ProjectedInterest)
}

// CsvFormat outputs the schedule in comma-separated value format.
func CsvFormat(name string, installments []schedule.Installment) {
	fmt.Printf(`"loan","sequence","due_date","opening","principal","interest","total","closing","status"`)
	fmt.Printf("\n")
	for _, installment := range installments {
		fmt.Printf(`"%s","%d","%s","%.2f","%.2f","%.2f","%.2f","%.2f","%s"`,
			name,
			installment.Sequence,
			installment.DueDate.Format(constants.DateTimeLayout),
			installment.OpeningBalance,
			installment.Principal,
			installment.Interest,
			installment.Total,
			installment.ClosingBalance,
			installment.Status,
		)
		fmt.Printf("\n")
	}
}
