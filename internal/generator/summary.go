package generator

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vysogota0399/fintech_dashboard/internal/models"
)

var rule = strings.Repeat("=", 50)

// Print writes the operator report of a finished run.
func (s *Summary) Print(w io.Writer) error {
	p := message.NewPrinter(language.English)
	b := &strings.Builder{}

	fmt.Fprintln(b, rule)
	fmt.Fprintln(b, "GENERATED DATA STATISTICS")
	fmt.Fprintln(b, rule)

	stats := s.Stats
	if stats == nil {
		stats = &models.GenerationStats{}
	}

	p.Fprintf(b, "\nCustomers: %d (requested %d)\n", stats.Customers, s.RequestedCustomers)
	p.Fprintf(b, "Merchants: %d (requested %d)\n", stats.Merchants, s.RequestedMerchants)
	p.Fprintf(b, "Transactions: %d (requested %d + %d anomalies)\n", stats.Transactions, s.RequestedTransactions, s.AnomaliesInjected)
	p.Fprintf(b, "Approved volume: R$ %.2f\n", stats.ApprovedVolume.InexactFloat64())

	fmt.Fprintln(b, "\nTransactions by payment method:")
	writeShares(p, b, stats.ByPaymentMethod)

	fmt.Fprintln(b, "\nTransactions by status:")
	writeShares(p, b, stats.ByStatus)

	if s.SkippedCustomers > 0 || s.SkippedMerchants > 0 {
		fmt.Fprintf(b, "\nUnresolved duplicates: %d customers, %d merchants\n", s.SkippedCustomers, s.SkippedMerchants)
	}

	fmt.Fprintln(b, "\n"+rule)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeShares(p *message.Printer, b *strings.Builder, shares []models.Share) {
	if len(shares) == 0 {
		fmt.Fprintln(b, "  (none)")
		return
	}

	for _, sh := range shares {
		p.Fprintf(b, "  - %s: %d (%.1f%%)\n", sh.Name, sh.Count, sh.Percentage)
	}
}
