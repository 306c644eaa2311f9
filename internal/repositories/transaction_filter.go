package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vysogota0399/fintech_dashboard/internal/models"
)

var ErrInvalidFilter = errors.New("invalid transaction filter")

const (
	DefaultListingLimit = 100
	MaxListingLimit     = 1000
)

type predicate struct {
	expr  string
	value any
}

// transactionPredicates turns a listing filter into bound SQL predicates. Only
// expressions from this file reach the query text; values are always bound.
type transactionPredicates struct {
	preds []predicate
	limit int
}

func buildTransactionPredicates(f models.TransactionFilter) (*transactionPredicates, error) {
	p := &transactionPredicates{limit: f.Limit}

	switch {
	case f.Limit == 0:
		p.limit = DefaultListingLimit
	case f.Limit < 0 || f.Limit > MaxListingLimit:
		return nil, fmt.Errorf("%w: limit %d out of 1..%d", ErrInvalidFilter, f.Limit, MaxListingLimit)
	}

	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		return nil, fmt.Errorf("%w: start date after end date", ErrInvalidFilter)
	}

	if f.StartDate != nil {
		p.preds = append(p.preds, predicate{expr: "t.transaction_date::date >= %s::date", value: *f.StartDate})
	}

	if f.EndDate != nil {
		p.preds = append(p.preds, predicate{expr: "t.transaction_date::date <= %s::date", value: *f.EndDate})
	}

	if f.PaymentMethod != "" {
		if !f.PaymentMethod.Valid() {
			return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalidFilter, f.PaymentMethod)
		}

		p.preds = append(p.preds, predicate{expr: "t.payment_method = %s", value: string(f.PaymentMethod)})
	}

	if f.Status != "" {
		if !f.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidFilter, f.Status)
		}

		p.preds = append(p.preds, predicate{expr: "t.status = %s", value: string(f.Status)})
	}

	return p, nil
}

// where renders "WHERE a AND b" with positional placeholders and returns the
// bound arguments in the same order. The listing limit is the last argument.
func (p *transactionPredicates) where() (string, []any) {
	args := make([]any, 0, len(p.preds)+1)
	conds := make([]string, 0, len(p.preds))

	for _, pred := range p.preds {
		args = append(args, pred.value)
		conds = append(conds, fmt.Sprintf(pred.expr, fmt.Sprintf("$%d", len(args))))
	}

	args = append(args, p.limit)

	if len(conds) == 0 {
		return "", args
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}

func (p *transactionPredicates) limitPlaceholder() string {
	return fmt.Sprintf("$%d", len(p.preds)+1)
}
