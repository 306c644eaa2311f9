// Package controls validates the dashboard inputs shared by the HTTP and gRPC
// surfaces: period, top-N, anomaly thresholds and the listing filter.
package controls

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/vysogota0399/fintech_dashboard/internal/models"
	"github.com/vysogota0399/fintech_dashboard/internal/repositories"
)

var ErrInvalidControl = errors.New("invalid control value")

var PeriodOptions = []int{7, 15, 30, 60, 90}

const (
	DefaultPeriod = 30

	MinTop     = 5
	MaxTop     = 20
	DefaultTop = 10

	MinHighValue     = 1000
	MaxHighValue     = 50000
	DefaultHighValue = 10000

	MinFrequency     = 3
	MaxFrequency     = 20
	DefaultFrequency = 5

	DateLayout = time.DateOnly
)

// AllOption is what the listing form sends for "no filter".
const AllOption = "all"

type Values struct {
	Days      int                      `json:"days"`
	Top       int                      `json:"top"`
	MinAmount float64                  `json:"min_amount"`
	MinCount  int                      `json:"min_count"`
	Filter    models.TransactionFilter `json:"filter"`
}

func Defaults() Values {
	return Values{
		Days:      DefaultPeriod,
		Top:       DefaultTop,
		MinAmount: DefaultHighValue,
		MinCount:  DefaultFrequency,
		Filter:    models.TransactionFilter{Limit: repositories.DefaultListingLimit},
	}
}

func invalid(name, value, rule string) error {
	return fmt.Errorf("%w: %s=%q, %s", ErrInvalidControl, name, value, rule)
}

// ParsePeriod returns DefaultPeriod for an empty value.
func ParsePeriod(s string) (int, error) {
	if s == "" {
		return DefaultPeriod, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil || !slices.Contains(PeriodOptions, v) {
		return DefaultPeriod, invalid("days", s, "expected one of 7, 15, 30, 60, 90")
	}

	return v, nil
}

func ParseTop(s string) (int, error) {
	return parseIntRange("top", s, MinTop, MaxTop, DefaultTop)
}

func ParseFrequency(s string) (int, error) {
	return parseIntRange("min_count", s, MinFrequency, MaxFrequency, DefaultFrequency)
}

func ParseHighValue(s string) (float64, error) {
	if s == "" {
		return DefaultHighValue, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !(v >= MinHighValue && v <= MaxHighValue) {
		return DefaultHighValue, invalid("min_amount", s, fmt.Sprintf("expected %d..%d", MinHighValue, MaxHighValue))
	}

	return v, nil
}

func parseIntRange(name, s string, lo, hi, def int) (int, error) {
	if s == "" {
		return def, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil || v < lo || v > hi {
		return def, invalid(name, s, fmt.Sprintf("expected %d..%d", lo, hi))
	}

	return v, nil
}

// ParseFilter reads start_date, end_date, payment_method, status and limit.
// Invalid fields are left unset and reported in the joined error.
func ParseFilter(get func(key string) string) (models.TransactionFilter, error) {
	f := models.TransactionFilter{Limit: repositories.DefaultListingLimit}
	var errs []error

	parseDate := func(name string) *time.Time {
		s := strings.TrimSpace(get(name))
		if s == "" {
			return nil
		}

		d, err := time.Parse(DateLayout, s)
		if err != nil {
			errs = append(errs, invalid(name, s, "expected YYYY-MM-DD"))
			return nil
		}

		return &d
	}

	f.StartDate = parseDate("start_date")
	f.EndDate = parseDate("end_date")
	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		errs = append(errs, invalid("end_date", f.EndDate.Format(DateLayout), "must not be before start_date"))
		f.StartDate, f.EndDate = nil, nil
	}

	if s := strings.TrimSpace(get("payment_method")); s != "" && s != AllOption {
		if pm := models.PaymentMethod(s); pm.Valid() {
			f.PaymentMethod = pm
		} else {
			errs = append(errs, invalid("payment_method", s, "unknown payment method"))
		}
	}

	if s := strings.TrimSpace(get("status")); s != "" && s != AllOption {
		if st := models.TransactionStatus(s); st.Valid() {
			f.Status = st
		} else {
			errs = append(errs, invalid("status", s, "unknown status"))
		}
	}

	limit, err := parseIntRange("limit", strings.TrimSpace(get("limit")), 1, repositories.MaxListingLimit, repositories.DefaultListingLimit)
	if err != nil {
		errs = append(errs, err)
	}
	f.Limit = limit

	return f, errors.Join(errs...)
}

// Parse reads every control. Invalid values fall back to their defaults; the
// returned error joins one ErrInvalidControl per rejected value.
func Parse(get func(key string) string) (Values, error) {
	var (
		v    Values
		err  error
		errs []error
	)

	if v.Days, err = ParsePeriod(strings.TrimSpace(get("days"))); err != nil {
		errs = append(errs, err)
	}

	if v.Top, err = ParseTop(strings.TrimSpace(get("top"))); err != nil {
		errs = append(errs, err)
	}

	if v.MinAmount, err = ParseHighValue(strings.TrimSpace(get("min_amount"))); err != nil {
		errs = append(errs, err)
	}

	if v.MinCount, err = ParseFrequency(strings.TrimSpace(get("min_count"))); err != nil {
		errs = append(errs, err)
	}

	if v.Filter, err = ParseFilter(get); err != nil {
		errs = append(errs, err)
	}

	return v, errors.Join(errs...)
}

// Messages flattens a Parse error into one line per rejected value.
func Messages(err error) []string {
	if err == nil {
		return nil
	}

	var res []string
	var walk func(error)
	walk = func(e error) {
		if j, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range j.Unwrap() {
				walk(inner)
			}
			return
		}
		res = append(res, e.Error())
	}
	walk(err)

	return res
}
