package generator

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vysogota0399/fintech_dashboard/internal/models"
)

// Business hours for generated event times, inclusive.
const (
	firstHour = 6
	lastHour  = 23
)

type sampler struct {
	rnd *rand.Rand
	cfg *Config
}

func newSampler(rnd *rand.Rand, cfg *Config) *sampler {
	return &sampler{rnd: rnd, cfg: cfg}
}

func (s *sampler) uniformAmount(lo, hi float64) decimal.Decimal {
	v := lo + s.rnd.Float64()*(hi-lo)
	d := decimal.NewFromFloat(v).Round(2)

	if d.LessThan(decimal.NewFromFloat(lo).Round(2)) {
		return decimal.NewFromFloat(lo).Round(2)
	}

	return d
}

func (s *sampler) amount() decimal.Decimal {
	tiers := s.cfg.AmountTiers
	for i, t := range tiers {
		if i == len(tiers)-1 || s.rnd.Float64() < t.Probability {
			return s.uniformAmount(t.Min, t.Max)
		}
	}

	return decimal.Zero
}

func (s *sampler) pick(weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}

	r := s.rnd.Float64() * total
	for i, w := range weights {
		if r < w {
			return i
		}
		r -= w
	}

	return len(weights) - 1
}

func (s *sampler) paymentMethod() models.PaymentMethod {
	weights := make([]float64, len(s.cfg.MethodWeights))
	for i, w := range s.cfg.MethodWeights {
		weights[i] = w.Weight
	}

	return s.cfg.MethodWeights[s.pick(weights)].Method
}

func (s *sampler) status() models.TransactionStatus {
	weights := make([]float64, len(s.cfg.StatusWeights))
	for i, w := range s.cfg.StatusWeights {
		weights[i] = w.Weight
	}

	return s.cfg.StatusWeights[s.pick(weights)].Status
}

// triangular draws from a triangular distribution on [low, high) with the
// given mode, by inverting its CDF.
func (s *sampler) triangular(low, high, mode float64) float64 {
	u := s.rnd.Float64()
	c := (mode - low) / (high - low)

	if u < c {
		return low + math.Sqrt(u*(high-low)*(mode-low))
	}

	return high - math.Sqrt((1-u)*(high-low)*(high-mode))
}

// daysAgo is denser near zero, so recent days get more transactions.
func (s *sampler) daysAgo() int {
	return int(s.triangular(0, float64(s.cfg.WindowDays), 0))
}

// eventTime backdates now by a triangular number of days and picks a time of
// day between 06:00:00 and 23:59:59. A time still ahead of now moves one day
// back.
func (s *sampler) eventTime(now time.Time) time.Time {
	d := now.AddDate(0, 0, -s.daysAgo())
	t := time.Date(
		d.Year(), d.Month(), d.Day(),
		firstHour+s.rnd.IntN(lastHour-firstHour+1),
		s.rnd.IntN(60),
		s.rnd.IntN(60),
		0,
		now.Location(),
	)

	if t.After(now) {
		t = t.AddDate(0, 0, -1)
	}

	return t
}

func (s *sampler) oneOf(items []string) string {
	return items[s.rnd.IntN(len(items))]
}

func (s *sampler) id(ids []int64) int64 {
	return ids[s.rnd.IntN(len(ids))]
}
