package controls

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vysogota0399/fintech_dashboard/internal/models"
)

func query(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParse_defaults(t *testing.T) {
	v, err := Parse(query(nil))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), v)
}

func TestParse_validValues(t *testing.T) {
	v, err := Parse(query(map[string]string{
		"days":           "7",
		"top":            "20",
		"min_amount":     "1000",
		"min_count":      "3",
		"start_date":     "2024-01-01",
		"end_date":       "2024-01-31",
		"payment_method": "pix",
		"status":         "all",
		"limit":          "1000",
	}))
	require.NoError(t, err)

	assert.Equal(t, 7, v.Days)
	assert.Equal(t, 20, v.Top)
	assert.Equal(t, 1000.0, v.MinAmount)
	assert.Equal(t, 3, v.MinCount)
	assert.Equal(t, models.PaymentMethodPix, v.Filter.PaymentMethod)
	assert.Empty(t, v.Filter.Status)
	assert.Equal(t, 1000, v.Filter.Limit)
	require.NotNil(t, v.Filter.StartDate)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *v.Filter.StartDate)
}

func TestParse_invalidValuesFallBack(t *testing.T) {
	v, err := Parse(query(map[string]string{
		"days":           "10",
		"top":            "21",
		"min_amount":     "999",
		"min_count":      "x",
		"start_date":     "2024-02-01",
		"end_date":       "2024-01-01",
		"payment_method": "cash",
		"limit":          "0",
	}))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidControl))

	assert.Equal(t, DefaultPeriod, v.Days)
	assert.Equal(t, DefaultTop, v.Top)
	assert.Equal(t, float64(DefaultHighValue), v.MinAmount)
	assert.Equal(t, DefaultFrequency, v.MinCount)
	assert.Nil(t, v.Filter.StartDate)
	assert.Nil(t, v.Filter.EndDate)
	assert.Empty(t, v.Filter.PaymentMethod)
	assert.Equal(t, 100, v.Filter.Limit)

	assert.Len(t, Messages(err), 7)
}

func TestParsePeriod(t *testing.T) {
	for _, d := range PeriodOptions {
		v, err := ParsePeriod(strconv.Itoa(d))
		assert.NoError(t, err)
		assert.Equal(t, d, v)
	}

	_, err := ParsePeriod("-30")
	assert.ErrorIs(t, err, ErrInvalidControl)
}

func TestMessages_nil(t *testing.T) {
	assert.Nil(t, Messages(nil))
}

func TestParseHighValue(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "", want: DefaultHighValue},
		{in: "1000", want: 1000},
		{in: "50000", want: 50000},
		{in: "12500.50", want: 12500.50},
		{in: "999.99", want: DefaultHighValue, wantErr: true},
		{in: "50000.01", want: DefaultHighValue, wantErr: true},
		{in: "NaN", want: DefaultHighValue, wantErr: true},
		{in: "nan", want: DefaultHighValue, wantErr: true},
		{in: "+Inf", want: DefaultHighValue, wantErr: true},
		{in: "ten", want: DefaultHighValue, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := ParseHighValue(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidControl)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestParse_nanAmountFallsBack(t *testing.T) {
	v, err := Parse(query(map[string]string{"min_amount": "nan"}))

	assert.ErrorIs(t, err, ErrInvalidControl)
	assert.Equal(t, float64(DefaultHighValue), v.MinAmount)
}
