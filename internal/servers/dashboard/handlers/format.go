package handlers

import (
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vysogota0399/fintech_dashboard/internal/controls"
)

var printer = message.NewPrinter(language.English)

func money(d decimal.Decimal) string {
	return printer.Sprintf("R$ %.2f", d.InexactFloat64())
}

func moneyNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}

	return money(d.Decimal)
}

func count(n int64) string {
	return printer.Sprintf("%d", n)
}

func percent(v float64) string {
	return printer.Sprintf("%.2f%%", v)
}

func percentPtr(v *float64) string {
	if v == nil {
		return "-"
	}

	return percent(*v)
}

var templateFuncs = template.FuncMap{
	"money":      money,
	"moneyNull":  moneyNull,
	"count":      count,
	"percent":    percent,
	"percentPtr": percentPtr,
	"date":       func(t time.Time) string { return t.Format(controls.DateLayout) },
	"datetime":   func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
	"hourWindow": func(t time.Time) string { return t.Format("2006-01-02 15:00") },
	"dateInput": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format(controls.DateLayout)
	},
}
