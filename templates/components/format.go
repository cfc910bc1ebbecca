package components

import (
	"context"
	"time"

	"github.com/orelvisrguez/assistravel/services/i18n"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func printer(ctx context.Context) *message.Printer {
	tag, err := language.Parse(i18n.GetLocale(ctx))
	if err != nil {
		tag = language.Spanish
	}
	return message.NewPrinter(tag)
}

// FormatMoney renders an amount in dollars with locale grouping
func FormatMoney(ctx context.Context, v float64) string {
	return "$" + printer(ctx).Sprintf("%.2f", v)
}

// FormatAmount renders an optional amount, "-" when empty
func FormatAmount(ctx context.Context, v *float64, symbol string) string {
	if v == nil {
		return "-"
	}
	s := printer(ctx).Sprintf("%.2f", *v)
	if symbol != "" {
		return symbol + " " + s
	}
	return s
}

// FormatCount renders an integer with locale grouping
func FormatCount(ctx context.Context, n int) string {
	return printer(ctx).Sprintf("%d", n)
}

// FormatDate renders an optional date in the locale's day order
func FormatDate(ctx context.Context, t *time.Time) string {
	if t == nil {
		return "-"
	}
	if i18n.GetLocale(ctx) == "en" {
		return t.Format("01/02/2006")
	}
	return t.Format("02/01/2006")
}

// DateInput renders an optional date for <input type="date">
func DateInput(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// Deref returns *s or ""
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// OrDash returns *s or "-" when empty
func OrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
