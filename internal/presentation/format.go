package presentation

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

type localeFormat struct {
	dateLayout     string
	currencyPrefix string
}

var (
	supportedLocales = []language.Tag{
		language.BrazilianPortuguese,
		language.AmericanEnglish,
		language.BritishEnglish,
		language.EuropeanSpanish,
	}
	localeFormats = []localeFormat{
		{dateLayout: "02/01/2006", currencyPrefix: "R$ "},
		{dateLayout: "1/2/2006", currencyPrefix: "$"},
		{dateLayout: "02/01/2006", currencyPrefix: "£"},
		{dateLayout: "2/1/2006", currencyPrefix: "€"},
	}
	localeMatcher = language.NewMatcher(supportedLocales)

	isoFormat = localeFormat{dateLayout: "2006-01-02"}
)

func resolveLocale(locale string) (language.Tag, localeFormat) {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return language.Und, isoFormat
	}
	matched, idx, confidence := localeMatcher.Match(tag)
	if confidence == language.No {
		return matched, isoFormat
	}
	return matched, localeFormats[idx]
}

// FormatDate renders an ISO timestamp as a locale date in the process time zone.
// Input that does not parse is returned unchanged.
func FormatDate(iso, locale string) string {
	return FormatDateIn(iso, locale, time.Local)
}

// FormatDateIn is FormatDate with an explicit time zone.
func FormatDateIn(iso, locale string, loc *time.Location) string {
	t, ok := parseTimestamp(iso)
	if !ok {
		return iso
	}
	return FormatTime(t, locale, loc)
}

// FormatTime renders t as a locale date in loc. Zero times render as "".
func FormatTime(t time.Time, locale string, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	_, f := resolveLocale(locale)
	return t.In(loc).Format(f.dateLayout)
}

// FormatPrice renders amount with two decimals and the locale currency prefix.
func FormatPrice(amount decimal.Decimal, locale string) string {
	tag, f := resolveLocale(locale)
	if tag == language.Und {
		return amount.StringFixed(2)
	}
	p := message.NewPrinter(tag)
	return f.currencyPrefix + p.Sprint(number.Decimal(amount.InexactFloat64(), number.Scale(2)))
}

func parseTimestamp(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
