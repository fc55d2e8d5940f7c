// Package period resolves natural-language relative-date phrases into
// inclusive calendar ranges. Resolution is deterministic: the same
// (phrase, timezone, reference date) triple always yields the same range.
// Weeks start on Monday regardless of locale.
package period

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	berrors "github.com/balcaohq/balcao/internal/errors"
)

// DateLayout is the wire format for range boundaries.
const DateLayout = "2006-01-02"

// Kind enumerates the recognized phrase classes.
type Kind string

const (
	KindToday       Kind = "today"
	KindYesterday   Kind = "yesterday"
	KindThisWeek    Kind = "this_week"
	KindLastWeek    Kind = "last_week"
	KindTwoWeeksAgo Kind = "two_weeks_ago"
	KindThisMonth   Kind = "this_month"
	KindLastMonth   Kind = "last_month"
	KindLastNDays   Kind = "last_n_days"
)

// Range is an inclusive calendar range in the query's timezone.
type Range struct {
	Start time.Time
	End   time.Time
	Kind  Kind
}

// StartDate returns the range start as YYYY-MM-DD.
func (r Range) StartDate() string { return r.Start.Format(DateLayout) }

// EndDate returns the range end as YYYY-MM-DD.
func (r Range) EndDate() string { return r.End.Format(DateLayout) }

// Query is a relative-range resolution request. Reference overrides "now"
// for deterministic resolution; when zero, today is computed from the wall
// clock in the query's timezone.
type Query struct {
	Phrase    string
	Timezone  string
	Reference time.Time
}

// lastNDaysSet is the fixed set of supported "last N days" window sizes.
var lastNDaysSet = []int{7, 14, 15, 30, 60, 90}

type matcher struct {
	kind     Kind
	patterns []string
	days     int // for last_n_days
}

// matchers are checked in order; more specific phrases come first so
// "semana passada" never falls through to "esta semana".
var matchers = []matcher{
	{kind: KindTwoWeeksAgo, patterns: []string{"duas semanas atras", "semana retrasada", "two weeks ago"}},
	{kind: KindLastWeek, patterns: []string{"semana passada", "ultima semana", "last week"}},
	{kind: KindThisWeek, patterns: []string{"esta semana", "essa semana", "nesta semana", "this week"}},
	{kind: KindLastMonth, patterns: []string{"mes passado", "ultimo mes", "last month"}},
	{kind: KindThisMonth, patterns: []string{"este mes", "esse mes", "neste mes", "this month"}},
	{kind: KindYesterday, patterns: []string{"ontem", "yesterday"}},
	{kind: KindToday, patterns: []string{"hoje", "today"}},
}

// Resolve maps a phrase to its calendar range, or returns an
// UnsupportedExpressionError when no phrase class matches.
func Resolve(q Query) (Range, error) {
	loc, err := time.LoadLocation(q.Timezone)
	if err != nil {
		return Range{}, berrors.NewViolation("timezone", "unknown timezone %q", q.Timezone)
	}

	ref := q.Reference
	if ref.IsZero() {
		ref = time.Now()
	}
	today := dateOnly(ref.In(loc))

	normalized := normalize(q.Phrase)
	if normalized == "" {
		return Range{}, &berrors.UnsupportedExpressionError{Phrase: q.Phrase}
	}

	// "last N days" carries a number, so it is matched structurally rather
	// than by fixed pattern.
	if n, ok := matchLastNDays(normalized); ok {
		return Range{
			Start: today.AddDate(0, 0, -(n - 1)),
			End:   today,
			Kind:  KindLastNDays,
		}, nil
	}

	for _, m := range matchers {
		for _, p := range m.patterns {
			if strings.Contains(normalized, p) {
				return resolveKind(m.kind, today), nil
			}
		}
	}

	return Range{}, &berrors.UnsupportedExpressionError{Phrase: q.Phrase}
}

func resolveKind(kind Kind, today time.Time) Range {
	// Monday of the reference week; (weekday+6) mod 7 fixes Monday-start
	// independent of locale (Go weekday: Sunday=0).
	monday := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))

	switch kind {
	case KindToday:
		return Range{Start: today, End: today, Kind: kind}
	case KindYesterday:
		y := today.AddDate(0, 0, -1)
		return Range{Start: y, End: y, Kind: kind}
	case KindThisWeek:
		return Range{Start: monday, End: monday.AddDate(0, 0, 6), Kind: kind}
	case KindLastWeek:
		return Range{Start: monday.AddDate(0, 0, -7), End: monday.AddDate(0, 0, -1), Kind: kind}
	case KindTwoWeeksAgo:
		return Range{Start: monday.AddDate(0, 0, -14), End: monday.AddDate(0, 0, -8), Kind: kind}
	case KindThisMonth:
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		end := time.Date(today.Year(), today.Month()+1, 0, 0, 0, 0, 0, today.Location())
		return Range{Start: start, End: end, Kind: kind}
	case KindLastMonth:
		// time.Date normalizes month 0 to December of the previous year,
		// which handles the year rollover.
		start := time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, today.Location())
		end := time.Date(today.Year(), today.Month(), 0, 0, 0, 0, 0, today.Location())
		return Range{Start: start, End: end, Kind: kind}
	}

	// Unreachable: every matcher kind is handled above.
	return Range{Start: today, End: today, Kind: kind}
}

func matchLastNDays(normalized string) (int, bool) {
	for _, n := range lastNDaysSet {
		pt := "ultimos " + strconv.Itoa(n) + " dias"
		en := "last " + strconv.Itoa(n) + " days"
		if strings.Contains(normalized, pt) || strings.Contains(normalized, en) {
			return n, true
		}
	}
	return 0, false
}

// normalize lowercases, strips diacritics, and trims the phrase so matching
// treats "mês passado" and "mes passado" identically.
func normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	return strings.TrimSpace(folded)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
