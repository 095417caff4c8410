package model

import (
	"fmt"
	"time"
)

// MonthLayout is the YYYY-MM format used for months on the wire and in flags.
const MonthLayout = "2006-01"

// YearMonth is a calendar month with no day or time component.
type YearMonth struct {
	Year  int
	Month time.Month
}

// MonthOf truncates t to its calendar month.
func MonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses "YYYY-MM". Full ISO dates are accepted and truncated.
func ParseYearMonth(s string) (YearMonth, error) {
	if t, err := time.Parse(MonthLayout, s); err == nil {
		return MonthOf(t), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid month %q (want YYYY-MM)", s)
	}
	return MonthOf(t), nil
}

// IsZero reports whether ym is unset.
func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

// index maps ym onto a linear month count so comparisons are integer math.
func (ym YearMonth) index() int {
	return ym.Year*12 + int(ym.Month) - 1
}

func fromIndex(i int) YearMonth {
	y := i / 12
	m := i%12 + 1
	if m <= 0 {
		m += 12
		y--
	}
	return YearMonth{Year: y, Month: time.Month(m)}
}

// AddMonths returns ym shifted by n months (n may be negative).
func (ym YearMonth) AddMonths(n int) YearMonth {
	return fromIndex(ym.index() + n)
}

// MonthsSince returns the number of months from other to ym.
func (ym YearMonth) MonthsSince(other YearMonth) int {
	return ym.index() - other.index()
}

// Before reports whether ym is strictly earlier than other.
func (ym YearMonth) Before(other YearMonth) bool { return ym.index() < other.index() }

// After reports whether ym is strictly later than other.
func (ym YearMonth) After(other YearMonth) bool { return ym.index() > other.index() }

// Start returns midnight UTC on the first day of the month.
func (ym YearMonth) Start() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first instant of the following month.
func (ym YearMonth) End() time.Time {
	return ym.AddMonths(1).Start()
}

func (ym YearMonth) String() string {
	if ym.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// MarshalText implements encoding.TextMarshaler.
func (ym YearMonth) MarshalText() ([]byte, error) {
	return []byte(ym.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text leaves ym zero.
func (ym *YearMonth) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*ym = YearMonth{}
		return nil
	}
	parsed, err := ParseYearMonth(string(b))
	if err != nil {
		return err
	}
	*ym = parsed
	return nil
}
