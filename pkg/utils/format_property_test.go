package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_FormatMoneyAlwaysTwoDecimals(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("formatted amounts end with two decimals", prop.ForAll(
		func(amount float64) bool {
			s := FormatMoney(amount)
			dot := strings.LastIndex(s, ".")
			return dot >= 0 && len(s)-dot-1 == 2
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.Property("sign is preserved", prop.ForAll(
		func(amount float64) bool {
			s := FormatMoney(amount)
			if amount < 0 {
				return strings.HasPrefix(s, "-")
			}
			return !strings.HasPrefix(s, "-")
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.TestingRun(t)
}

func TestProperty_FormatQuantityRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("stripping separators restores the digits", prop.ForAll(
		func(qty int) bool {
			s := strings.ReplaceAll(FormatQuantity(qty), ",", "")
			return s == itoa(qty)
		},
		gen.IntRange(-10_000_000, 10_000_000),
	))

	properties.TestingRun(t)
}

func itoa(n int) string {
	if n < 0 {
		return "-" + itoa(-n)
	}
	if n < 10 {
		return string(rune('0' + n))
	}
	return itoa(n/10) + string(rune('0'+n%10))
}

func TestFormatMoneyGrouping(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{999.994, "999.99"},
		{1234.5, "1,234.50"},
		{1234567.89, "1,234,567.89"},
		{-300000, "-300,000.00"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(12.345); got != "+12.35%" {
		t.Errorf("FormatPercent positive = %q", got)
	}
	if got := FormatPercent(-3.2); got != "-3.20%" {
		t.Errorf("FormatPercent negative = %q", got)
	}
	if got := FormatPercent(0); got != "0.00%" {
		t.Errorf("FormatPercent zero = %q", got)
	}
}

func TestParseDateBothForms(t *testing.T) {
	want := time.Date(2023, 7, 14, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2023-07-14", "20230714"} {
		got, err := ParseDate(in)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", in, err)
		}
		if !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseDate("14/07/2023"); err == nil {
		t.Error("ParseDate accepted an unsupported form")
	}
}
