package cli

import "testing"

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{950, "950.00"},
		{1000.5, "1,000.50"},
		{1234567.891, "1,234,567.89"},
		{-200, "-200.00"},
		{-1234.5, "-1,234.50"},
		{999.999, "1,000.00"},
	}
	for _, c := range cases {
		if got := FormatAmount(c.in); got != c.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatPct(t *testing.T) {
	if got := FormatPct(nil); got != "n/a" {
		t.Errorf("FormatPct(nil) = %q, want n/a", got)
	}

	for _, c := range []struct {
		in   float64
		want string
	}{
		{0.111, "11.1%"},
		{-1, "-100.0%"},
		{0, "0.0%"},
		{2.5, "250.0%"},
	} {
		p := c.in
		if got := FormatPct(&p); got != c.want {
			t.Errorf("FormatPct(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	for _, c := range []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-45000, "-45,000"},
	} {
		if got := FormatNumber(c.in); got != c.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}
