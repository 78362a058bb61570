// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatAmount formats a monetary value with two decimals and comma
// separators. Sign is preserved; display rounding only, the stored value
// is never rounded.
func FormatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	dot := strings.IndexByte(s, '.')
	whole, frac := s[:dot], s[dot:]

	grouped := groupThousands(whole)
	if neg {
		return "-" + grouped + frac
	}
	return grouped + frac
}

// FormatPct formats an optional ratio as a percentage, e.g. 0.111 -> "11.1%".
// Nil renders as "n/a" so an undefined ratio never looks like zero.
func FormatPct(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *p*100)
}

// FormatNumber adds comma separators to an integer.
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	return groupThousands(strconv.FormatInt(n, 10))
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
