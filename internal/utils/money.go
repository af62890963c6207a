package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RoundCurrency rounds to whole currency units.
func RoundCurrency(amount float64) float64 {
	return math.Round(amount)
}

// RoundCents rounds to two decimals.
func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// FormatRupee renders amount as "₹10,998" using Indian digit grouping
// (₹1,00,000). Fractions are shown only when present.
func FormatRupee(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	amount = RoundCents(amount)
	whole := int64(amount)
	paise := int64(math.Round((amount - float64(whole)) * 100))
	if paise == 100 {
		whole++
		paise = 0
	}

	out := sign + "₹" + groupIndian(whole)
	if paise > 0 {
		out += fmt.Sprintf(".%02d", paise)
	}
	return out
}

func groupIndian(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	head, tail := s[:len(s)-3], s[len(s)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}
