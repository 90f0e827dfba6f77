// Package panna holds the combination math for 3-digit panna values and the
// digit-set matcher used by jugar wagers.
package panna

import (
	"fmt"
	"sort"
)

// Category is the digit-multiplicity class of a 3-digit panna.
type Category string

const (
	SinglePanna Category = "single_panna"
	DoublePanna Category = "double_panna"
	TriplePanna Category = "triple_panna"
	Invalid     Category = ""
)

// Categories lists every valid category in catalog order.
var Categories = []Category{SinglePanna, DoublePanna, TriplePanna}

// tables maps category -> point -> sorted pannas. Built once in init and never
// mutated afterwards, so concurrent readers need no locking.
var tables = map[Category][10][]string{}

func init() {
	var single, double, triple [10][]string
	for n := 0; n < 1000; n++ {
		s := fmt.Sprintf("%03d", n)
		p := Reduce(s)
		switch Classify(s) {
		case SinglePanna:
			single[p] = append(single[p], s)
		case DoublePanna:
			double[p] = append(double[p], s)
		case TriplePanna:
			triple[p] = append(triple[p], s)
		}
	}
	tables[SinglePanna] = single
	tables[DoublePanna] = double
	tables[TriplePanna] = triple
}

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Classify returns the category of a 3-digit string by its number of distinct
// digits, or Invalid when s is not exactly three digits.
func Classify(s string) Category {
	if len(s) != 3 || !IsDigits(s) {
		return Invalid
	}
	distinct := 3
	if s[0] == s[1] || s[0] == s[2] || s[1] == s[2] {
		distinct = 2
	}
	if s[0] == s[1] && s[1] == s[2] {
		distinct = 1
	}
	switch distinct {
	case 1:
		return TriplePanna
	case 2:
		return DoublePanna
	default:
		return SinglePanna
	}
}

// Reduce returns the digit sum of s modulo 10. Non-digit bytes are ignored.
func Reduce(s string) int {
	sum := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			sum += int(s[i] - '0')
		}
	}
	return sum % 10
}

// CombinationsFor returns every panna of the category whose point equals
// point. The returned slice is a copy.
func CombinationsFor(c Category, point int) []string {
	if point < 0 || point > 9 {
		return nil
	}
	t, ok := tables[c]
	if !ok {
		return nil
	}
	out := make([]string, len(t[point]))
	copy(out, t[point])
	return out
}

// Contains reports whether panna is in CombinationsFor(c, point).
func Contains(c Category, point int, panna string) bool {
	if point < 0 || point > 9 {
		return false
	}
	t, ok := tables[c]
	if !ok {
		return false
	}
	list := t[point]
	i := sort.SearchStrings(list, panna)
	return i < len(list) && list[i] == panna
}

// IsStrictDoublePanna reports whether s is three digits where exactly one
// digit occurs exactly twice. This is the placement-time check for double
// panna wagers.
func IsStrictDoublePanna(s string) bool {
	if len(s) != 3 || !IsDigits(s) {
		return false
	}
	var counts [10]int
	for i := 0; i < 3; i++ {
		counts[s[i]-'0']++
	}
	pairs := 0
	for _, c := range counts {
		if c == 2 {
			pairs++
		}
	}
	return pairs == 1
}
