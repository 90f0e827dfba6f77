package panna

import (
	"errors"
	"strings"
)

var ErrInvalidJugar = errors.New("jugar number must look like <digits>/<digits>")

// Jugar is a parsed compound wager: a set of first digits and a set of second
// digits.
type Jugar struct {
	Left  string
	Right string
}

// ParseJugar splits and validates a "<left>/<right>" bid number. Both sides must
// be non-empty digit strings without a repeated digit.
func ParseJugar(bidNumber string) (Jugar, error) {
	left, right, ok := strings.Cut(bidNumber, "/")
	if !ok || !IsDigits(left) || !IsDigits(right) {
		return Jugar{}, ErrInvalidJugar
	}
	if hasRepeat(left) || hasRepeat(right) {
		return Jugar{}, ErrInvalidJugar
	}
	return Jugar{Left: left, Right: right}, nil
}

// Matches reports whether a 2-digit winning number falls in the cross product.
func (j Jugar) Matches(winning string) bool {
	if len(winning) != 2 {
		return false
	}
	return strings.IndexByte(j.Left, winning[0]) >= 0 && strings.IndexByte(j.Right, winning[1]) >= 0
}

// Expand enumerates every jodi covered by the wager, left-major.
func (j Jugar) Expand() []string {
	out := make([]string, 0, len(j.Left)*len(j.Right))
	for i := 0; i < len(j.Left); i++ {
		for k := 0; k < len(j.Right); k++ {
			out = append(out, string([]byte{j.Left[i], j.Right[k]}))
		}
	}
	return out
}

func ExpandJugar(bidNumber string) ([]string, error) {
	j, err := ParseJugar(bidNumber)
	if err != nil {
		return nil, err
	}
	return j.Expand(), nil
}

// MatchJugar is the membership test used by settlement. Malformed bid numbers
// never match.
func MatchJugar(bidNumber, winning string) bool {
	j, err := ParseJugar(bidNumber)
	if err != nil {
		return false
	}
	return j.Matches(winning)
}

func hasRepeat(s string) bool {
	var seen [10]bool
	for i := 0; i < len(s); i++ {
		d := s[i] - '0'
		if seen[d] {
			return true
		}
		seen[d] = true
	}
	return false
}
