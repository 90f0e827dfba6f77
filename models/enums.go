package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"saudagar/panna"
)

// BidType is the wager catalog id. The numeric values are the primary keys of
// the bid_types table and must not be renumbered.
type BidType uint

const (
	SingleDigit BidType = iota + 1
	JodiDigit
	SinglePanna
	DoublePanna
	TriplePanna
	Jugar
)

var AllBidTypes = []BidType{SingleDigit, JodiDigit, SinglePanna, DoublePanna, TriplePanna, Jugar}

var bidTypeCodes = map[BidType]string{
	SingleDigit: "single_digit",
	JodiDigit:   "jodi_digit",
	SinglePanna: "single_panna",
	DoublePanna: "double_panna",
	TriplePanna: "triple_panna",
	Jugar:       "jugar",
}

var bidTypeLabels = map[BidType]string{
	SingleDigit: "Single Digit",
	JodiDigit:   "Jodi Digit",
	SinglePanna: "Single Panna",
	DoublePanna: "Double Panna",
	TriplePanna: "Triple Panna",
	Jugar:       "Jugar",
}

func (t BidType) Valid() bool {
	_, ok := bidTypeCodes[t]
	return ok
}

func (t BidType) Code() string { return bidTypeCodes[t] }

func (t BidType) Label() string { return bidTypeLabels[t] }

func (t BidType) String() string {
	if c, ok := bidTypeCodes[t]; ok {
		return c
	}
	return "bid_type(" + strconv.Itoa(int(t)) + ")"
}

// IsPanna reports whether the type settles against a 3-digit result.
func (t BidType) IsPanna() bool {
	return t == SinglePanna || t == DoublePanna || t == TriplePanna
}

// OpenOnly reports whether the type is only settled in the open session. Jodi
// and jugar resolve against the full 2-digit winning number.
func (t BidType) OpenOnly() bool {
	return t == JodiDigit || t == Jugar
}

// Category maps a panna bid type to its combination category.
func (t BidType) Category() panna.Category {
	switch t {
	case SinglePanna:
		return panna.SinglePanna
	case DoublePanna:
		return panna.DoublePanna
	case TriplePanna:
		return panna.TriplePanna
	}
	return panna.Invalid
}

// ParseBidType accepts a code ("jodi_digit") or a numeric id ("2").
func ParseBidType(s string) (BidType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		t := BidType(n)
		return t, t.Valid()
	}
	for t, code := range bidTypeCodes {
		if code == s {
			return t, true
		}
	}
	return 0, false
}

// UnmarshalJSON accepts either the numeric id or the code string.
func (t *BidType) UnmarshalJSON(data []byte) error {
	var n uint
	if err := json.Unmarshal(data, &n); err == nil {
		*t = BidType(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unable to parse %s as bid type", string(data))
	}
	if s == "" {
		*t = 0
		return nil
	}
	parsed, ok := ParseBidType(s)
	if !ok {
		return fmt.Errorf("unknown bid type %q", s)
	}
	*t = parsed
	return nil
}

func (t BidType) Value() (driver.Value, error) { return int64(t), nil }

type Session string

const (
	SessionOpen  Session = "Open"
	SessionClose Session = "Close"
)

// ParseSession normalizes "open"/"OPEN"/"Open" to the stored form.
func ParseSession(s string) (Session, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open":
		return SessionOpen, true
	case "close":
		return SessionClose, true
	}
	return "", false
}

func (s Session) Value() (driver.Value, error) { return string(s), nil }

type BidStatus string

const (
	BidSubmitted BidStatus = "submitted"
	BidWon       BidStatus = "won"
	BidLost      BidStatus = "lost"
)

// SettleableStatuses are the statuses a settlement batch may rewrite.
var SettleableStatuses = []BidStatus{BidSubmitted, BidWon, BidLost}

func (s BidStatus) Value() (driver.Value, error) { return string(s), nil }

type ResultStatus string

const (
	ResultPending  ResultStatus = "pending"
	ResultDeclared ResultStatus = "declared"
)

func (s ResultStatus) Value() (driver.Value, error) { return string(s), nil }

type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
	RoleUser  Role = "user"
)

func (r Role) Value() (driver.Value, error) { return string(r), nil }
