package domain

import (
	"fmt"
	"strings"
)

type BuildType string

const (
	BuildTypeBinary  BuildType = "BINARY"
	BuildTypeTrinary BuildType = "TRINARY"
)

// Width - количество мест на одном уровне стола
func (bt BuildType) Width() int {
	switch bt {
	case BuildTypeBinary:
		return 2
	case BuildTypeTrinary:
		return 3
	}
	return 0
}

// Capacity - width^2 + width
func (bt BuildType) Capacity() int {
	w := bt.Width()
	return w*w + w
}

func (bt BuildType) Valid() bool {
	return bt.Width() > 0
}

// ShortCode is the compact form used in task payloads ("b" / "t").
func (bt BuildType) ShortCode() string {
	if bt == BuildTypeBinary {
		return "b"
	}
	return "t"
}

func ParseBuildType(s string) (BuildType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "binary", "b":
		return BuildTypeBinary, nil
	case "trinary", "t":
		return BuildTypeTrinary, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidBuildType, s)
}

type Status string

const (
	StatusNotActive Status = "NOT_ACTIVE"
	StatusBase      Status = "BASE"
	StatusBronze    Status = "BRONZE"
	StatusSilver    Status = "SILVER"
	StatusGold      Status = "GOLD"
	StatusPlatinum  Status = "PLATINUM"
	StatusDiamond   Status = "DIAMOND"
	StatusBrilliant Status = "BRILLIANT"
)

var orderedTiers = [...]Status{
	StatusBase,
	StatusBronze,
	StatusSilver,
	StatusGold,
	StatusPlatinum,
	StatusDiamond,
	StatusBrilliant,
}

// суммы подарков по тарифам, индекс совпадает с orderedTiers
var donationTables = map[BuildType][len(orderedTiers)]float64{
	BuildTypeTrinary: {10, 30, 100, 300, 1000, 3000, 10000},
	BuildTypeBinary:  {10, 20, 40, 80, 160, 320, 640},
}

// OrderedTiers returns the ascending tier sequence shared by both build types.
func OrderedTiers() []Status {
	out := make([]Status, len(orderedTiers))
	copy(out, orderedTiers[:])
	return out
}

// StatusFor resolves the tier whose donation amount equals amount.
// The second value is false when the amount matches no tier.
func StatusFor(amount float64, bt BuildType) (Status, bool) {
	table, ok := donationTables[bt]
	if !ok {
		return "", false
	}
	for i, v := range table {
		if v == amount {
			return orderedTiers[i], true
		}
	}
	return "", false
}

func DonationAmount(s Status, bt BuildType) (float64, bool) {
	table, ok := donationTables[bt]
	if !ok {
		return 0, false
	}
	r := s.Rank()
	if r == 0 {
		return 0, false
	}
	return table[r-1], true
}

// Rank is 0 for NOT_ACTIVE (and unknown values), 1..7 for the tiers.
func (s Status) Rank() int {
	for i, t := range orderedTiers {
		if t == s {
			return i + 1
		}
	}
	return 0
}

func (s Status) IsActive() bool {
	return s.Rank() > 0
}

func (s Status) AtLeast(other Status) bool {
	return s.Rank() >= other.Rank()
}

// NextStatus returns the tier directly above current, false at the top.
func NextStatus(current Status) (Status, bool) {
	r := current.Rank()
	if r >= len(orderedTiers) {
		return "", false
	}
	return orderedTiers[r], true
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if st == StatusNotActive || st.Rank() > 0 {
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}
