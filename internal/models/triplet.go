package models

import (
	"fmt"
	"strconv"
)

// Domain sizes of a 3-digit draw
const (
	Positions   = 3
	Digits      = 10
	NumTriplets = 1000
)

// Triplet is a 3-digit outcome 000..999 stored as its class index
type Triplet uint16

// ParseTriplet parses exactly three ASCII digits
func ParseTriplet(s string) (Triplet, error) {
	if len(s) != Positions {
		return 0, fmt.Errorf("%w: %q is not a 3-digit value", ErrInvalidObservation, s)
	}
	var v int
	for i := 0; i < Positions; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %q is not a 3-digit value", ErrInvalidObservation, s)
		}
		v = v*10 + int(c-'0')
	}
	return Triplet(v), nil
}

// MustParseTriplet is ParseTriplet for literals; it panics on bad input
func MustParseTriplet(s string) Triplet {
	t, err := ParseTriplet(s)
	if err != nil {
		panic(err)
	}
	return t
}

// TripletFromDigits composes a triplet from its three digits
func TripletFromDigits(a, b, c int) Triplet {
	return Triplet(a*100 + b*10 + c)
}

// Digit returns the digit at position p, 0 being the leftmost
func (t Triplet) Digit(p int) int {
	switch p {
	case 0:
		return int(t) / 100
	case 1:
		return int(t) / 10 % 10
	default:
		return int(t) % 10
	}
}

// Valid reports whether t is inside the 000..999 domain
func (t Triplet) Valid() bool {
	return int(t) < NumTriplets
}

// String returns the zero-padded canonical form
func (t Triplet) String() string {
	s := strconv.Itoa(int(t))
	switch len(s) {
	case 1:
		return "00" + s
	case 2:
		return "0" + s
	}
	return s
}

// MarshalText encodes the triplet in canonical form
func (t Triplet) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes and validates a canonical triplet
func (t *Triplet) UnmarshalText(data []byte) error {
	parsed, err := ParseTriplet(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// AllTriplets returns the full domain in ascending order
func AllTriplets() []Triplet {
	out := make([]Triplet, NumTriplets)
	for i := range out {
		out[i] = Triplet(i)
	}
	return out
}
