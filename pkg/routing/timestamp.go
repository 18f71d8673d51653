package routing

import "math"

// TimestampFlags is a boolean array whose ResetAll is O(1) amortized.
// A flag is set when its stamp equals the current generation; ResetAll
// advances the generation and only clears the array on wraparound.
type TimestampFlags struct {
	stamps  []uint16
	current uint16
}

// NewTimestampFlags returns n cleared flags.
func NewTimestampFlags(n int) TimestampFlags {
	return TimestampFlags{stamps: make([]uint16, n), current: 1}
}

// Len returns the number of flags.
func (f *TimestampFlags) Len() int { return len(f.stamps) }

// IsSet reports whether flag i is set.
func (f *TimestampFlags) IsSet(i uint32) bool { return f.stamps[i] == f.current }

// Set sets flag i.
func (f *TimestampFlags) Set(i uint32) { f.stamps[i] = f.current }

// Unset clears flag i.
func (f *TimestampFlags) Unset(i uint32) { f.stamps[i] = f.current - 1 }

// ResetAll clears every flag.
func (f *TimestampFlags) ResetAll() {
	if f.current == math.MaxUint16 {
		clear(f.stamps)
		f.current = 1
		return
	}
	f.current++
}
