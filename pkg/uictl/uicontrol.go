// Package uictl defines the read-only controls screens draw from, so a
// screen never needs the device or timer behind a value.
package uictl

import "golang.org/x/exp/constraints"

type Number interface {
	constraints.Integer | constraints.Float
}

// Dial is a control that can read some value.
type Dial[N Number] interface {
	Read() N
}

// CappedDial is a Dial with a maximum cap value.
type CappedDial[N Number] interface {
	Dial[N]
	Cap() (num, max N)
}

// Levels reads a window of recent samples.
type Levels[N Number] interface {
	Read() []N
}

// Fraction returns how far d is towards its cap, clamped to [0, 1].
// A dial without a positive cap reads as 0.
func Fraction[N Number](d CappedDial[N]) float64 {
	num, limit := d.Cap()
	if limit <= 0 {
		return 0
	}

	return min(max(float64(num)/float64(limit), 0), 1)
}
