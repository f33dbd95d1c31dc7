// internal/minoptmax/minoptmax.go
package minoptmax

import (
	"errors"
	"fmt"
)

// ErrInvalidRange is returned when a triple would violate min <= opt <= max.
var ErrInvalidRange = errors.New("invalid min/opt/max range")

// MinOptMax is a length range in millipoints: the smallest acceptable value,
// the preferred value, and the largest acceptable value.
//
// Values are immutable. Every operation returns a new MinOptMax.
type MinOptMax struct {
	Min int64 `json:"min"`
	Opt int64 `json:"opt"`
	Max int64 `json:"max"`
}

// Zero is the stiff zero length.
var Zero = MinOptMax{}

// New validates the triple and returns it.
func New(min, opt, max int64) (MinOptMax, error) {
	if min > opt {
		return Zero, fmt.Errorf("%w: min (%d) > opt (%d)", ErrInvalidRange, min, opt)
	}
	if max < opt {
		return Zero, fmt.Errorf("%w: max (%d) < opt (%d)", ErrInvalidRange, max, opt)
	}
	return MinOptMax{Min: min, Opt: opt, Max: max}, nil
}

// MustNew is like New but panics on an invalid triple.
func MustNew(min, opt, max int64) MinOptMax {
	m, err := New(min, opt, max)
	if err != nil {
		panic(err)
	}
	return m
}

// Fixed returns a stiff value where min, opt and max are all v.
func Fixed(v int64) MinOptMax {
	return MinOptMax{Min: v, Opt: v, Max: v}
}

// Stretch is the amount the value may grow beyond its optimum.
func (m MinOptMax) Stretch() int64 { return m.Max - m.Opt }

// Shrink is the amount the value may shrink below its optimum.
func (m MinOptMax) Shrink() int64 { return m.Opt - m.Min }

// IsZero reports whether all three components are zero.
func (m MinOptMax) IsZero() bool { return m.Min == 0 && m.Opt == 0 && m.Max == 0 }

// IsNonZero reports whether any component differs from zero.
func (m MinOptMax) IsNonZero() bool { return !m.IsZero() }

// IsStiff reports whether the value can neither stretch nor shrink.
func (m MinOptMax) IsStiff() bool { return m.Min == m.Max }

// IsElastic reports whether the value can stretch or shrink.
func (m MinOptMax) IsElastic() bool { return m.Min != m.Opt || m.Opt != m.Max }

// Plus adds the components of o to m.
func (m MinOptMax) Plus(o MinOptMax) MinOptMax {
	return MinOptMax{Min: m.Min + o.Min, Opt: m.Opt + o.Opt, Max: m.Max + o.Max}
}

// PlusValue adds v to every component.
func (m MinOptMax) PlusValue(v int64) MinOptMax {
	return MinOptMax{Min: m.Min + v, Opt: m.Opt + v, Max: m.Max + v}
}

// Minus subtracts o from m. The operation fails when o has more stretch or
// shrink than m, since the result would not be a valid range.
func (m MinOptMax) Minus(o MinOptMax) (MinOptMax, error) {
	if o.Shrink() > m.Shrink() || o.Stretch() > m.Stretch() {
		return Zero, fmt.Errorf("%w: cannot subtract %s from %s", ErrInvalidRange, o, m)
	}
	return MinOptMax{Min: m.Min - o.Min, Opt: m.Opt - o.Opt, Max: m.Max - o.Max}, nil
}

// Mult multiplies every component by a non-negative factor.
func (m MinOptMax) Mult(factor int64) (MinOptMax, error) {
	if factor < 0 {
		return Zero, fmt.Errorf("%w: negative factor %d", ErrInvalidRange, factor)
	}
	return MinOptMax{Min: m.Min * factor, Opt: m.Opt * factor, Max: m.Max * factor}, nil
}

// PlusMin raises only the minimum.
func (m MinOptMax) PlusMin(v int64) (MinOptMax, error) {
	return New(m.Min+v, m.Opt, m.Max)
}

// MinusMin lowers only the minimum.
func (m MinOptMax) MinusMin(v int64) (MinOptMax, error) {
	return New(m.Min-v, m.Opt, m.Max)
}

// PlusMax raises only the maximum.
func (m MinOptMax) PlusMax(v int64) (MinOptMax, error) {
	return New(m.Min, m.Opt, m.Max+v)
}

// MinusMax lowers only the maximum.
func (m MinOptMax) MinusMax(v int64) (MinOptMax, error) {
	return New(m.Min, m.Opt, m.Max-v)
}

// ExtendMinimum returns a range whose minimum is at least newMin. Opt and max
// are pulled up as needed so the result stays valid.
func (m MinOptMax) ExtendMinimum(newMin int64) MinOptMax {
	if m.Min >= newMin {
		return m
	}
	return fixAfterMinChanged(newMin, m.Opt, m.Max)
}

// RestrictTo clips m into the bounds of r. The optimum is clamped into the
// resulting [min, max]. If the two ranges do not overlap the result collapses
// onto the nearest bound of r.
func (m MinOptMax) RestrictTo(r MinOptMax) MinOptMax {
	min, max := m.Min, m.Max
	if min < r.Min {
		min = r.Min
	}
	if max > r.Max {
		max = r.Max
	}
	if min > max {
		if m.Max < r.Min {
			return Fixed(r.Min)
		}
		return Fixed(r.Max)
	}
	opt := m.Opt
	if opt < min {
		opt = min
	}
	if opt > max {
		opt = max
	}
	return MinOptMax{Min: min, Opt: opt, Max: max}
}

func fixAfterMinChanged(min, opt, max int64) MinOptMax {
	if opt < min {
		opt = min
	}
	if max < opt {
		max = opt
	}
	return MinOptMax{Min: min, Opt: opt, Max: max}
}

func (m MinOptMax) String() string {
	return fmt.Sprintf("MinOptMax[min=%d, opt=%d, max=%d]", m.Min, m.Opt, m.Max)
}
