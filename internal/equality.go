package internal

import "math"

// Same implements the equality oracle every write and every recompute is
// gated on: ordinary == for everything, except floats, where NaN is treated
// as equal to itself and +0/-0 are treated as distinct. Values arrive boxed
// as any (signals and computeds both store any internally), so the switch
// has to happen here rather than at a generic call site.
func Same(a, b any) bool {
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		if !ok {
			return false
		}
		if math.IsNaN(x) && math.IsNaN(y) {
			return true
		}
		if x == 0 && y == 0 {
			return math.Signbit(x) == math.Signbit(y)
		}
		return x == y
	case float32:
		y, ok := b.(float32)
		if !ok {
			return false
		}
		if math.IsNaN(float64(x)) && math.IsNaN(float64(y)) {
			return true
		}
		if x == 0 && y == 0 {
			return math.Signbit(float64(x)) == math.Signbit(float64(y))
		}
		return x == y
	default:
		return a == b
	}
}

// unset is the sentinel stored in a freshly-created Computed's value slot.
// It is a distinct unexported type so it can never compare Same to any real
// T, including T's own zero value - the reason Computed boxes any instead of
// storing a T directly.
type unset struct{}

var notComputed any = unset{}
