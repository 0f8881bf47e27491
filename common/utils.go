package common

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// ClampDimension converts a window dimension to a surface dimension of at least one pixel.
// Surfaces cannot be configured with a zero extent, which windows report while minimized.
//
// Parameters:
//   - v: the requested dimension in pixels
//
// Returns:
//   - uint32: v, or 1 if v is below 1
func ClampDimension(v int) uint32 {
	if v < 1 {
		return 1
	}
	return uint32(v)
}
