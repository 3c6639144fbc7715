package util

// Coalesce returns the first non-zero value, or the zero value if all are zero.
// Config defaults use it to prefer an explicit setting over a fallback.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
