package common

// Coalesce returns the first non-zero value, or the zero value if every value is zero.
// Builder options use it to keep a default when a caller passes an unset setting.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
