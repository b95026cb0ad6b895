package math

import "golang.org/x/exp/constraints"

// IsMultipleOf reports whether v is a multiple of n. Zero is a multiple of
// everything; nothing but zero is a multiple of zero.
func IsMultipleOf[T constraints.Unsigned](v, n T) bool {
	if n == 0 {
		return v == 0
	}
	return v%n == 0
}

// AlignUp rounds v up to the next multiple of alignment.
func AlignUp[T constraints.Unsigned](v, alignment T) T {
	if alignment == 0 {
		return v
	}
	return (v + alignment - 1) / alignment * alignment
}
