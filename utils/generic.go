package utils

// Number represents a numeric type.
type Number interface {
	int | int16 | int32 | int64 | float32 | float64
}

// Min returns the smallest of the provided numbers.
//
// Args:
//   - a: The first number.
//   - b: Any further numbers.
//
// Returns:
//   - T: The minimum value.
func Min[T Number](a T, b ...T) (c T) {
	c = a
	for _, n := range b {
		if n < c {
			c = n
		}
	}

	return
}

// Max returns the largest of the provided numbers.
//
// Args:
//   - a: The first number.
//   - b: Any further numbers.
//
// Returns:
//   - T: The maximum value.
func Max[T Number](a T, b ...T) (c T) {
	c = a
	for _, n := range b {
		if n > c {
			c = n
		}
	}

	return
}

// Contains reports whether item is present in arr.
//
// Args:
//   - arr: The slice to search.
//   - item: The item to look for.
//
// Returns:
//   - bool: True when the item is found.
func Contains[T comparable](arr []T, item T) bool {
	for _, i := range arr {
		if i == item {
			return true
		}
	}

	return false
}
