package common

// IsEmpty reports whether s has no elements.
func IsEmpty[S ~[]E, E any](s S) bool {
	return len(s) == 0
}

// IsMultiple reports whether s has more than one element, e.g. a struct
// with several base markers.
func IsMultiple[S ~[]E, E any](s S) bool {
	return len(s) > 1
}
