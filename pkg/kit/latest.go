package kit

// Latest returns a copy of the last n elements of s, oldest first. n <= 0
// returns all of s.
func Latest[T any](s []T, n int) []T {
	if n <= 0 || n > len(s) {
		n = len(s)
	}
	out := make([]T, n)
	copy(out, s[len(s)-n:])
	return out
}
