package utils

import "math/rand"

// Pick returns a uniformly chosen element of options. It is not
// cryptographically secure and must only be used for decoration.
func Pick[T any](options []T) T {
	return options[rand.Intn(len(options))]
}
