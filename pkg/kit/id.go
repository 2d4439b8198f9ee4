package kit

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const (
	shortIDLen      = 8
	shortIDAttempts = 32
)

var ErrIDExhausted = errors.New("could not allocate unique id")

// NewShortID returns a short, human-typable id. taken reports ids already in
// use; a candidate that collides is discarded and a new one drawn.
func NewShortID(taken func(string) bool) (string, error) {
	for i := 0; i < shortIDAttempts; i++ {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")[:shortIDLen]
		if taken == nil || !taken(id) {
			return id, nil
		}
	}
	return "", ErrIDExhausted
}
