package record

import "github.com/google/uuid"

// NewIdentity returns a fresh random identity for a record type that has
// no natural key of its own. Callers with a meaningful natural key
// (an order number, a username) should prefer that instead.
func NewIdentity() string {
	return uuid.NewString()
}
