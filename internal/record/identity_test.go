package record

import "testing"

func TestNewIdentity_ReturnsDistinctNonEmptyValues(t *testing.T) {
	a := NewIdentity()
	b := NewIdentity()

	if a == "" || b == "" {
		t.Fatal("expected non-empty identities")
	}
	if a == b {
		t.Fatal("expected distinct identities across calls")
	}
	if err := ValidateIdentity("widgets", a); err != nil {
		t.Errorf("generated identity failed validation: %v", err)
	}
}
