package record

import (
	"regexp"
	"strings"

	"github.com/taskdaemon/taskstore/internal/taskerr"
)

// nameGrammar matches `[a-z_][a-z0-9_]*`, the grammar shared by collection
// and field names.
var nameGrammar = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidateCollection enforces the collection-name grammar and length cap.
func ValidateCollection(name string) error {
	if !nameGrammar.MatchString(name) {
		return &taskerr.ValidationError{
			Collection: name,
			Reason:     "collection name must match [a-z_][a-z0-9_]*",
		}
	}
	if runeLen(name) > maxNameChars {
		return &taskerr.ValidationError{
			Collection: name,
			Reason:     "collection name exceeds 64 characters",
		}
	}
	return nil
}

// ValidateField enforces the field-name grammar and length cap used for
// indexed fields.
func ValidateField(collection, field string) error {
	if !nameGrammar.MatchString(field) {
		return &taskerr.ValidationError{
			Collection: collection,
			Field:      field,
			Reason:     "field name must match [a-z_][a-z0-9_]*",
		}
	}
	if runeLen(field) > maxNameChars {
		return &taskerr.ValidationError{
			Collection: collection,
			Field:      field,
			Reason:     "field name exceeds 64 characters",
		}
	}
	return nil
}

// ValidateIdentity enforces the identity contract: trimmed, non-empty,
// length ≤256 characters.
func ValidateIdentity(collection, id string) error {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return &taskerr.ValidationError{
			Collection: collection,
			Identity:   id,
			Reason:     "identity must be non-empty after trimming",
		}
	}
	if runeLen(id) > maxIdentityChars {
		return &taskerr.ValidationError{
			Collection: collection,
			Identity:   id,
			Reason:     "identity exceeds 256 characters",
		}
	}
	return nil
}

// Validate runs all three checks relevant to a record about to be written:
// its collection name, its identity, and the name of every indexed field it
// declares.
func Validate(r Record) error {
	collection := r.CollectionName()
	if err := ValidateCollection(collection); err != nil {
		return err
	}
	if err := ValidateIdentity(collection, r.Identity()); err != nil {
		return err
	}
	for field := range r.IndexedFields() {
		if err := ValidateField(collection, field); err != nil {
			return err
		}
	}
	return nil
}
