// Package record defines the capability contract every storable type must
// satisfy and the sealed scalar variant used for indexed fields.
//
// A Go type cannot itself be made generic the way an
// identity/updated_at/collection/body/indexed_fields contract is phrased;
// instead, each concrete type implements Record and the engine is
// parameterized over it via Go type parameters at the call site
// (store.Collection[T]).
package record

import "unicode/utf8"

// Record is the capability set a storable type must expose. The engine
// never inspects a Record's internal structure beyond this interface; the
// body it serializes is opaque to everything except the concrete type
// itself.
type Record interface {
	// Identity returns a non-empty, trimmed identity unique within the
	// type's collection.
	Identity() string

	// UpdatedAt returns the update timestamp in integer milliseconds.
	// Callers are responsible for supplying non-decreasing values across
	// revisions of the same identity.
	UpdatedAt() int64

	// CollectionName returns the stable, type-level collection name.
	CollectionName() string

	// IndexedFields returns the (possibly empty) mapping from indexed
	// field name to typed scalar value projected at the record's current
	// revision.
	IndexedFields() map[string]Scalar

	// Serialize returns the opaque body bytes to store in the log and
	// cache. The returned bytes are never inspected by the engine.
	Serialize() ([]byte, error)
}

// Deserializer is satisfied by a zero-value (or factory) of a concrete
// Record type capable of reconstructing a full value from stored bytes.
// It is kept separate from Record because construction from bytes is
// usually a function of the type, not a method needing a receiver
// instance.
type Deserializer[T Record] interface {
	Deserialize(body []byte) (T, error)
}

// ScalarKind identifies which variant a Scalar holds.
type ScalarKind int

const (
	// KindText marks a Scalar holding a string value.
	KindText ScalarKind = iota
	// KindInt marks a Scalar holding an int64 value.
	KindInt
	// KindBool marks a Scalar holding a bool value.
	KindBool
)

// Scalar is a sealed variant over {Text, Int, Bool}, the only types a
// caller may project into an indexed field. There is deliberately no
// float variant: the cache's comparison predicates are typed per-column
// (value_text/value_int/value_bool) and a float column would blur Eq/Gt
// semantics across representations.
type Scalar struct {
	kind ScalarKind
	text string
	num  int64
	flag bool
}

// Text constructs a text-valued Scalar.
func Text(v string) Scalar { return Scalar{kind: KindText, text: v} }

// Int constructs an integer-valued Scalar.
func Int(v int64) Scalar { return Scalar{kind: KindInt, num: v} }

// Bool constructs a boolean-valued Scalar.
func Bool(v bool) Scalar { return Scalar{kind: KindBool, flag: v} }

// Kind reports which variant is held.
func (s Scalar) Kind() ScalarKind { return s.kind }

// TextValue returns the held string and whether the Scalar is text-kinded.
func (s Scalar) TextValue() (string, bool) { return s.text, s.kind == KindText }

// IntValue returns the held int64 and whether the Scalar is int-kinded.
func (s Scalar) IntValue() (int64, bool) { return s.num, s.kind == KindInt }

// BoolValue returns the held bool and whether the Scalar is bool-kinded.
func (s Scalar) BoolValue() (bool, bool) { return s.flag, s.kind == KindBool }

// maxIdentityChars is the identity length cap: at most 256 characters.
const maxIdentityChars = 256

// maxNameChars is the collection/field name length cap: at most 64 characters.
const maxNameChars = 64

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
