package orderkey

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/lupppig/orderkey/internal/alphabet"
)

// Key is an immutable, validated order key. The zero Key is "unset": it is
// not a position and is rejected by every generator.
//
// Key values are safe for concurrent use because they are immutable.
type Key struct {
	value string
}

// Parse validates s and returns it as a Key.
func Parse(s string) (Key, error) {
	if len(s) == 0 {
		return Key{}, fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if err := alphabet.Validate(s); err != nil {
		return Key{}, fmt.Errorf("%w %q: %w", ErrInvalidKey, s, err)
	}
	if s[len(s)-1] == alphabet.Min() {
		return Key{}, fmt.Errorf("%w %q: ends with the minimal character", ErrInvalidKey, s)
	}
	return Key{value: s}, nil
}

// MustParse is like [Parse] but panics on error. It is meant for literals.
func MustParse(s string) Key {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

// First returns [FirstPosition] as a Key.
func First() Key {
	return Key{value: FirstPosition}
}

// String returns the raw key.
func (k Key) String() string {
	return k.value
}

// IsZero reports whether k is unset.
func (k Key) IsZero() bool {
	return k.value == ""
}

// Len returns the length of the key in characters. Keys grow as items are
// squeezed between close neighbours.
func (k Key) Len() int {
	return len(k.value)
}

// Compare compares two keys byte-wise. It returns -1, 0, or 1.
func (k Key) Compare(other Key) int {
	return strings.Compare(k.value, other.value)
}

// Before returns a key that sorts before k. It panics if k is unset.
func (k Key) Before() Key {
	return Key{value: Before(k.value)}
}

// After returns a key that sorts after k. It panics if k is unset.
func (k Key) After() Key {
	return Key{value: After(k.value)}
}

// BetweenKeys returns a key strictly between a and b. It panics if either key
// is unset or a does not sort before b; see [GenBetween] for an
// error-returning variant.
func BetweenKeys(a, b Key) Key {
	return Key{value: Between(a.value, b.value)}
}

// Sort sorts keys in ascending order.
func Sort(keys []Key) {
	slices.SortFunc(keys, Key.Compare)
}

// Scan implements [database/sql.Scanner] so a Key can be read directly from
// a string column. NULL scans to the zero Key; malformed values are errors.
func (k *Key) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*k = Key{}
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("orderkey: cannot scan %T into Key", src)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Value implements [database/sql/driver.Valuer]. The zero Key is stored as
// NULL.
func (k Key) Value() (driver.Value, error) {
	if k.IsZero() {
		return nil, nil
	}
	return k.value, nil
}

// MarshalJSON implements [encoding/json.Marshaler]. The zero Key is null.
func (k Key) MarshalJSON() ([]byte, error) {
	if k.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(k.value)
}

// UnmarshalJSON implements [encoding/json.Unmarshaler].
func (k *Key) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*k = Key{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("orderkey: %w", err)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.value), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (k *Key) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
