package orderkey

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict reports that a computed key is already taken by another
	// item. A [WriteFunc] returns an error wrapping it to ask [Place] for
	// another attempt.
	ErrConflict = errors.New("orderkey: key already in use")

	// ErrMaxRetriesExceeded is returned when [Place] exhausts all retry
	// attempts without a successful write.
	ErrMaxRetriesExceeded = errors.New("orderkey: max retries exceeded")

	// ErrIndexOutOfRange is returned by [Reposition] for an index that does
	// not address the list.
	ErrIndexOutOfRange = errors.New("orderkey: index out of range")
)

// GenBetween returns a new Key that sorts between prev and next.
// Either prev or next (or both) may be nil:
//   - If prev is nil, the key is placed before next (prepend).
//   - If next is nil, the key is placed after prev (append).
//   - If both are provided, the key is placed between them.
//   - If both are nil, [First] is returned.
//
// Unlike the generators it returns an error instead of panicking, so it is
// the entry point to use when bounds were read from storage. Unset bounds
// report [ErrInvalidKey]; bounds that are not strictly ascending report
// [ErrOutOfOrder].
func GenBetween(prev, next *Key) (Key, error) {
	for _, k := range []*Key{prev, next} {
		if k != nil && !IsValid(k.value) {
			return Key{}, fmt.Errorf("%w %q", ErrInvalidKey, k.value)
		}
	}

	switch {
	case prev == nil && next == nil:
		return First(), nil
	case prev == nil:
		return next.Before(), nil
	case next == nil:
		return prev.After(), nil
	case prev.Compare(*next) >= 0:
		return Key{}, fmt.Errorf("%w: %q is not before %q", ErrOutOfOrder, prev.value, next.value)
	default:
		return BetweenKeys(*prev, *next), nil
	}
}

// Neighbors returns the keys that would surround an item placed at index to
// of keys, which must be sorted ascending. Index len(keys) means "at the
// end". A nil result marks an open side.
func Neighbors(keys []Key, to int) (prev, next *Key, err error) {
	if to < 0 || to > len(keys) {
		return nil, nil, fmt.Errorf("%w: %d not in [0, %d]", ErrIndexOutOfRange, to, len(keys))
	}
	if to > 0 {
		prev = &keys[to-1]
	}
	if to < len(keys) {
		next = &keys[to]
	}
	return prev, next, nil
}

// Reposition computes the new key for a drag-and-drop style move. keys is
// the list in its current ascending order; the item at index from moves so
// that it ends up at index to of the reordered list. Only the moved item
// receives a new key.
//
// A from of -1 means a new item is being inserted at index to, in which case
// to may equal len(keys). Moving an item onto its own index returns its
// current key.
func Reposition(keys []Key, from, to int) (Key, error) {
	if from == -1 {
		prev, next, err := Neighbors(keys, to)
		if err != nil {
			return Key{}, err
		}
		return GenBetween(prev, next)
	}

	if from < 0 || from >= len(keys) {
		return Key{}, fmt.Errorf("%w: from %d not in [0, %d)", ErrIndexOutOfRange, from, len(keys))
	}
	if to < 0 || to >= len(keys) {
		return Key{}, fmt.Errorf("%w: to %d not in [0, %d)", ErrIndexOutOfRange, to, len(keys))
	}
	if from == to {
		return keys[from], nil
	}

	rest := make([]Key, 0, len(keys)-1)
	rest = append(rest, keys[:from]...)
	rest = append(rest, keys[from+1:]...)

	prev, next, err := Neighbors(rest, to)
	if err != nil {
		return Key{}, err
	}
	return GenBetween(prev, next)
}

// NeighborFunc returns the prev and next keys surrounding the target
// position. Either pointer may be nil (prepend/append). It is called before
// each attempt, so it must re-read from storage to observe concurrent moves.
type NeighborFunc func() (prev, next *Key, err error)

// WriteFunc persists the computed key. It returns an error wrapping
// [ErrConflict] when the key is already taken, typically detected through a
// unique constraint. Any other error stops the retry loop.
type WriteFunc func(key Key) error

// Place performs the read-compute-write cycle with automatic retry on key
// conflicts. On each attempt it:
//  1. Calls neighbors to get the current prev/next keys.
//  2. Computes a new key via [GenBetween].
//  3. Calls write with the computed key.
//
// If write reports [ErrConflict], the cycle restarts (up to maxRetries total
// attempts). If all attempts conflict, [ErrMaxRetriesExceeded] is returned.
//
// The caller is responsible for a uniqueness constraint on the key column so
// that concurrent writers of the same key are detected.
func Place(neighbors NeighborFunc, write WriteFunc, maxRetries int) (Key, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for range maxRetries {
		prev, next, err := neighbors()
		if err != nil {
			return Key{}, fmt.Errorf("orderkey: neighbors: %w", err)
		}

		key, err := GenBetween(prev, next)
		if err != nil {
			return Key{}, fmt.Errorf("orderkey: gen key: %w", err)
		}

		if err := write(key); err != nil {
			if !errors.Is(err, ErrConflict) {
				return Key{}, err
			}
			lastErr = err
			continue
		}

		return key, nil
	}

	return Key{}, fmt.Errorf("%w: last error: %v", ErrMaxRetriesExceeded, lastErr)
}
