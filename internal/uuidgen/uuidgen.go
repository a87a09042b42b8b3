// Package uuidgen generates the random (version 4) identifiers assigned to
// essence tracks, packing lists, and asset maps.
//
// Generation may be called from scheduler workers concurrently, so the
// random source sits behind a mutex. Tests can swap the source with
// SetSource to get deterministic identifiers.
package uuidgen

import (
	"crypto/rand"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"dcpkit/internal/services"
)

// UUID is a 16-byte identifier with version 4 and RFC 4122 variant bits.
type UUID = uuid.UUID

var (
	mu     sync.Mutex
	source io.Reader = rand.Reader
)

// SetSource replaces the random source and returns a function restoring the
// previous one. A nil reader restores crypto/rand.
func SetSource(r io.Reader) (restore func()) {
	mu.Lock()
	defer mu.Unlock()
	prev := source
	if r == nil {
		r = rand.Reader
	}
	source = r
	return func() {
		mu.Lock()
		source = prev
		mu.Unlock()
	}
}

// New fills 16 bytes from the random source, then forces the version nibble
// to 0100 and the variant bits to 10.
func New() (UUID, error) {
	mu.Lock()
	defer mu.Unlock()
	id, err := uuid.NewRandomFromReader(source)
	if err != nil {
		return uuid.Nil, services.Wrap(services.ErrEncoding, "uuid", "generate", "read random source", err)
	}
	return id, nil
}

// Must is New for call sites where a broken random source is unrecoverable.
func Must() UUID {
	id, err := New()
	if err != nil {
		panic(err)
	}
	return id
}

// Parse accepts the 36-character hyphenated form, with or without a
// urn:uuid: prefix.
func Parse(s string) (UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, services.Wrap(services.ErrEncoding, "uuid", "parse", "", err)
	}
	return id, nil
}

// URN renders id in the urn:uuid: form used by packing lists.
func URN(id UUID) string {
	return id.URN()
}
