// Package idgen provides pluggable ID generation for docport.
//
// Attempt and result identifiers are a startup-time decision: the
// orchestrator takes a Generator, so tests can inject deterministic IDs
// while production uses time-sortable UUIDv7.
package idgen

import (
	"crypto/rand"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns a Generator that produces RFC 9562 UUID v7 strings,
// time-sortable and globally unique.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// NanoID returns a Generator producing short base-36 IDs of the given
// length, for places where a UUID is too verbose (download tokens).
func NanoID(length int) Generator {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	return func() string {
		buf := make([]byte, length)
		if _, err := rand.Read(buf); err != nil {
			panic("idgen: crypto/rand failed: " + err.Error())
		}
		b := make([]byte, length)
		for i := range b {
			b[i] = alphabet[int(buf[i])%len(alphabet)]
		}
		return string(b)
	}
}

// Prefixed wraps a Generator and prepends a fixed prefix to every ID,
// for type-scoped identifiers ("att_", "res_").
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}
