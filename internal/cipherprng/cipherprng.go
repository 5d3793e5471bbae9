// Package cipherprng implements the Fortuna-style deterministic block
// generator: a reseedable, forward-secret stream keyed by ChaCha20.
package cipherprng

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"io"
	"sync"

	"golang.org/x/crypto/chacha20"
)

const (
	// KeySize is the ChaCha20 key length in bytes.
	KeySize = chacha20.KeySize

	// maxRequestBytes caps a single Generate call, bounding the
	// counter-mode distinguishing advantage of any one request.
	maxRequestBytes = 1 << 20

	nonceSize = chacha20.NonceSize
)

// ErrUninitialised is returned by Generate when a null-key instance
// has not yet been reseeded.
var ErrUninitialised = errors.New("cipherprng: generator not yet seeded")

// ErrRequestTooLarge is returned when a caller asks for more bytes
// than MaxRequestBytes in one call.
var ErrRequestTooLarge = errors.New("cipherprng: requested more than MaxRequestBytes")

// ErrDisposed is returned by any operation on a disposed generator,
// except Dispose itself which is idempotent.
var ErrDisposed = errors.New("cipherprng: generator disposed")

// Mode selects how a new Generator is keyed at construction.
type Mode int

const (
	// NullKey starts with an all-zero key and refuses to Generate
	// until the first Reseed.
	NullKey Mode = iota
	// CheapKey seeds immediately from crypto/rand; suitable for
	// internal, non-adversarial needs like shuffling a poll order.
	CheapKey
	// ExplicitKey seeds immediately from caller-supplied material.
	ExplicitKey
)

// Generator is a reseedable, forward-secret, cipher-based
// deterministic byte stream. The zero value is not usable; construct
// with New.
type Generator struct {
	mu       sync.Mutex
	key      [KeySize]byte
	counter  uint64
	seeded   bool
	disposed bool
}

// New constructs a Generator in the given mode. For ExplicitKey, key
// must be exactly KeySize bytes; for the other modes it is ignored.
func New(mode Mode, key []byte) (*Generator, error) {
	g := &Generator{}
	switch mode {
	case NullKey:
		// key stays all-zero; seeded stays false.
	case CheapKey:
		if _, err := io.ReadFull(rand.Reader, g.key[:]); err != nil {
			return nil, err
		}
		g.seeded = true
	case ExplicitKey:
		if len(key) != KeySize {
			return nil, errors.New("cipherprng: explicit key must be KeySize bytes")
		}
		copy(g.key[:], key)
		g.seeded = true
	default:
		return nil, errors.New("cipherprng: unknown mode")
	}
	return g, nil
}

// MaxRequestBytes returns the per-request cap.
func (g *Generator) MaxRequestBytes() int {
	return maxRequestBytes
}

// Generate fills buf[offset:offset+count] with stream output, then
// rekeys itself from the same stream so the returned bytes can never
// be used to reconstruct future output (forward secrecy).
func (g *Generator) Generate(buf []byte, offset, count int) error {
	if count > maxRequestBytes {
		return ErrRequestTooLarge
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.disposed {
		return ErrDisposed
	}
	if !g.seeded {
		return ErrUninitialised
	}

	if err := g.fillLocked(buf[offset : offset+count]); err != nil {
		return err
	}

	// Rekey: draw a fresh key from the same stream so past output is
	// never reconstructible from the new key.
	var newKey [KeySize]byte
	if err := g.fillLocked(newKey[:]); err != nil {
		return err
	}
	g.key = newKey
	return nil
}

// fillLocked runs the ChaCha20 keystream for len(dst) bytes starting
// at the generator's current counter, advancing counter by the number
// of 64-byte blocks consumed. Caller must hold g.mu.
func (g *Generator) fillLocked(dst []byte) error {
	if len(dst) == 0 {
		return nil
	}
	var nonce [nonceSize]byte
	binary.LittleEndian.PutUint64(nonce[nonceSize-8:], g.counter)

	cipher, err := chacha20.NewUnauthenticatedCipher(g.key[:], nonce[:])
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = 0
	}
	cipher.XORKeyStream(dst, dst)

	blocks := (uint64(len(dst)) + 63) / 64
	g.counter += blocks
	return nil
}

// Reseed mixes material into the key via key <- H(key || material) and
// advances the counter, so a reseed's output stream never repeats an
// already-used counter range. material must be non-empty.
func (g *Generator) Reseed(material []byte) error {
	if len(material) == 0 {
		return errors.New("cipherprng: reseed material must be non-empty")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.disposed {
		return ErrDisposed
	}

	h := sha256.New()
	h.Write(g.key[:])
	h.Write(material)
	sum := h.Sum(nil)
	copy(g.key[:], sum[:KeySize])
	g.counter++
	g.seeded = true
	return nil
}

// Dispose zeroes the key and marks the generator unusable. Idempotent.
func (g *Generator) Dispose() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disposed {
		return
	}
	for i := range g.key {
		g.key[i] = 0
	}
	g.disposed = true
}
