// Package detrand supplies the per-invocation randomness source. A run is
// deterministic by default: the source is seeded from a hash of the input
// spec, so identical input produces identical identifiers and identical
// balancing decisions. Fresh entropy is opt-in.
package detrand

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// Source is a seeded random stream. It satisfies io.Reader so UUID
// generation draws from the same stream as everything else.
type Source struct {
	rng *rand.Rand
}

// New returns a source seeded from a hash of the given bytes.
func New(seed []byte) *Source {
	sum := blake3.Sum256(seed)
	return &Source{rng: rand.New(rand.NewChaCha8(sum))}
}

// NewFresh returns a source seeded from the operating system's entropy.
func NewFresh() (*Source, error) {
	var seed [32]byte
	if _, err := cryptorand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("reading entropy: %w", err)
	}
	return &Source{rng: rand.New(rand.NewChaCha8(seed))}, nil
}

// IntN returns a uniform int in [0, n).
func (s *Source) IntN(n int) int { return s.rng.IntN(n) }

// Float64 returns a uniform float64 in [0, 1).
func (s *Source) Float64() float64 { return s.rng.Float64() }

// Shuffle permutes n elements using the given swap function.
func (s *Source) Shuffle(n int, swap func(i, j int)) { s.rng.Shuffle(n, swap) }

// Perm returns a random permutation of [0, n).
func (s *Source) Perm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	s.rng.Shuffle(n, func(i, j int) { p[i], p[j] = p[j], p[i] })
	return p
}

// Read fills p from the stream. It never fails.
func (s *Source) Read(p []byte) (int, error) {
	var buf [8]byte
	for i := 0; i < len(p); i += 8 {
		binary.LittleEndian.PutUint64(buf[:], s.rng.Uint64())
		copy(p[i:], buf[:])
	}
	return len(p), nil
}

// UUID returns a version-4 UUID drawn from the stream.
func (s *Source) UUID() uuid.UUID {
	u, err := uuid.NewRandomFromReader(s)
	if err != nil {
		// Read never fails, so neither can this.
		panic(err)
	}
	return u
}

// Hex returns n lowercase hex characters drawn from the stream.
func (s *Source) Hex(n int) string {
	buf := make([]byte, (n+1)/2)
	s.Read(buf)
	return hex.EncodeToString(buf)[:n]
}
